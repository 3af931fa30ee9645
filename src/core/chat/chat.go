package chat

import (
	"context"
	"fmt"
	"sync"

	"docchat/src/log"
)

type Config struct {
	EmbeddingModel string
	ChatModel      string
	TopK           int
}

// Service implements the conversation facility: session lifecycle plus the
// per-session retrieval pipeline.
type Service struct {
	store    SessionStore
	llm      LLMProvider
	searcher ChunkSearcher
	cfg      Config

	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

func NewService(store SessionStore, llm LLMProvider, searcher ChunkSearcher, cfg Config) *Service {
	return &Service{
		store:     store,
		llm:       llm,
		searcher:  searcher,
		cfg:       cfg,
		pipelines: make(map[string]*Pipeline),
	}
}

// StartChat opens a new session bound to the asset and returns its id.
// The asset must already have chunks in the index.
func (s *Service) StartChat(ctx context.Context, assetID string) (string, error) {
	ok, err := s.searcher.HasAsset(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("failed to validate asset: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
	}

	session, err := s.store.Create(ctx, assetID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pipelines[session.ID] = s.newPipelineFor(assetID)
	s.mu.Unlock()

	log.Info("started chat", "chat", session.ID, "asset", assetID)
	return session.ID, nil
}

// StreamMessage runs one exchange: the answer is streamed through onDelta,
// and on success the user message and the full answer are appended to the
// session history in one store call. A failed generation records neither.
func (s *Service) StreamMessage(ctx context.Context, chatID, message string, onDelta func(delta string) error) error {
	session, err := s.store.Get(ctx, chatID)
	if err != nil {
		s.dropPipeline(chatID)
		return err
	}

	pipeline := s.pipelineFor(session)

	answer, err := pipeline.Answer(ctx, session.Turns, message, onDelta)
	if err != nil {
		return err
	}

	return s.store.AppendTurns(ctx, chatID,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: answer},
	)
}

// History returns the session's turns rendered as display strings in
// chronological order
func (s *Service) History(ctx context.Context, chatID string) ([]string, error) {
	session, err := s.store.Get(ctx, chatID)
	if err != nil {
		s.dropPipeline(chatID)
		return nil, err
	}

	rendered := make([]string, len(session.Turns))
	for i, turn := range session.Turns {
		rendered[i] = fmt.Sprintf("%s: %s", turn.Role, turn.Content)
	}

	return rendered, nil
}

func (s *Service) newPipelineFor(assetID string) *Pipeline {
	return newPipeline(assetID, s.llm, s.searcher, s.cfg.EmbeddingModel, s.cfg.ChatModel, s.cfg.TopK)
}

// pipelineFor returns the session's pipeline, rebuilding it if the cached
// one was dropped (the pipeline is stateless beyond its asset binding)
func (s *Service) pipelineFor(session Session) *Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	pipeline, ok := s.pipelines[session.ID]
	if !ok {
		pipeline = s.newPipelineFor(session.AssetID)
		s.pipelines[session.ID] = pipeline
	}
	return pipeline
}

// dropPipeline releases the pipeline of a session the store no longer knows
func (s *Service) dropPipeline(chatID string) {
	s.mu.Lock()
	delete(s.pipelines, chatID)
	s.mu.Unlock()
}
