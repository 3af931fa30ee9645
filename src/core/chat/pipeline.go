package chat

import (
	"context"
	"fmt"
	"strings"

	"docchat/src/log"
	weaviatestore "docchat/src/storage/weaviate"
)

const DefaultTopK = 2

// LLMProvider defines the language model operations the pipeline needs
type LLMProvider interface {
	// GetEmbedding generates an embedding vector for the given text
	GetEmbedding(ctx context.Context, model string, text string) ([]float32, error)
	// Generate produces a single-shot completion
	Generate(ctx context.Context, model, system, prompt string, options map[string]interface{}) (string, error)
	// GenerateStream produces a completion, invoking onDelta per fragment,
	// and returns the full text
	GenerateStream(ctx context.Context, model, system, prompt string, options map[string]interface{}, onDelta func(delta string) error) (string, error)
}

// ChunkSearcher searches the vector index within a single asset's scope
type ChunkSearcher interface {
	Search(ctx context.Context, assetID string, vector []float32, limit int) ([]weaviatestore.Chunk, error)
	HasAsset(ctx context.Context, assetID string) (bool, error)
}

// Pipeline is the contextualize -> retrieve -> generate sequence scoped to
// one asset. It is built once per session and holds no per-message state.
type Pipeline struct {
	assetID        string
	llm            LLMProvider
	searcher       ChunkSearcher
	embeddingModel string
	chatModel      string
	topK           int
}

func newPipeline(assetID string, llm LLMProvider, searcher ChunkSearcher, embeddingModel, chatModel string, topK int) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Pipeline{
		assetID:        assetID,
		llm:            llm,
		searcher:       searcher,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		topK:           topK,
	}
}

// Answer runs one message through the pipeline, streaming the grounded
// answer through onDelta and returning the full answer text.
func (p *Pipeline) Answer(ctx context.Context, history []Turn, input string, onDelta func(delta string) error) (string, error) {
	query, err := p.contextualize(ctx, history, input)
	if err != nil {
		return "", err
	}

	chunks, err := p.retrieve(ctx, query)
	if err != nil {
		return "", err
	}

	return p.generate(ctx, history, input, chunks, onDelta)
}

// contextualize rewrites the input into a standalone question using the
// history. The rewrite is only used for retrieval, never shown to the user.
func (p *Pipeline) contextualize(ctx context.Context, history []Turn, input string) (string, error) {
	if len(history) == 0 {
		return input, nil
	}

	prompt, err := executeTemplate("contextualize", ConversationTmpl, PromptData{
		History: history,
		Input:   input,
	})
	if err != nil {
		return "", err
	}

	rewritten, err := p.llm.Generate(ctx, p.chatModel, ContextualizeSystemPrompt, prompt, nil)
	if err != nil {
		return "", fmt.Errorf("failed to contextualize question: %w", err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return input, nil
	}

	log.Debug("contextualized question", "asset", p.assetID, "query", rewritten)
	return rewritten, nil
}

// retrieve fetches the nearest chunks of the pipeline's asset. Fewer than
// topK matches is not an error; missing assets simply retrieve nothing.
func (p *Pipeline) retrieve(ctx context.Context, query string) ([]weaviatestore.Chunk, error) {
	vector, err := p.llm.GetEmbedding(ctx, p.embeddingModel, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := p.searcher.Search(ctx, p.assetID, vector, p.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	return chunks, nil
}

func (p *Pipeline) generate(ctx context.Context, history []Turn, input string, chunks []weaviatestore.Chunk, onDelta func(delta string) error) (string, error) {
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	system, err := executeTemplate("answer-system", AnswerSystemTmpl, PromptData{
		Context: strings.Join(contents, "\n\n"),
	})
	if err != nil {
		return "", err
	}

	// The original, non-rewritten input goes into the answering prompt
	prompt, err := executeTemplate("answer", ConversationTmpl, PromptData{
		History: history,
		Input:   input,
	})
	if err != nil {
		return "", err
	}

	answer, err := p.llm.GenerateStream(ctx, p.chatModel, system, prompt, nil, onDelta)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	return answer, nil
}
