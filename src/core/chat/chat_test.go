package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docchat/src/core/chat"
	weaviatestore "docchat/src/storage/weaviate"
)

type fakeLLM struct {
	rewrite      string
	streamTokens []string
	streamErr    error

	rewriteCalls int
	embedded     []string
}

func (f *fakeLLM) GetEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	f.embedded = append(f.embedded, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, model, system, prompt string, options map[string]interface{}) (string, error) {
	f.rewriteCalls++
	return f.rewrite, nil
}

func (f *fakeLLM) GenerateStream(ctx context.Context, model, system, prompt string, options map[string]interface{}, onDelta func(delta string) error) (string, error) {
	var full strings.Builder
	for _, token := range f.streamTokens {
		if onDelta != nil {
			if err := onDelta(token); err != nil {
				return "", err
			}
		}
		full.WriteString(token)
	}
	if f.streamErr != nil {
		return "", f.streamErr
	}
	return full.String(), nil
}

type fakeSearcher struct {
	chunks map[string][]weaviatestore.Chunk

	searchedAssets []string
	lastLimit      int
}

func (f *fakeSearcher) Search(ctx context.Context, assetID string, vector []float32, limit int) ([]weaviatestore.Chunk, error) {
	f.searchedAssets = append(f.searchedAssets, assetID)
	f.lastLimit = limit
	return f.chunks[assetID], nil
}

func (f *fakeSearcher) HasAsset(ctx context.Context, assetID string) (bool, error) {
	_, ok := f.chunks[assetID]
	return ok, nil
}

func newTestService(llm *fakeLLM, searcher *fakeSearcher) *chat.Service {
	store := chat.NewInMemorySessionStore(time.Minute, 16)
	return chat.NewService(store, llm, searcher, chat.Config{
		EmbeddingModel: "test-embed",
		ChatModel:      "test-chat",
	})
}

func seededSearcher(assetIDs ...string) *fakeSearcher {
	chunks := make(map[string][]weaviatestore.Chunk)
	for _, assetID := range assetIDs {
		chunks[assetID] = []weaviatestore.Chunk{
			{ID: assetID + "_0", Asset: assetID, Content: "content of " + assetID},
		}
	}
	return &fakeSearcher{chunks: chunks}
}

func TestStartChatUnknownAsset(t *testing.T) {
	svc := newTestService(&fakeLLM{}, seededSearcher("asset-a"))

	if _, err := svc.StartChat(context.Background(), "asset-missing"); !errors.Is(err, chat.ErrUnknownAsset) {
		t.Errorf("StartChat() error = %v, want ErrUnknownAsset", err)
	}
}

func TestStreamMessageUnknownChat(t *testing.T) {
	svc := newTestService(&fakeLLM{}, seededSearcher("asset-a"))

	err := svc.StreamMessage(context.Background(), "no-such-chat", "hello", nil)
	if !errors.Is(err, chat.ErrUnknownChat) {
		t.Errorf("StreamMessage() error = %v, want ErrUnknownChat", err)
	}

	if _, err := svc.History(context.Background(), "no-such-chat"); !errors.Is(err, chat.ErrUnknownChat) {
		t.Errorf("History() error = %v, want ErrUnknownChat", err)
	}
}

func TestMessageExchangeRecordsBothTurns(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{streamTokens: []string{"The document ", "is a test."}}
	svc := newTestService(llm, seededSearcher("asset-a"))

	chatID, err := svc.StartChat(ctx, "asset-a")
	if err != nil {
		t.Fatalf("StartChat() error = %v", err)
	}

	var deltas []string
	err = svc.StreamMessage(ctx, chatID, "what does the document say?", func(delta string) error {
		if delta == "" {
			t.Error("received empty delta")
		}
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamMessage() error = %v", err)
	}

	history, err := svc.History(ctx, chatID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries, want 2", len(history))
	}
	if history[0] != "user: what does the document say?" {
		t.Errorf("history[0] = %q, want verbatim user turn first", history[0])
	}
	if want := "assistant: " + strings.Join(deltas, ""); history[1] != want {
		t.Errorf("history[1] = %q, want %q (concatenated deltas)", history[1], want)
	}
}

func TestContextualizeOnlyWithHistory(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{rewrite: "standalone question", streamTokens: []string{"answer"}}
	svc := newTestService(llm, seededSearcher("asset-a"))

	chatID, err := svc.StartChat(ctx, "asset-a")
	if err != nil {
		t.Fatalf("StartChat() error = %v", err)
	}

	// First message: empty history, no rewrite; the raw input is embedded
	if err := svc.StreamMessage(ctx, chatID, "first question", nil); err != nil {
		t.Fatalf("StreamMessage() error = %v", err)
	}
	if llm.rewriteCalls != 0 {
		t.Errorf("rewrite called %d times on empty history, want 0", llm.rewriteCalls)
	}
	if len(llm.embedded) != 1 || llm.embedded[0] != "first question" {
		t.Errorf("embedded = %v, want raw first question", llm.embedded)
	}

	// Second message: history present, the rewritten query is embedded
	if err := svc.StreamMessage(ctx, chatID, "and then?", nil); err != nil {
		t.Fatalf("StreamMessage() error = %v", err)
	}
	if llm.rewriteCalls != 1 {
		t.Errorf("rewrite called %d times with history, want 1", llm.rewriteCalls)
	}
	if got := llm.embedded[len(llm.embedded)-1]; got != "standalone question" {
		t.Errorf("embedded rewritten query = %q, want %q", got, "standalone question")
	}
}

func TestRetrievalScopedToSessionAsset(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{streamTokens: []string{"answer"}}
	searcher := seededSearcher("asset-a", "asset-b")
	svc := newTestService(llm, searcher)

	chatA, err := svc.StartChat(ctx, "asset-a")
	if err != nil {
		t.Fatalf("StartChat(asset-a) error = %v", err)
	}
	chatB, err := svc.StartChat(ctx, "asset-b")
	if err != nil {
		t.Fatalf("StartChat(asset-b) error = %v", err)
	}

	if err := svc.StreamMessage(ctx, chatA, "question", nil); err != nil {
		t.Fatalf("StreamMessage(chatA) error = %v", err)
	}
	if err := svc.StreamMessage(ctx, chatB, "question", nil); err != nil {
		t.Fatalf("StreamMessage(chatB) error = %v", err)
	}

	want := []string{"asset-a", "asset-b"}
	if len(searcher.searchedAssets) != len(want) {
		t.Fatalf("searched %d times, want %d", len(searcher.searchedAssets), len(want))
	}
	for i, assetID := range want {
		if searcher.searchedAssets[i] != assetID {
			t.Errorf("search #%d scoped to %q, want %q", i, searcher.searchedAssets[i], assetID)
		}
	}
	if searcher.lastLimit != chat.DefaultTopK {
		t.Errorf("search limit = %d, want %d", searcher.lastLimit, chat.DefaultTopK)
	}
}

func TestFailedGenerationRecordsNoTurns(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{
		streamTokens: []string{"partial "},
		streamErr:    errors.New("model unavailable"),
	}
	svc := newTestService(llm, seededSearcher("asset-a"))

	chatID, err := svc.StartChat(ctx, "asset-a")
	if err != nil {
		t.Fatalf("StartChat() error = %v", err)
	}

	if err := svc.StreamMessage(ctx, chatID, "question", nil); err == nil {
		t.Fatal("StreamMessage() error = nil, want generation failure")
	}

	history, err := svc.History(ctx, chatID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history has %d entries after failed exchange, want 0", len(history))
	}
}
