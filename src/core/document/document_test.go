package document_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docchat/src/core/document"
	"docchat/src/fsutil"
	weaviatestore "docchat/src/storage/weaviate"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	batches [][]weaviatestore.Chunk
	addErr  error
}

func (f *fakeIndex) AddChunks(ctx context.Context, chunks []weaviatestore.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.batches = append(f.batches, chunks)
	return nil
}

type fakeArchive struct {
	objects map[string][]byte
}

func (f *fakeArchive) Store(ctx context.Context, objectName string, data []byte) error {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectName] = data
	return nil
}

type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) ExtractText(ctx context.Context, filename string, content []byte) (string, error) {
	return f.text, nil
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func newTestService(dir string, index *fakeIndex, archive *fakeArchive, extractor *fakeExtractor) *document.Service {
	var ext document.WordExtractor
	if extractor != nil {
		ext = extractor
	}
	var arc document.Archive
	if archive != nil {
		arc = archive
	}

	return document.NewService(fsutil.NewLocalFileStore(), &fakeEmbedder{}, index, arc, ext, document.Config{
		DataFolder:     dir,
		ChunkSize:      80,
		ChunkOverlap:   20,
		EmbeddingModel: "test-embed",
	})
}

func TestProcessTextDocument(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	path := writeTestFile(t, dir, "sample.txt", content)

	index := &fakeIndex{}
	archive := &fakeArchive{}
	svc := newTestService(dir, index, archive, nil)

	assetID, err := svc.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if assetID == "" {
		t.Fatal("Process() returned empty asset id")
	}

	if len(index.batches) != 1 {
		t.Fatalf("index received %d batches, want 1", len(index.batches))
	}
	chunks := index.batches[0]
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2 for a long document", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Asset != assetID {
			t.Errorf("chunk %d asset = %q, want %q", i, chunk.Asset, assetID)
		}
		if chunk.Source != path {
			t.Errorf("chunk %d source = %q, want %q", i, chunk.Source, path)
		}
		if chunk.Ordinal != i {
			t.Errorf("chunk %d ordinal = %d, want contiguous ordinals from 0", i, chunk.Ordinal)
		}
		if want := fmt.Sprintf("%s_%d", assetID, i); chunk.ID != want {
			t.Errorf("chunk %d id = %q, want %q", i, chunk.ID, want)
		}
		if chunk.Content == "" {
			t.Errorf("chunk %d has empty content", i)
		}
		if len(chunk.Vector) == 0 {
			t.Errorf("chunk %d has no embedding", i)
		}
	}

	if _, ok := archive.objects[assetID+".txt"]; !ok {
		t.Errorf("original not archived under %s.txt", assetID)
	}
}

func TestProcessUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "table.csv", "a,b,c\n1,2,3\n")

	index := &fakeIndex{}
	archive := &fakeArchive{}
	svc := newTestService(dir, index, archive, nil)

	_, err := svc.Process(context.Background(), path)
	if !errors.Is(err, document.ErrUnsupportedFileType) {
		t.Fatalf("Process() error = %v, want ErrUnsupportedFileType", err)
	}

	if len(index.batches) != 0 {
		t.Errorf("index received %d batches for unsupported file, want 0", len(index.batches))
	}
	if len(archive.objects) != 0 {
		t.Errorf("archive received %d objects for unsupported file, want 0", len(archive.objects))
	}
}

func TestProcessLoadFailureIsProcessingError(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")

	index := &fakeIndex{}
	svc := newTestService(dir, index, nil, nil)

	_, err := svc.Process(context.Background(), missing)
	if !errors.Is(err, document.ErrProcessingFailed) {
		t.Fatalf("Process() error = %v, want ErrProcessingFailed", err)
	}
	if len(index.batches) != 0 {
		t.Errorf("index received %d batches after load failure, want 0", len(index.batches))
	}
}

func TestProcessIndexFailureIsProcessingError(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "sample.txt", "some document content")

	index := &fakeIndex{addErr: errors.New("weaviate unavailable")}
	svc := newTestService(dir, index, nil, nil)

	_, err := svc.Process(context.Background(), path)
	if !errors.Is(err, document.ErrProcessingFailed) {
		t.Fatalf("Process() error = %v, want ErrProcessingFailed", err)
	}
}

func TestProcessWordDocumentUsesExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "report.docx", "binary-ish bytes")

	index := &fakeIndex{}
	extractor := &fakeExtractor{text: "Extracted report text."}
	svc := newTestService(dir, index, nil, extractor)

	assetID, err := svc.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(index.batches) != 1 || len(index.batches[0]) == 0 {
		t.Fatal("no chunks written for word document")
	}
	if got := index.batches[0][0].Content; !strings.Contains(got, "Extracted report text.") {
		t.Errorf("chunk content = %q, want extractor output", got)
	}
	if got := index.batches[0][0].Asset; got != assetID {
		t.Errorf("chunk asset = %q, want %q", got, assetID)
	}
}

func TestProcessWordDocumentWithoutExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "report.docx", "bytes")

	index := &fakeIndex{}
	svc := newTestService(dir, index, nil, nil)

	if _, err := svc.Process(context.Background(), path); err == nil {
		t.Fatal("Process() error = nil, want extractor-missing failure")
	}
	if len(index.batches) != 0 {
		t.Errorf("index received %d batches, want 0", len(index.batches))
	}
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "a")
	writeTestFile(t, dir, "b.pdf", "b")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	svc := newTestService(dir, &fakeIndex{}, nil, nil)

	documents, err := svc.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	if len(documents) != 2 {
		t.Fatalf("ListDocuments() = %v, want the 2 files only", documents)
	}
	for _, name := range documents {
		if name != "a.txt" && name != "b.pdf" {
			t.Errorf("unexpected entry %q in listing", name)
		}
	}
}
