package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"docchat/src/fsutil"
	"docchat/src/log"
	weaviatestore "docchat/src/storage/weaviate"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrProcessingFailed wraps every loader, split, embedding, index or
	// archive failure during ingestion, so callers can report them as a
	// rejected request rather than a server fault
	ErrProcessingFailed = errors.New("document processing failed")
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Embedder maps text to a fixed-size vector
type Embedder interface {
	GetEmbedding(ctx context.Context, model string, text string) ([]float32, error)
}

// ChunkIndex persists chunks with their vectors and metadata
type ChunkIndex interface {
	AddChunks(ctx context.Context, chunks []weaviatestore.Chunk) error
}

// Archive keeps a copy of the raw source file of every ingested asset.
// May be nil, in which case originals are not archived.
type Archive interface {
	Store(ctx context.Context, objectName string, data []byte) error
}

// WordExtractor extracts plain text from word-processor documents
type WordExtractor interface {
	ExtractText(ctx context.Context, filename string, content []byte) (string, error)
}

type Config struct {
	DataFolder     string
	ChunkSize      int
	ChunkOverlap   int
	EmbeddingModel string
}

// Service implements the ingestion facility: it loads a document, splits it
// into overlapping chunks tagged with a fresh asset id, and writes chunks
// plus embeddings into the vector index.
type Service struct {
	fs        fsutil.FileStore
	embedder  Embedder
	index     ChunkIndex
	archive   Archive
	extractor WordExtractor
	cfg       Config
}

func NewService(fs fsutil.FileStore, embedder Embedder, index ChunkIndex, archive Archive, extractor WordExtractor, cfg Config) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}

	return &Service{
		fs:        fs,
		embedder:  embedder,
		index:     index,
		archive:   archive,
		extractor: extractor,
		cfg:       cfg,
	}
}

// Process ingests the file at filePath and returns the generated asset id.
// There is no rollback: a failure after the index write leaves the written
// chunks in place.
func (s *Service) Process(ctx context.Context, filePath string) (string, error) {
	ext := filepath.Ext(filePath)
	if !supportedExtension(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	assetID := uuid.New().String()

	docs, raw, err := s.loadFile(ctx, filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to load %s: %v", ErrProcessingFailed, filePath, err)
	}

	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]any{}
		}
		docs[i].Metadata["asset"] = assetID
		docs[i].Metadata["source"] = filePath
	}

	chunks, err := s.splitDocuments(docs, assetID, filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to split document: %v", ErrProcessingFailed, err)
	}

	for i := range chunks {
		vector, err := s.embedder.GetEmbedding(ctx, s.cfg.EmbeddingModel, chunks[i].Content)
		if err != nil {
			return "", fmt.Errorf("%w: failed to embed chunk %s: %v", ErrProcessingFailed, chunks[i].ID, err)
		}
		chunks[i].Vector = vector
	}

	if err := s.index.AddChunks(ctx, chunks); err != nil {
		return "", fmt.Errorf("%w: failed to write chunks to index: %v", ErrProcessingFailed, err)
	}

	if s.archive != nil {
		if err := s.archive.Store(ctx, assetID+ext, raw); err != nil {
			return "", fmt.Errorf("%w: failed to archive original: %v", ErrProcessingFailed, err)
		}
	}

	log.Info("processed document", "asset", assetID, "source", filePath, "chunks", len(chunks))
	return assetID, nil
}

func (s *Service) splitDocuments(docs []schema.Document, assetID, source string) ([]weaviatestore.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.cfg.ChunkSize),
		textsplitter.WithChunkOverlap(s.cfg.ChunkOverlap),
	)

	split, err := textsplitter.SplitDocuments(splitter, docs)
	if err != nil {
		return nil, err
	}

	chunks := make([]weaviatestore.Chunk, len(split))
	for i, doc := range split {
		chunks[i] = weaviatestore.Chunk{
			ID:      fmt.Sprintf("%s_%d", assetID, i),
			Ordinal: i,
			Asset:   assetID,
			Source:  source,
			Content: doc.PageContent,
		}
	}

	return chunks, nil
}

// ListDocuments returns the file names in the configured data folder.
// The listing is static and unrelated to what has been ingested.
func (s *Service) ListDocuments(ctx context.Context) ([]string, error) {
	names, err := s.fs.ListFiles(s.cfg.DataFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to list data folder: %w", err)
	}

	return names, nil
}
