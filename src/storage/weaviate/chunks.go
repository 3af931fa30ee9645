package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// ChunkClassName is the single Weaviate class holding every ingested chunk.
// Isolation between assets is done with a metadata filter, not per-asset classes.
const ChunkClassName = "DocumentChunk"

// Chunk is one bounded span of document text stored in the vector index
type Chunk struct {
	ID      string // {assetID}_{ordinal}
	Ordinal int
	Asset   string
	Source  string
	Content string
	Vector  []float32
}

// ChunkIndex stores and searches document chunks in Weaviate
type ChunkIndex struct {
	sdk *SDK
}

func NewChunkIndex(sdk *SDK) *ChunkIndex {
	return &ChunkIndex{sdk: sdk}
}

// EnsureSchema makes sure the chunk class exists
func (ci *ChunkIndex) EnsureSchema(ctx context.Context) error {
	properties := []*models.Property{
		{
			Name:        "content",
			DataType:    []string{"text"},
			Description: "The content of the chunk",
		},
		{
			Name:        "asset",
			DataType:    []string{"text"},
			Description: "ID of the asset the chunk belongs to",
		},
		{
			Name:        "source",
			DataType:    []string{"text"},
			Description: "Original file path of the ingested document",
		},
		{
			Name:        "chunkId",
			DataType:    []string{"text"},
			Description: "Per-asset chunk identifier, {asset}_{ordinal}",
		},
		{
			Name:        "ordinal",
			DataType:    []string{"int"},
			Description: "Position of the chunk within the asset",
		},
	}

	return ci.sdk.EnsureSchema(ctx, ChunkClassName, properties, "none")
}

// AddChunks writes chunks with their vectors and metadata in one batch
func (ci *ChunkIndex) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to add")
	}

	objects := make([]VectorObject, len(chunks))
	for i, chunk := range chunks {
		objects[i] = VectorObject{
			ID:     chunk.ID,
			Vector: chunk.Vector,
			Properties: map[string]interface{}{
				"content": chunk.Content,
				"asset":   chunk.Asset,
				"source":  chunk.Source,
				"chunkId": chunk.ID,
				"ordinal": chunk.Ordinal,
			},
		}
	}

	return ci.sdk.BatchAddVectors(ctx, ChunkClassName, objects)
}

// assetFilter scopes a query to exactly one asset id
func assetFilter(assetID string) *WhereFilter {
	return &WhereFilter{
		Property: "asset",
		Values:   []string{assetID},
	}
}

// Search returns the chunks of the given asset nearest to the query vector
func (ci *ChunkIndex) Search(ctx context.Context, assetID string, vector []float32, limit int) ([]Chunk, error) {
	config := QueryConfig{
		Fields: []string{"content", "asset", "source", "chunkId", "ordinal"},
		Limit:  limit,
		Where:  assetFilter(assetID),
	}

	results, err := ci.sdk.QueryVectors(ctx, ChunkClassName, vector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, result := range results {
		chunk := Chunk{
			Asset: assetID,
		}
		if content, ok := result.Properties["content"].(string); ok {
			chunk.Content = content
		}
		if source, ok := result.Properties["source"].(string); ok {
			chunk.Source = source
		}
		if chunkID, ok := result.Properties["chunkId"].(string); ok {
			chunk.ID = chunkID
		}
		if ordinal, ok := result.Properties["ordinal"].(float64); ok {
			chunk.Ordinal = int(ordinal)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// HasAsset reports whether at least one chunk exists for the asset
func (ci *ChunkIndex) HasAsset(ctx context.Context, assetID string) (bool, error) {
	count, err := ci.sdk.CountObjects(ctx, ChunkClassName, assetFilter(assetID), 1)
	if err != nil {
		return false, fmt.Errorf("failed to probe asset: %w", err)
	}

	return count > 0, nil
}
