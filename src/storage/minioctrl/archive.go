package minioctrl

import (
	"context"
	"fmt"
)

// DocumentArchive keeps a copy of every ingested source file in one bucket,
// keyed by asset id, so the chunk store can be rebuilt from the originals.
type DocumentArchive struct {
	svc    *MinioService
	bucket string
}

func NewDocumentArchive(ctx context.Context, svc *MinioService, bucket string) (*DocumentArchive, error) {
	if err := svc.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure archive bucket exists: %w", err)
	}

	return &DocumentArchive{
		svc:    svc,
		bucket: bucket,
	}, nil
}

// Store uploads the raw document bytes under the given object name
func (a *DocumentArchive) Store(ctx context.Context, objectName string, data []byte) error {
	return a.svc.PutObject(ctx, a.bucket, objectName, data)
}
