package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

func supportedExtension(ext string) bool {
	switch ext {
	case ".txt", ".pdf", ".doc", ".docx":
		return true
	}
	return false
}

// loadFile reads the file and extracts its textual content with the loader
// matching the extension. The raw bytes are returned as well so the caller
// can archive the original.
func (s *Service) loadFile(ctx context.Context, path string) ([]schema.Document, []byte, error) {
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	switch filepath.Ext(path) {
	case ".txt":
		docs, err := documentloaders.NewText(bytes.NewReader(raw)).Load(ctx)
		return docs, raw, err
	case ".pdf":
		docs, err := documentloaders.NewPDF(bytes.NewReader(raw), int64(len(raw))).Load(ctx)
		return docs, raw, err
	case ".doc", ".docx":
		if s.extractor == nil {
			return nil, nil, fmt.Errorf("no word-document extractor configured")
		}
		text, err := s.extractor.ExtractText(ctx, filepath.Base(path), raw)
		if err != nil {
			return nil, nil, err
		}
		docs := []schema.Document{{PageContent: text, Metadata: map[string]any{}}}
		return docs, raw, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
}
