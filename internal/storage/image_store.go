package storage

import (
	"context"
	"fmt"
	"io"
)

// ImageStore is the narrow contract the catalog needs from an image host:
// upload a blob and get back a public URL, delete by that URL. Delete failures
// are treated as best-effort by callers.
type ImageStore interface {
	Upload(ctx context.Context, body io.Reader, filename, contentType, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// NewNoopImageStore returns an ImageStore that accepts nothing. Used where
// image handling is irrelevant, like the seed importer.
func NewNoopImageStore() ImageStore {
	return noopImageStore{}
}

type noopImageStore struct{}

func (noopImageStore) Upload(context.Context, io.Reader, string, string, string) (string, error) {
	return "", fmt.Errorf("image uploads are not supported here")
}

func (noopImageStore) Delete(context.Context, string) error {
	return nil
}

// ValidateContentType validates the content type against an allow-list.
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
