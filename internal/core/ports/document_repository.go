package ports

import (
	"context"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// DocumentRepository persists document metadata. File contents live in a BlobStore.
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) (*domain.Document, error)
	FindByID(ctx context.Context, id string) (*domain.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Document, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
	// DeleteByProject removes every document of a project and returns what was removed,
	// so the caller can schedule blob cleanup.
	DeleteByProject(ctx context.Context, projectID string) ([]*domain.Document, error)
}
