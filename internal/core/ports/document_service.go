package ports

import (
	"context"
	"io"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// UploadInput describes a file being attached to a project.
type UploadInput struct {
	ProjectID   string
	FileName    string
	ContentType string
	Size        int64
	Description string
	Content     io.Reader
}

// DocumentService defines use-case operations for project documents.
type DocumentService interface {
	Upload(ctx context.Context, caller domain.Principal, in UploadInput) (*domain.Document, error)
	ListForProject(ctx context.Context, caller domain.Principal, projectID string) ([]*domain.Document, error)
	Get(ctx context.Context, caller domain.Principal, id string) (*domain.Document, error)
	// Download returns the document and its contents; the caller closes the reader.
	Download(ctx context.Context, caller domain.Principal, id string) (*domain.Document, io.ReadCloser, error)
	Delete(ctx context.Context, caller domain.Principal, id string) error
	ListMine(ctx context.Context, caller domain.Principal) ([]*domain.Document, error)
}
