package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/core/access"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
	"github.com/pixelforge/nexus/internal/pkg/metrics"
)

const (
	// DefaultMaxUploadBytes caps a single upload at 10 MiB.
	DefaultMaxUploadBytes int64 = 10 << 20

	maxFileNameLength    = 255
	maxDescriptionLength = 500
)

// DocumentService implements document upload, retrieval and removal.
type DocumentService struct {
	documents ports.DocumentRepository
	projects  ports.ProjectRepository
	blobs     ports.BlobStore
	cleaner   ports.BlobCleaner
	maxBytes  int64
	newKey    func(ext string) string
	now       func() time.Time
	log       zerolog.Logger
}

func NewDocumentService(
	documents ports.DocumentRepository,
	projects ports.ProjectRepository,
	blobs ports.BlobStore,
	cleaner ports.BlobCleaner,
	maxBytes int64,
	log zerolog.Logger,
) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &DocumentService{
		documents: documents,
		projects:  projects,
		blobs:     blobs,
		cleaner:   cleaner,
		maxBytes:  maxBytes,
		newKey:    func(ext string) string { return uuid.NewString() + ext },
		now:       utcNow,
		log:       log,
	}
}

// Upload stores a file for a project under a generated name that keeps the
// original extension.
func (s *DocumentService) Upload(ctx context.Context, caller domain.Principal, in ports.UploadInput) (*domain.Document, error) {
	p, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.UploadDocument, access.ProjectFacts(p)); err != nil {
		return nil, err
	}

	contentType, err := s.checkUpload(in)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	original := filepath.Base(strings.TrimSpace(in.FileName))
	key := s.newKey(strings.ToLower(filepath.Ext(original)))

	if err := s.blobs.Put(ctx, key, io.LimitReader(in.Content, in.Size), in.Size, contentType); err != nil {
		return nil, fmt.Errorf("upload document: store %s: %w", original, err)
	}

	doc, err := s.documents.Create(ctx, &domain.Document{
		ProjectID:        p.ID,
		UploaderID:       caller.ID,
		FileName:         key,
		OriginalFileName: original,
		ContentType:      contentType,
		Size:             in.Size,
		Description:      strings.TrimSpace(in.Description),
		UploadedAt:       s.now(),
	})
	if err != nil {
		s.cleaner.Enqueue(key)
		return nil, fmt.Errorf("upload document: %w", err)
	}

	metrics.DocumentsUploadedTotal.WithLabelValues(contentType).Inc()
	s.log.Info().
		Str("document_id", doc.ID).
		Str("project_id", p.ID).
		Str("uploader_id", caller.ID).
		Int64("size", doc.Size).
		Msg("document uploaded")
	return doc, nil
}

func (s *DocumentService) ListForProject(ctx context.Context, caller domain.Principal, projectID string) ([]*domain.Document, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.ListProjectDocuments, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	return s.documents.ListByProject(ctx, p.ID)
}

func (s *DocumentService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.Document, error) {
	doc, facts, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.ViewDocument, facts); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Download(ctx context.Context, caller domain.Principal, id string) (*domain.Document, io.ReadCloser, error) {
	doc, facts, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(caller, access.DownloadDocument, facts); err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(ctx, doc.FileName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Str("document_id", doc.ID).Msg("document contents missing from blob store")
			return nil, nil, fmt.Errorf("download %s: %w", doc.OriginalFileName, domain.ErrDocumentNotFound)
		}
		return nil, nil, fmt.Errorf("download %s: %w", doc.OriginalFileName, err)
	}
	return doc, rc, nil
}

// Delete removes the document record; the stored contents are cleaned up
// asynchronously.
func (s *DocumentService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	doc, facts, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, access.DeleteDocument, facts); err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.cleaner.Enqueue(doc.FileName)

	s.log.Info().Str("document_id", doc.ID).Str("deleted_by", caller.ID).Msg("document deleted")
	return nil
}

// ListMine returns the caller's own uploads.
func (s *DocumentService) ListMine(ctx context.Context, caller domain.Principal) ([]*domain.Document, error) {
	return s.documents.ListByUploader(ctx, caller.ID)
}

// load fetches a document and the facts of its owning project.
func (s *DocumentService) load(ctx context.Context, id string) (*domain.Document, access.Facts, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, access.Facts{}, err
	}
	p, err := s.projects.FindByID(ctx, doc.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, access.Facts{}, domain.ErrDocumentNotFound
		}
		return nil, access.Facts{}, err
	}
	return doc, access.DocumentFacts(doc, p), nil
}

// checkUpload validates an upload and returns its normalised content type.
func (s *DocumentService) checkUpload(in ports.UploadInput) (string, error) {
	if in.Content == nil || in.Size <= 0 {
		return "", fmt.Errorf("%w: cannot upload empty file", domain.ErrFileRejected)
	}
	if in.Size > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds maximum size of %d bytes", domain.ErrFileRejected, s.maxBytes)
	}

	name := strings.TrimSpace(in.FileName)
	if name == "" || utf8.RuneCountInString(name) > maxFileNameLength {
		return "", fmt.Errorf("%w: invalid file name", domain.ErrFileRejected)
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: file name contains invalid path sequence", domain.ErrFileRejected)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return "", fmt.Errorf("%w: description cannot exceed %d characters", domain.ErrInvalidInput, maxDescriptionLength)
	}

	mediaType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: invalid content type", domain.ErrFileRejected)
	}
	if _, ok := domain.AllowedContentTypes[mediaType]; !ok {
		return "", fmt.Errorf("%w: file type not allowed: %s", domain.ErrFileRejected, mediaType)
	}
	return mediaType, nil
}
