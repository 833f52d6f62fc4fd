package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

type documentFixture struct {
	svc      *DocumentService
	docs     *stubDocumentRepo
	projects *stubProjectRepo
	blobs    *stubBlobStore
	cleaner  *stubCleaner
	project  *domain.Project
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		docs:     newStubDocumentRepo(),
		projects: newStubProjectRepo(),
		blobs:    newStubBlobStore(),
		cleaner:  &stubCleaner{},
	}
	p, err := f.projects.Create(context.Background(), &domain.Project{
		Name:                 "Hermes",
		Status:               domain.ProjectActive,
		LeadID:               leadCaller.ID,
		AssignedDeveloperIDs: []string{devCaller.ID},
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	f.project = p

	f.svc = NewDocumentService(f.docs, f.projects, f.blobs, f.cleaner, 1024, discardLogger)
	f.svc.now = func() time.Time { return fixedNow }
	n := 0
	f.svc.newKey = func(ext string) string {
		n++
		return "blob-" + string(rune('0'+n)) + ext
	}
	return f
}

func upload(projectID, name, contentType, body string) ports.UploadInput {
	return ports.UploadInput{
		ProjectID:   projectID,
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Description: "spec sheet",
		Content:     strings.NewReader(body),
	}
}

func TestDocumentService_Upload_Success(t *testing.T) {
	f := newDocumentFixture(t)

	doc, err := f.svc.Upload(context.Background(), leadCaller, upload(f.project.ID, "Design.PDF", "application/pdf", "%PDF-1.7"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.FileName != "blob-1.pdf" || doc.OriginalFileName != "Design.PDF" {
		t.Fatalf("unexpected names %+v", doc)
	}
	if doc.UploaderID != leadCaller.ID || doc.ProjectID != f.project.ID || doc.Size != 8 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if string(f.blobs.blobs["blob-1.pdf"]) != "%PDF-1.7" {
		t.Fatalf("blob not stored: %q", f.blobs.blobs["blob-1.pdf"])
	}
}

func TestDocumentService_Upload_Access(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Upload(ctx, devCaller, upload(f.project.ID, "a.txt", "text/plain", "hi")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("assigned developer cannot upload, got %v", err)
	}
	other := domain.Principal{ID: "lead2", Role: domain.RoleProjectLead}
	if _, err := f.svc.Upload(ctx, other, upload(f.project.ID, "a.txt", "text/plain", "hi")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other lead cannot upload, got %v", err)
	}
	if _, err := f.svc.Upload(ctx, adminCaller, upload("missing", "a.txt", "text/plain", "hi")); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if len(f.blobs.blobs) != 0 {
		t.Fatal("rejected uploads must not store blobs")
	}
}

func TestDocumentService_Upload_Rejections(t *testing.T) {
	f := newDocumentFixture(t)

	cases := map[string]ports.UploadInput{
		"empty":          upload(f.project.ID, "a.txt", "text/plain", ""),
		"too large":      upload(f.project.ID, "a.txt", "text/plain", strings.Repeat("x", 1025)),
		"bad type":       upload(f.project.ID, "a.exe", "application/x-msdownload", "MZ"),
		"path traversal": upload(f.project.ID, "../etc/passwd", "text/plain", "root"),
		"no name":        upload(f.project.ID, "  ", "text/plain", "x"),
		"garbled type":   upload(f.project.ID, "a.txt", ";;", "x"),
	}
	for name, in := range cases {
		if _, err := f.svc.Upload(context.Background(), adminCaller, in); !errors.Is(err, domain.ErrFileRejected) {
			t.Errorf("%s: expected ErrFileRejected, got %v", name, err)
		}
	}

	// Parameters on the content type are ignored.
	if _, err := f.svc.Upload(context.Background(), adminCaller, upload(f.project.ID, "n.txt", "Text/Plain; charset=utf-8", "x")); err != nil {
		t.Fatalf("expected text/plain with charset accepted, got %v", err)
	}
}

func TestDocumentService_Upload_RecordFailureSchedulesCleanup(t *testing.T) {
	f := newDocumentFixture(t)
	f.docs.createErr = errors.New("db unavailable")

	if _, err := f.svc.Upload(context.Background(), adminCaller, upload(f.project.ID, "a.txt", "text/plain", "hi")); err == nil {
		t.Fatal("expected error")
	}
	if len(f.cleaner.keys) != 1 || f.cleaner.keys[0] != "blob-1.txt" {
		t.Fatalf("orphaned blob must be scheduled for cleanup, got %v", f.cleaner.keys)
	}
}

func TestDocumentService_ViewAndDownload(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Upload(ctx, leadCaller, upload(f.project.ID, "notes.txt", "text/plain", "hello"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := f.svc.Get(ctx, devCaller, doc.ID); err != nil {
		t.Fatalf("assigned developer can view: %v", err)
	}

	_, rc, err := f.svc.Download(ctx, devCaller, doc.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}

	stranger := domain.Principal{ID: "x", Role: domain.RoleDeveloper}
	if _, _, err := f.svc.Download(ctx, stranger, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListForProject(ctx, stranger, f.project.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	delete(f.blobs.blobs, doc.FileName)
	if _, _, err := f.svc.Download(ctx, devCaller, doc.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("missing contents must surface as not found, got %v", err)
	}
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	// A developer-owned document: the uploader may delete it even without
	// being able to upload today.
	owned, _ := f.docs.Create(ctx, &domain.Document{ProjectID: f.project.ID, UploaderID: devCaller.ID, FileName: "k1"})
	other, _ := f.docs.Create(ctx, &domain.Document{ProjectID: f.project.ID, UploaderID: "someone", FileName: "k2"})

	stranger := domain.Principal{ID: "x", Role: domain.RoleDeveloper}
	if err := f.svc.Delete(ctx, stranger, owned.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, devCaller, owned.ID); err != nil {
		t.Fatalf("uploader delete: %v", err)
	}
	if err := f.svc.Delete(ctx, devCaller, other.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("developer cannot delete others' uploads, got %v", err)
	}
	if err := f.svc.Delete(ctx, leadCaller, other.ID); err != nil {
		t.Fatalf("project lead delete: %v", err)
	}
	if len(f.cleaner.keys) != 2 {
		t.Fatalf("expected 2 cleanups, got %v", f.cleaner.keys)
	}
	if err := f.svc.Delete(ctx, adminCaller, owned.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentService_ListMine(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	f.docs.Create(ctx, &domain.Document{ProjectID: f.project.ID, UploaderID: devCaller.ID})
	f.docs.Create(ctx, &domain.Document{ProjectID: f.project.ID, UploaderID: leadCaller.ID})

	mine, err := f.svc.ListMine(ctx, devCaller)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMine: %+v, %v", mine, err)
	}
}
