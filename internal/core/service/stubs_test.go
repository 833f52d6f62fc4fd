package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubUserRepo struct {
	users     map[string]*domain.User // keyed by id
	nextID    int
	findErr   error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if domain.NormalizeUsername(u.Username) == domain.NormalizeUsername(user.Username) ||
			domain.NormalizeUsername(u.Email) == domain.NormalizeUsername(user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	created := cloneUser(user)
	if created.ID == "" {
		r.nextID++
		created.ID = fmt.Sprintf("u%d", r.nextID)
	}
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if domain.NormalizeUsername(u.Username) == domain.NormalizeUsername(username) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != 0 && u.Role != f.Role {
			continue
		}
		if f.EnabledOnly && !u.Enabled {
			continue
		}
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b *domain.User) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// seed stores a user directly, bypassing hashing.
func (r *stubUserRepo) seed(id, username string, role domain.Role, hash string) *domain.User {
	u := &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	r.users[id] = u
	return cloneUser(u)
}

type stubProjectRepo struct {
	projects map[string]*domain.Project
	nextID   int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{projects: make(map[string]*domain.Project)}
}

func cloneProject(p *domain.Project) *domain.Project {
	clone := *p
	clone.AssignedDeveloperIDs = slices.Clone(p.AssignedDeveloperIDs)
	return &clone
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	created := cloneProject(p)
	if created.ID == "" {
		r.nextID++
		created.ID = fmt.Sprintf("p%d", r.nextID)
	}
	r.projects[created.ID] = cloneProject(created)
	return created, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range r.projects {
		if f.LeadID != "" && p.LeadID != f.LeadID {
			continue
		}
		if f.DeveloperID != "" && !slices.Contains(p.AssignedDeveloperIDs, f.DeveloperID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if !f.DeadlineBefore.IsZero() && !p.Deadline.Before(f.DeadlineBefore) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	slices.SortFunc(out, func(a, b *domain.Project) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.projects[p.ID] = cloneProject(p)
	return nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

type stubDocumentRepo struct {
	docs      map[string]*domain.Document
	nextID    int
	createErr error
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *stubDocumentRepo) Create(_ context.Context, d *domain.Document) (*domain.Document, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	created := *d
	if created.ID == "" {
		r.nextID++
		created.ID = fmt.Sprintf("d%d", r.nextID)
	}
	stored := created
	r.docs[created.ID] = &stored
	return &created, nil
}

func (r *stubDocumentRepo) FindByID(_ context.Context, id string) (*domain.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDocumentRepo) list(match func(*domain.Document) bool) []*domain.Document {
	var out []*domain.Document
	for _, d := range r.docs {
		if match(d) {
			clone := *d
			out = append(out, &clone)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Document) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (r *stubDocumentRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Document, error) {
	return r.list(func(d *domain.Document) bool { return d.ProjectID == projectID }), nil
}

func (r *stubDocumentRepo) ListByUploader(_ context.Context, uploaderID string) ([]*domain.Document, error) {
	return r.list(func(d *domain.Document) bool { return d.UploaderID == uploaderID }), nil
}

func (r *stubDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *stubDocumentRepo) DeleteByProject(_ context.Context, projectID string) ([]*domain.Document, error) {
	removed := r.list(func(d *domain.Document) bool { return d.ProjectID == projectID })
	for _, d := range removed {
		delete(r.docs, d.ID)
	}
	return removed, nil
}

type stubBlobStore struct {
	blobs  map[string][]byte
	putErr error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{blobs: make(map[string][]byte)}
}

func (s *stubBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.blobs[key] = b
	return nil
}

func (s *stubBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

type stubCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *stubCleaner) Enqueue(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
}

type stubLimiter struct {
	failures   map[string]int
	max        int
	allowedErr error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Allowed(_ context.Context, key string) (bool, error) {
	if l.allowedErr != nil {
		return false, l.allowedErr
	}
	return l.failures[key] < l.max, nil
}

func (l *stubLimiter) Fail(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	return nil
}

// ---------------------------------------------------------------------------
// Principals
// ---------------------------------------------------------------------------

var (
	adminCaller = domain.Principal{ID: "admin", Username: "root", Role: domain.RoleAdmin}
	leadCaller  = domain.Principal{ID: "lead", Username: "lena", Role: domain.RoleProjectLead}
	devCaller   = domain.Principal{ID: "dev", Username: "dan", Role: domain.RoleDeveloper}
)
