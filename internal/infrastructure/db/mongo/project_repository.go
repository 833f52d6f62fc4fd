package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

type mongoProject struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Name                 string             `bson:"name"`
	Description          string             `bson:"description"`
	Deadline             time.Time          `bson:"deadline"`
	Status               string             `bson:"status"`
	LeadID               string             `bson:"lead_id,omitempty"`
	AssignedDeveloperIDs []string           `bson:"assigned_developer_ids"`
	CreatedAt            time.Time          `bson:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at"`
	CompletedAt          *time.Time         `bson:"completed_at,omitempty"`
}

func toMongoProject(p *domain.Project) mongoProject {
	devs := p.AssignedDeveloperIDs
	if devs == nil {
		devs = []string{}
	}
	return mongoProject{
		Name:                 p.Name,
		Description:          p.Description,
		Deadline:             p.Deadline.UTC(),
		Status:               string(p.Status),
		LeadID:               p.LeadID,
		AssignedDeveloperIDs: devs,
		CreatedAt:            p.CreatedAt.UTC(),
		UpdatedAt:            p.UpdatedAt.UTC(),
		CompletedAt:          p.CompletedAt,
	}
}

func (m *mongoProject) toDomain() *domain.Project {
	devs := m.AssignedDeveloperIDs
	if devs == nil {
		devs = []string{}
	}
	return &domain.Project{
		ID:                   m.ID.Hex(),
		Name:                 m.Name,
		Description:          m.Description,
		Deadline:             m.Deadline.UTC(),
		Status:               domain.ProjectStatus(m.Status),
		LeadID:               m.LeadID,
		AssignedDeveloperIDs: devs,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
		CompletedAt:          m.CompletedAt,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoProject(p)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProject
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return mp.toDomain(), nil
}

// List returns projects matching every non-zero filter field, newest first.
func (r *ProjectRepository) List(ctx context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.LeadID != "" {
		filter["lead_id"] = f.LeadID
	}
	if f.DeveloperID != "" {
		filter["assigned_developer_ids"] = f.DeveloperID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if !f.DeadlineBefore.IsZero() {
		filter["deadline"] = bson.M{"$lt": f.DeadlineBefore.UTC()}
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []mongoProject
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(docs))
	for i := range docs {
		projects = append(projects, docs[i].toDomain())
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	oid, ok := objectID(p.ID)
	if !ok {
		return domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoProject(p)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the list scopes and reports.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "lead_id", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_developer_ids", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("project indexes: %w", err)
	}
	return nil
}
