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
)

const collectionDocuments = "documents"

type DocumentRepository struct {
	col *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{col: db.Collection(collectionDocuments)}
}

type mongoDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID        string             `bson:"project_id"`
	UploaderID       string             `bson:"uploader_id"`
	FileName         string             `bson:"file_name"`
	OriginalFileName string             `bson:"original_file_name"`
	ContentType      string             `bson:"content_type"`
	Size             int64              `bson:"size"`
	Description      string             `bson:"description,omitempty"`
	UploadedAt       time.Time          `bson:"uploaded_at"`
}

func (m *mongoDocument) toDomain() *domain.Document {
	return &domain.Document{
		ID:               m.ID.Hex(),
		ProjectID:        m.ProjectID,
		UploaderID:       m.UploaderID,
		FileName:         m.FileName,
		OriginalFileName: m.OriginalFileName,
		ContentType:      m.ContentType,
		Size:             m.Size,
		Description:      m.Description,
		UploadedAt:       m.UploadedAt.UTC(),
	}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDocument{
		ID:               primitive.NewObjectID(),
		ProjectID:        d.ProjectID,
		UploaderID:       d.UploaderID,
		FileName:         d.FileName,
		OriginalFileName: d.OriginalFileName,
		ContentType:      d.ContentType,
		Size:             d.Size,
		Description:      d.Description,
		UploadedAt:       d.UploadedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var md mongoDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&md); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Document, error) {
	return r.list(ctx, bson.M{"project_id": projectID})
}

func (r *DocumentRepository) ListByUploader(ctx context.Context, uploaderID string) ([]*domain.Document, error) {
	return r.list(ctx, bson.M{"uploader_id": uploaderID})
}

func (r *DocumentRepository) list(ctx context.Context, filter bson.M) ([]*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var docs []mongoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]*domain.Document, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrDocumentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// DeleteByProject removes the documents of a project. Only the documents
// listed beforehand are deleted, so the returned set matches what is gone.
func (r *DocumentRepository) DeleteByProject(ctx context.Context, projectID string) ([]*domain.Document, error) {
	docs, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return docs, nil
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		if oid, ok := objectID(d.ID); ok {
			ids = append(ids, oid)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete project documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "uploaded_at", Value: -1}}},
		{Keys: bson.D{{Key: "uploader_id", Value: 1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("document indexes: %w", err)
	}
	return nil
}
