package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fathima-sithara/music-share/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

type FileRepository struct {
	col *mongo.Collection
}

func NewFileRepository(col *mongo.Collection) *FileRepository {
	return &FileRepository{col: col}
}

func (r *FileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("created_at_idx"),
	})
	return err
}

// Insert stores f and fills in the id assigned by the driver.
func (r *FileRepository) Insert(ctx context.Context, f *models.FileRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert file record: unexpected id type %T", res.InsertedID)
	}
	f.ID = id
	return nil
}

// FindByID returns ErrNotFound both for unknown ids and for strings that are
// not ObjectIDs at all, since neither can have come from Insert.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var f models.FileRecord
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file %s: %w", id, err)
	}
	return &f, nil
}
