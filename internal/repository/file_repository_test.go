package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fathima-sithara/music-share/internal/models"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

// setupCollection starts MongoDB in a container. Needs Docker, so it only runs
// with TEST_INTEGRATION set.
func setupCollection(t *testing.T) *mongo.Collection {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	client, err := NewMongoClient(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("music_share_test").Collection("files")
}

func TestFileRepositoryInsertAndFind(t *testing.T) {
	col := setupCollection(t)
	repo := NewFileRepository(col)
	ctx := context.Background()

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	rec := &models.FileRecord{
		Filename:    "song.mp3",
		Path:        "https://cdn.example.com/music-share-app/song.mp3",
		Size:        3145728,
		ContentType: "audio/mpeg",
		PublicID:    "music-share-app/abc_song.mp3",
	}
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID.IsZero() {
		t.Fatal("Insert did not assign an id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("Insert did not set createdAt")
	}

	got, err := repo.FindByID(ctx, rec.ID.Hex())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Filename != rec.Filename || got.Size != rec.Size || got.PublicID != rec.PublicID {
		t.Errorf("FindByID = %+v, want %+v", got, rec)
	}
	if d := got.CreatedAt.Sub(rec.CreatedAt); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("createdAt drifted by %v", d)
	}
}

func TestFileRepositoryNotFound(t *testing.T) {
	repo := NewFileRepository(setupCollection(t))

	for _, id := range []string{"000000000000000000000000", "not-an-object-id", ""} {
		if _, err := repo.FindByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestFindByIDMalformedSkipsStore(t *testing.T) {
	// a nil collection would panic if the lookup reached the driver
	repo := NewFileRepository(nil)
	if _, err := repo.FindByID(context.Background(), "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
