package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fathima-sithara/music-share/internal/events"
	"github.com/fathima-sithara/music-share/internal/models"
	"github.com/fathima-sithara/music-share/internal/repository"
	"github.com/fathima-sithara/music-share/internal/storage"
	utils "github.com/fathima-sithara/music-share/internal/utils"
	"go.uber.org/zap"
)

// Repository is the slice of the metadata store the service needs.
type Repository interface {
	Insert(ctx context.Context, f *models.FileRecord) error
	FindByID(ctx context.Context, id string) (*models.FileRecord, error)
}

type Options struct {
	Folder         string
	AllowedFormats []string
}

type FileService struct {
	repo   Repository
	store  storage.BlobStore
	events events.Publisher
	opts   Options
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewFileService(repo Repository, store storage.BlobStore, pub events.Publisher, opts Options, log *zap.SugaredLogger) *FileService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &FileService{
		repo:   repo,
		store:  store,
		events: pub,
		opts:   opts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload stores the bytes first and writes the record second. If the insert
// fails the object stays behind in the bucket; nothing is rolled back.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*models.FileRecord, error) {
	if err := utils.ValidateAudioFile(in.Filename, in.ContentType, in.Size); err != nil {
		return nil, err
	}

	obj, err := s.store.Put(ctx, storage.PutInput{
		Folder:         s.opts.Folder,
		AllowedFormats: s.opts.AllowedFormats,
		Filename:       in.Filename,
		ContentType:    in.ContentType,
		Size:           in.Size,
		Body:           in.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrStorageFailure, err)
	}

	rec := &models.FileRecord{
		Filename:    in.Filename,
		Path:        obj.URL,
		Size:        in.Size,
		ContentType: in.ContentType,
		PublicID:    obj.Locator,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Warnw("record insert failed, object left in storage", "locator", obj.Locator, "err", err)
		return nil, fmt.Errorf("save file record: %w", err)
	}

	if err := s.events.PublishFileUploaded(ctx, events.NewFileUploaded(rec)); err != nil {
		s.log.Warnw("publish file.uploaded failed", "file_id", rec.ID.Hex(), "err", err)
	}
	return rec, nil
}

func (s *FileService) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// ResolveDownloadURL derives a forced-download URL for the record, falling
// back to the stored path when the provider has none. Nothing is cached.
func (s *FileService) ResolveDownloadURL(ctx context.Context, id string) (string, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.AttachmentURL(ctx, f.PublicID, f.Filename)
	if err != nil {
		return "", fmt.Errorf("derive attachment url: %w", err)
	}
	if u == "" {
		return f.Path, nil
	}
	return u, nil
}
