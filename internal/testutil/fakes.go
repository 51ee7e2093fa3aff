// Package testutil holds in-memory stand-ins for the metadata store, blob
// store and event publisher, shared by handler and service tests.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/fathima-sithara/music-share/internal/events"
	"github.com/fathima-sithara/music-share/internal/models"
	"github.com/fathima-sithara/music-share/internal/repository"
	"github.com/fathima-sithara/music-share/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemRepo struct {
	mu        sync.Mutex
	records   map[primitive.ObjectID]models.FileRecord
	InsertErr error
	FindErr   error
}

func NewMemRepo() *MemRepo {
	return &MemRepo{records: map[primitive.ObjectID]models.FileRecord{}}
}

func (r *MemRepo) Insert(_ context.Context, f *models.FileRecord) error {
	if r.InsertErr != nil {
		return r.InsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = primitive.NewObjectID()
	r.records[f.ID] = *f
	return nil
}

func (r *MemRepo) FindByID(_ context.Context, id string) (*models.FileRecord, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.records[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r *MemRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// FakeStore keeps uploaded bytes in memory and hands out predictable URLs.
type FakeStore struct {
	mu            sync.Mutex
	Objects       map[string][]byte
	PutErr        error
	AttachmentErr error
	NoAttachment  bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: map[string][]byte{}}
}

func (s *FakeStore) Put(_ context.Context, in storage.PutInput) (*storage.Object, error) {
	if s.PutErr != nil {
		return nil, s.PutErr
	}
	ext, err := storage.CheckFormat(in.Filename, in.AllowedFormats)
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := storage.ObjectKey(in.Folder, in.Filename, ext)
	s.mu.Lock()
	s.Objects[key] = b
	s.mu.Unlock()
	return &storage.Object{Locator: key, URL: "https://blobs.test/" + key}, nil
}

func (s *FakeStore) AttachmentURL(_ context.Context, locator, filename string) (string, error) {
	if s.AttachmentErr != nil {
		return "", s.AttachmentErr
	}
	if s.NoAttachment || locator == "" {
		return "", nil
	}
	return "https://blobs.test/" + locator + "?disposition=attachment", nil
}

func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.FileUploaded
	Err    error
}

func (p *RecordingPublisher) PublishFileUploaded(_ context.Context, ev events.FileUploaded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
	return p.Err
}

func (p *RecordingPublisher) Close() error { return nil }
