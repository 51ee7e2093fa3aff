package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var ErrFormatNotAllowed = errors.New("format not allowed")

// PutInput describes one object to store. Folder and AllowedFormats come from
// config and are passed on every call so the provider enforces them.
type PutInput struct {
	Folder         string
	AllowedFormats []string
	Filename       string
	ContentType    string
	Size           int64 // -1 if unknown
	Body           io.Reader
}

// Object is what the provider hands back after a successful Put.
type Object struct {
	Locator string // provider key, kept as FileRecord.PublicID
	URL     string // retrieval URL, kept as FileRecord.Path
}

// BlobStore is the contract the upload and download paths rely on.
type BlobStore interface {
	Put(ctx context.Context, in PutInput) (*Object, error)
	// AttachmentURL returns a URL that makes browsers save the object instead
	// of playing it. An empty result means the provider has nothing to offer.
	AttachmentURL(ctx context.Context, locator, filename string) (string, error)
}

// BucketEnsurer is implemented by drivers that can create their bucket.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// New picks the driver named by storage.driver.
func New(ctx context.Context, sc config.StorageConf, presignTTL time.Duration) (BlobStore, error) {
	switch sc.Driver {
	case "s3":
		s, err := NewS3Store(ctx, sc, presignTTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		m, err := NewMinioStore(sc, presignTTL)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

// CheckFormat returns the lower-cased extension of filename if it is in allowed.
func CheckFormat(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrFormatNotAllowed, filename)
	}
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s (allowed: %s)", ErrFormatNotAllowed, ext, strings.Join(allowed, ", "))
}

// ObjectKey builds "<folder>/<uuid>_<slug>.<ext>".
func ObjectKey(folder, filename, ext string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	name := slug.Make(base)
	if name == "" {
		name = "file"
	}
	key := uuid.NewString() + "_" + name + "." + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return key
	}
	return folder + "/" + key
}

// AttachmentDisposition is the Content-Disposition forced on download URLs.
func AttachmentDisposition(filename string) string {
	if filename == "" {
		return "attachment"
	}
	if d := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); d != "" {
		return d
	}
	return "attachment"
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
