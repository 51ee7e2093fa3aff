package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	_ BlobStore     = (*MinioStore)(nil)
	_ BucketEnsurer = (*MinioStore)(nil)
)

// MinioStore talks to MinIO or another S3-compatible server through minio-go.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	region     string
	baseURL    string
	publicRead bool
	presignTTL time.Duration
}

func NewMinioStore(sc config.StorageConf, presignTTL time.Duration) (*MinioStore, error) {
	host, secure := minioEndpoint(sc.Endpoint, sc.UseSSL)
	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: secure,
		Region: sc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new client: %w", err)
	}

	return &MinioStore{
		client:     mc,
		bucket:     sc.Bucket,
		region:     sc.Region,
		baseURL:    endpointURL(host, secure),
		publicRead: sc.PublicRead,
		presignTTL: presignTTL,
	}, nil
}

// minioEndpoint accepts "host:port" as well as a full URL; minio-go only
// takes the former, with TLS given separately.
func minioEndpoint(endpoint string, useSSL bool) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https"
}

// EnsureBucket creates the bucket if it does not already exist.
func (m *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

func (m *MinioStore) Put(ctx context.Context, in PutInput) (*Object, error) {
	ext, err := CheckFormat(in.Filename, in.AllowedFormats)
	if err != nil {
		return nil, err
	}
	key := ObjectKey(in.Folder, in.Filename, ext)

	_, err = m.client.PutObject(ctx, m.bucket, key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	if m.publicRead {
		return &Object{Locator: key, URL: m.baseURL + "/" + m.bucket + "/" + (&url.URL{Path: key}).EscapedPath()}, nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.presignTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("presign %q: %w", key, err)
	}
	return &Object{Locator: key, URL: u.String()}, nil
}

func (m *MinioStore) AttachmentURL(ctx context.Context, locator, filename string) (string, error) {
	if locator == "" {
		return "", nil
	}
	params := url.Values{}
	params.Set("response-content-disposition", AttachmentDisposition(filename))

	u, err := m.client.PresignedGetObject(ctx, m.bucket, locator, m.presignTTL, params)
	if err != nil {
		return "", fmt.Errorf("presign attachment %q: %w", locator, err)
	}
	return u.String(), nil
}
