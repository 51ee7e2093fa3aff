package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fathima-sithara/music-share/internal/config"
)

var _ BlobStore = (*S3Store)(nil)

type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucket     string
	region     string
	endpoint   string
	publicRead bool
	presignTTL time.Duration
}

// NewS3Store works against AWS or any S3-compatible endpoint (MinIO, R2).
// Static keys are used when configured, otherwise the default credential chain.
func NewS3Store(ctx context.Context, sc config.StorageConf, presignTTL time.Duration) (*S3Store, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(sc.Region)}
	if sc.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, ""),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var endpoint string
	if sc.Endpoint != "" {
		endpoint = endpointURL(sc.Endpoint, sc.UseSSL)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		bucket:     sc.Bucket,
		region:     sc.Region,
		endpoint:   endpoint,
		publicRead: sc.PublicRead,
		presignTTL: presignTTL,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, in PutInput) (*Object, error) {
	ext, err := CheckFormat(in.Filename, in.AllowedFormats)
	if err != nil {
		return nil, err
	}
	key := ObjectKey(in.Folder, in.Filename, ext)

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        in.Body,
		ContentType: aws.String(in.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %q: %w", key, err)
	}

	u, err := s.retrievalURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Object{Locator: key, URL: u}, nil
}

func (s *S3Store) AttachmentURL(ctx context.Context, locator, filename string) (string, error) {
	if locator == "" {
		return "", nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(locator),
		ResponseContentDisposition: aws.String(AttachmentDisposition(filename)),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign attachment %q: %w", locator, err)
	}
	return req.URL, nil
}

// retrievalURL is the public object URL when the bucket is public-read,
// otherwise a presigned GET.
func (s *S3Store) retrievalURL(ctx context.Context, key string) (string, error) {
	if s.publicRead {
		return s.publicURL(key), nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Store) publicURL(key string) string {
	if s.endpoint != "" {
		u, err := url.Parse(s.endpoint)
		if err == nil {
			u.Path = "/" + s.bucket + "/" + key
			return u.String()
		}
	}
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", s.bucket, s.region),
		Path:   "/" + key,
	}
	return u.String()
}
