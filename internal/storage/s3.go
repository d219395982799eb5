// Package storage persists uploaded project documents in an S3-compatible
// bucket (AWS or MinIO via the endpoint override).
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/scopedno/energidesk/internal/config"
)

// Uploader is the narrow interface handlers depend on; tests swap in a fake.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
}

type S3Store struct {
	cfg config.Config
}

func NewS3Store(cfg config.Config) *S3Store {
	return &S3Store{cfg: cfg}
}

// ObjectKey returns a date-partitioned, unguessable key for a new upload.
func ObjectKey() string {
	d := time.Now()
	return fmt.Sprintf("projects/%d/%02d/%s", d.Year(), int(d.Month()), uuid.NewString())
}

func (s *S3Store) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3User,
			s.cfg.S3Password,
			"",
		)))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("s3 config: %w", err)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
