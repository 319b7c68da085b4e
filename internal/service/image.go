package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/recipe-creator/backend/config"
)

// ImageStore keeps profile images and hands out temporary read URLs.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// S3ImageStore is an ImageStore on an S3 bucket.
type S3ImageStore struct {
	s3Config  *config.S3Config
	urlExpiry time.Duration
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config, urlExpiry: time.Hour}
}

func (s *S3ImageStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) URL(ctx context.Context, key string) (string, error) {
	return s.s3Config.PresignGet(ctx, key, s.urlExpiry)
}
