// utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore wraps an S3-compatible bucket used for timeline archive
// exports. Any S3 endpoint works (AWS, R2, MinIO).
type ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewObjectStoreFromEnv builds the client from ARCHIVE_* environment
// variables. Returns (nil, nil) when no bucket is configured, so archiving
// stays optional.
func NewObjectStoreFromEnv() (*ObjectStore, error) {
	bucket := os.Getenv("ARCHIVE_BUCKET_NAME")
	if bucket == "" {
		return nil, nil
	}
	endpoint := os.Getenv("ARCHIVE_ENDPOINT")
	accessKeyID := os.Getenv("ARCHIVE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("ARCHIVE_ACCESS_KEY_SECRET")
	region := os.Getenv("ARCHIVE_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive store config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &ObjectStore{client: client, bucket: bucket}, nil
}

// Upload puts one object and returns its key.
func (o *ObjectStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
