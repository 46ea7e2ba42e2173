package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	apperrors "friendgraph/backend/pkg/errors"
	"friendgraph/backend/pkg/logger"
)

// S3 publishes interactive graph documents to an S3 bucket with public-read
// ACLs, the way the hosting bucket is configured to serve them.
type S3 struct {
	client  *s3.Client
	bucket  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewS3 creates an S3 publisher for the given bucket.
func NewS3(client *s3.Client, bucket string, timeout time.Duration) *S3 {
	return &S3{
		client:  client,
		bucket:  bucket,
		timeout: timeout,
		logger:  logger.Get(),
	}
}

// Publish uploads the HTML artifact and returns its public URL. Auth,
// network and quota failures all surface as publish errors; the upload is
// bounded by the configured timeout rather than hanging.
func (p *S3) Publish(ctx context.Context, objectName string, html []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(objectName),
		Body:        bytes.NewReader(html),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String("text/html"),
	})
	if err != nil {
		return "", apperrors.NewPublishFailed(objectName, err)
	}

	url := URL(p.bucket, objectName)
	p.logger.Info("interactive graph published",
		zap.String("object", objectName),
		zap.Int("size_bytes", len(html)),
	)
	return url, nil
}

// URL returns the public URL for an object in the given bucket.
func URL(bucket, objectName string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, objectName)
}
