package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// CompletedPart is the client-reported (part number, etag) pair the storage
// backend needs to assemble a multipart upload.
type CompletedPart struct {
	PartNumber int64  `json:"PartNumber"`
	ETag       string `json:"ETag"`
}

// Config holds the connection settings for the object store. Endpoint is
// optional and only set when running against MinIO or another S3-compatible
// store.
type Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

// Client wraps the S3 API with the five primitives the upload orchestrator
// consumes. File bytes never pass through this process: clients push parts
// straight to storage using presigned URLs.
type Client struct {
	s3         *s3.S3
	bucket     string
	presignTTL time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 300 * time.Second
	}

	return &Client{
		s3:         s3.New(sess),
		bucket:     cfg.Bucket,
		presignTTL: ttl,
	}, nil
}

// CreateMultipartUpload opens a multipart session and returns its upload id.
func (c *Client) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	out, err := c.s3.CreateMultipartUploadWithContext(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create multipart upload: %w", err)
	}
	return aws.StringValue(out.UploadId), nil
}

// PresignUploadPart returns a short-lived URL the uploading client uses to
// push one part directly to storage.
func (c *Client) PresignUploadPart(key, uploadID string, partNumber int64) (string, error) {
	req, _ := c.s3.UploadPartRequest(&s3.UploadPartInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int64(partNumber),
	})

	url, err := req.Presign(c.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload part: %w", err)
	}
	return url, nil
}

// CompleteMultipartUpload instructs storage to assemble the parts into one object.
func (c *Client) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []CompletedPart) error {
	completed := make([]*s3.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, &s3.CompletedPart{
			PartNumber: aws.Int64(p.PartNumber),
			ETag:       aws.String(p.ETag),
		})
	}

	_, err := c.s3.CompleteMultipartUploadWithContext(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &s3.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}
	return nil
}

// AbortMultipartUpload discards an unfinished session so storage can reclaim
// the uploaded parts.
func (c *Client) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	_, err := c.s3.AbortMultipartUploadWithContext(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}
	return nil
}

// PresignDownload returns a short-lived read URL for an object.
func (c *Client) PresignDownload(key string) (string, error) {
	req, _ := c.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(c.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return url, nil
}

// ObjectURL is the canonical public URL recorded on a file row after the
// upload completes.
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key)
}
