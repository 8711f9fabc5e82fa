// Package s3 archives uploaded invoice documents in an S3 bucket.
package s3

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"invoicedesk/internal/config"
	"invoicedesk/internal/port"
)

// Client is an S3-backed port.DocumentArchive.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewClient creates an S3 client for the archive bucket. Static credentials are
// used when both keys are set; otherwise the default AWS chain applies.
func NewClient(ctx context.Context, cfg *config.S3Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3.NewClient: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
	}, nil
}

// Put streams the document into the bucket.
func (c *Client) Put(ctx context.Context, doc port.ArchivedDocument) error {
	put := &s3.PutObjectInput{
		Bucket:      aws.String(doc.Bucket),
		Key:         aws.String(doc.Key),
		Body:        doc.Body,
		ContentType: aws.String(doc.MediaType),
	}
	if doc.Size > 0 {
		put.ContentLength = aws.Int64(doc.Size)
	}
	if _, err := c.uploader.Upload(ctx, put); err != nil {
		return fmt.Errorf("s3.Put %s: %w", doc.Key, err)
	}
	return nil
}

// Remove deletes an archived document. S3 reports success for missing keys.
func (c *Client) Remove(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3.Remove %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a GET link to the document valid for ttl.
func (c *Client) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3.SignedURL %s: %w", key, err)
	}
	return req.URL, nil
}

// ArchiveKey returns uploads/YYYY/MM/DD/<uuid><ext> for a document name.
func ArchiveKey(name string, now time.Time) string {
	ext := strings.ToLower(path.Ext(name))
	return path.Join("uploads", now.UTC().Format("2006/01/02"), uuid.New().String()+ext)
}
