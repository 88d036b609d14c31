package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"outfit-studio-backend/internal/config"
)

// Client talks to an S3-compatible bucket (Cloudflare R2 in production).
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	httpClient    *http.Client
	bucket        string
	endpoint      string
	publicDomain  string
}

type UploadResult struct {
	Key string
	URL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.StorageEndpoint, "/")
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		bucket:        cfg.StorageBucket,
		endpoint:      endpoint,
		publicDomain:  strings.TrimSuffix(cfg.StorageDomain, "/"),
	}, nil
}

// Upload writes data under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(c.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String("inline"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &UploadResult{Key: key, URL: c.PublicURL(key)}, nil
}

// DownloadAndUpload materializes provider output: it fetches the bytes at
// srcURL and re-uploads them under key, so the public URL outlives the
// provider's storage.
func (c *Client) DownloadAndUpload(ctx context.Context, srcURL, key, contentType string) (*UploadResult, error) {
	data, err := c.Fetch(ctx, srcURL)
	if err != nil {
		return nil, err
	}
	return c.Upload(ctx, key, data, contentType)
}

// Fetch downloads the bytes at url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// PresignPut returns a presigned PUT URL for direct browser uploads,
// plus the public URL the object will have once uploaded.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (uploadURL, publicURL string, err error) {
	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to presign put: %w", err)
	}

	return req.URL, c.PublicURL(key), nil
}

// PublicURL prefers the configured public domain (R2 custom domain or
// *.r2.dev) and falls back to the endpoint path.
func (c *Client) PublicURL(key string) string {
	if c.publicDomain != "" {
		return fmt.Sprintf("%s/%s", c.publicDomain, key)
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
}
