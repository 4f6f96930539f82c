// Package blob stores media binaries in S3-compatible object storage and
// maps between object keys and the public URLs persisted on records.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3API is the subset of the S3 client used here, an interface for
// testability.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration. PublicBaseURL is the
// URL prefix objects are served from (CDN or bucket endpoint).
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Client puts and deletes objects and derives their public URLs.
type Client struct {
	api     s3API
	bucket  string
	baseURL string
}

// New creates a Client. When credentials are missing the client is
// unconfigured and every operation fails, which lets the rest of the app
// start without storage (read-only mode).
func New(cfg Config) *Client {
	c := &Client{
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts := s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			UsePathStyle: true,
		}
		if cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		c.api = s3.New(opts)
	}
	return c
}

// Configured reports whether the client has storage credentials.
func (c *Client) Configured() bool { return c.api != nil }

// Put uploads the object and returns its public URL.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("blob storage not configured")
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return c.URLForKey(key), nil
}

// Delete removes the object. Transient failures are retried a few times
// with constant backoff before the error is returned.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c.api == nil {
		return fmt.Errorf("blob storage not configured")
	}

	backoff := retry.WithMaxRetries(2, retry.NewConstant(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// URLForKey returns the public URL an object is served from.
func (c *Client) URLForKey(key string) string {
	return c.baseURL + "/" + key
}

// KeyFromURL inverts URLForKey. It fails for URLs outside the configured
// public base, which guards against deleting objects this client does not
// own.
func (c *Client) KeyFromURL(url string) (string, error) {
	prefix := c.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %q is not under %q", url, c.baseURL)
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", fmt.Errorf("url %q has no object key", url)
	}
	return key, nil
}
