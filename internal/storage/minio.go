package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gameshots/uploader/internal/apperr"
)

// MinioClient implements Client on top of minio-go.
type MinioClient struct {
	client *minio.Client
}

var _ Client = (*MinioClient)(nil)

// NewMinioClient creates a minio-go client for one endpoint. The region is set
// explicitly so presigning never needs a bucket-location round trip.
func NewMinioClient(opts Options) (*MinioClient, error) {
	if problems := opts.missing(); len(problems) > 0 {
		return nil, apperr.Configuration(problems...)
	}
	host, secure, err := opts.endpoint()
	if err != nil {
		return nil, apperr.Configuration(err.Error())
	}

	lookup := minio.BucketLookupAuto
	if opts.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioClient{client: client}, nil
}

// PresignPut signs a PUT of key. Content-Type is part of the signed headers, so
// the uploader must send the same value.
func (c *MinioClient) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (Grant, error) {
	ttl, err := expiry(ttl)
	if err != nil {
		return Grant{}, err
	}
	issuedAt := time.Now()
	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := c.client.PresignHeader(ctx, http.MethodPut, bucket, key, ttl, url.Values{}, headers)
	if err != nil {
		return Grant{}, apperr.StoreUnavailable("presign put", err)
	}
	return Grant{URL: u.String(), Method: http.MethodPut, ExpiresAt: issuedAt.Add(ttl)}, nil
}

// PresignGet signs a GET of key.
func (c *MinioClient) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (Grant, error) {
	ttl, err := expiry(ttl)
	if err != nil {
		return Grant{}, err
	}
	issuedAt := time.Now()
	u, err := c.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return Grant{}, apperr.StoreUnavailable("presign get", err)
	}
	return Grant{URL: u.String(), Method: http.MethodGet, ExpiresAt: issuedAt.Add(ttl)}, nil
}

// ListObjects walks bucket recursively and stops after maxItems objects.
func (c *MinioClient) ListObjects(ctx context.Context, bucket string, maxItems int) ([]ObjectInfo, error) {
	if maxItems <= 0 {
		return []ObjectInfo{}, nil
	}
	// Cancelling stops the listing goroutine once enough objects were read.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]ObjectInfo, 0, maxItems)
	for obj := range c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Recursive: true,
		MaxKeys:   maxItems,
	}) {
		if obj.Err != nil {
			return nil, apperr.StoreUnavailable("list objects", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		if len(objects) >= maxItems {
			break
		}
	}
	return objects, nil
}

// Ping checks that bucket exists.
func (c *MinioClient) Ping(ctx context.Context, bucket string) error {
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return apperr.StoreUnavailable("check bucket", err)
	}
	if !exists {
		return apperr.StoreUnavailable("check bucket", fmt.Errorf("bucket %q does not exist", bucket))
	}
	return nil
}

// EnsureBucket creates bucket if it is missing and, when publicRead is set,
// applies an anonymous read policy so direct URLs resolve.
func (c *MinioClient) EnsureBucket(ctx context.Context, bucket, region string, publicRead bool) error {
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Printf("storage: created bucket %q", bucket)
	}

	if !publicRead {
		return nil
	}
	if err := c.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	log.Printf("storage: bucket %q is publicly readable", bucket)
	return nil
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
