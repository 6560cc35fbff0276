package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/encoding/httpbinding"

	"github.com/gameshots/uploader/internal/apperr"
)

// S3Client implements Client on top of aws-sdk-go-v2.
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient

	// PUT URLs are signed directly so Content-Type stays a signed header.
	signer    *v4.Signer
	creds     aws.CredentialsProvider
	region    string
	base      *url.URL
	pathStyle bool
}

var _ Client = (*S3Client)(nil)

// NewS3Client creates an aws-sdk-go-v2 client pinned to one endpoint with
// static credentials. No shared AWS config or profile is consulted.
func NewS3Client(opts Options) (*S3Client, error) {
	if problems := opts.missing(); len(problems) > 0 {
		return nil, apperr.Configuration(problems...)
	}
	if _, _, err := opts.endpoint(); err != nil {
		return nil, apperr.Configuration(err.Error())
	}
	base, err := url.Parse(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, apperr.Configuration(err.Error())
	}

	cfg := aws.Config{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = opts.ForcePathStyle
	})

	return &S3Client{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		signer: v4.NewSigner(func(o *v4.SignerOptions) {
			o.DisableURIPathEscaping = true
		}),
		creds:     cfg.Credentials,
		region:    opts.Region,
		base:      base,
		pathStyle: opts.ForcePathStyle,
	}, nil
}

// PresignPut signs a PUT of key with Content-Type among the signed headers, so
// the uploader must send the same value.
func (c *S3Client) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (Grant, error) {
	ttl, err := expiry(ttl)
	if err != nil {
		return Grant{}, err
	}
	issuedAt := time.Now()

	u := c.objectURL(bucket, key)
	q := u.Query()
	q.Set("X-Amz-Expires", strconv.FormatInt(int64(ttl/time.Second), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), nil)
	if err != nil {
		return Grant{}, fmt.Errorf("build put request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return Grant{}, apperr.StoreUnavailable("retrieve credentials", err)
	}
	signed, _, err := c.signer.PresignHTTP(ctx, creds, req, "UNSIGNED-PAYLOAD", "s3", c.region, issuedAt)
	if err != nil {
		return Grant{}, apperr.StoreUnavailable("presign put", err)
	}
	return Grant{URL: signed, Method: http.MethodPut, ExpiresAt: issuedAt.Add(ttl)}, nil
}

func (c *S3Client) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (Grant, error) {
	ttl, err := expiry(ttl)
	if err != nil {
		return Grant{}, err
	}
	issuedAt := time.Now()
	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return Grant{}, apperr.StoreUnavailable("presign get", err)
	}
	return Grant{URL: req.URL, Method: http.MethodGet, ExpiresAt: issuedAt.Add(ttl)}, nil
}

// ListObjects issues a single ListObjectsV2 call; there is no continuation.
// maxItems is clamped to MaxListItems.
func (c *S3Client) ListObjects(ctx context.Context, bucket string, maxItems int) ([]ObjectInfo, error) {
	if maxItems <= 0 {
		return []ObjectInfo{}, nil
	}
	maxItems = min(maxItems, MaxListItems)
	out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(int32(maxItems)),
	})
	if err != nil {
		return nil, apperr.StoreUnavailable("list objects", err)
	}

	contents := out.Contents
	if len(contents) > maxItems {
		contents = contents[:maxItems]
	}
	objects := make([]ObjectInfo, 0, len(contents))
	for _, o := range contents {
		objects = append(objects, ObjectInfo{
			Key:          aws.ToString(o.Key),
			Size:         aws.ToInt64(o.Size),
			LastModified: aws.ToTime(o.LastModified),
		})
	}
	return objects, nil
}

func (c *S3Client) Ping(ctx context.Context, bucket string) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	return apperr.StoreUnavailable("check bucket", err)
}

// objectURL addresses key in bucket, path-style or virtual-hosted.
func (c *S3Client) objectURL(bucket, key string) *url.URL {
	u := *c.base
	path := "/" + httpbinding.EscapePath(key, false)
	if c.pathStyle {
		path = "/" + bucket + path
	} else {
		u.Host = bucket + "." + u.Host
	}
	u.Path, _ = url.PathUnescape(strings.TrimRight(u.Path, "/") + path)
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + path
	return &u
}
