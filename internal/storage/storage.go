// Package storage defines the object store contracts used by the upload and
// listing services. Two drivers are provided: minio-go and aws-sdk-go-v2. Both
// work with any S3-compatible provider (MinIO, AWS S3, R2, ...).
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gameshots/uploader/internal/apperr"
)

// DefaultTTL is the lifetime of every signed URL unless configured otherwise.
const DefaultTTL = 5 * time.Minute

// Presigned URL lifetimes accepted by S3 (X-Amz-Expires).
const (
	MinTTL = time.Second
	MaxTTL = 7 * 24 * time.Hour
)

// MaxListItems is the most objects one listing request returns. It is the
// page size limit of ListObjectsV2.
const MaxListItems = 1000

// CheckTTL reports whether ttl is a lifetime S3 accepts.
func CheckTTL(ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("signed URL lifetime %s is outside [%s, %s]", ttl, MinTTL, MaxTTL)
	}
	return nil
}

// expiry truncates ttl to whole seconds, the resolution of X-Amz-Expires, so
// the grant's ExpiresAt matches what the store enforces.
func expiry(ttl time.Duration) (time.Duration, error) {
	if err := CheckTTL(ttl); err != nil {
		return 0, apperr.Configuration(err.Error())
	}
	return ttl.Truncate(time.Second), nil
}

// Grant is a time-limited signed URL. It carries no server-side state: the
// object store enforces expiry through the signature.
type Grant struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the grant may still be presented at t.
func (g Grant) ValidAt(t time.Time) bool {
	return t.Before(g.ExpiresAt)
}

// ObjectInfo is the listing metadata of one stored object. LastModified is the
// zero time when the store did not report one.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Signer mints signed URLs against one base endpoint.
type Signer interface {
	// PresignPut signs an upload of key with the given Content-Type.
	PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (Grant, error)
	// PresignGet signs a download of key.
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (Grant, error)
}

// Lister enumerates objects in a bucket.
type Lister interface {
	// ListObjects returns metadata for at most maxItems objects in bucket.
	ListObjects(ctx context.Context, bucket string, maxItems int) ([]ObjectInfo, error)
	// Ping checks that bucket is reachable.
	Ping(ctx context.Context, bucket string) error
}

// Client is a full store client: the internal instance both lists and signs.
type Client interface {
	Signer
	Lister
}

// Options configures a driver instance for one endpoint.
type Options struct {
	Endpoint       string // base URL including scheme, e.g. "http://localhost:9000"
	Region         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// endpoint splits Options.Endpoint into host and TLS flag.
func (o Options) endpoint() (host string, secure bool, err error) {
	u, err := url.Parse(o.Endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint %q: %w", o.Endpoint, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false, fmt.Errorf("endpoint %q must be an absolute http(s) URL", o.Endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

func (o Options) missing() []string {
	var problems []string
	if o.Endpoint == "" {
		problems = append(problems, "storage endpoint is required")
	}
	if o.AccessKey == "" {
		problems = append(problems, "storage access key is required")
	}
	if o.SecretKey == "" {
		problems = append(problems, "storage secret key is required")
	}
	if o.Region == "" {
		problems = append(problems, "storage region is required")
	}
	return problems
}

// DirectURL builds the unsigned URL of key under a public endpoint. Key
// segments are escaped individually so multi-segment keys stay path-like.
// It only resolves when the object is publicly readable.
func DirectURL(publicEndpoint, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(publicEndpoint, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}
