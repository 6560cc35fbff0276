package upload

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gameshots/uploader/internal/apperr"
	"github.com/gameshots/uploader/internal/storage"
)

const (
	defaultGrantLimit = 50
	maxGrantLimit     = 200
)

// ErrLedgerDisabled is returned by RecentGrants when no ledger is configured.
var ErrLedgerDisabled = errors.New("upload grant ledger is disabled")

// Ledger records issued upload grants.
type Ledger interface {
	Record(ctx context.Context, rec *GrantRecord) error
	ListRecent(ctx context.Context, namespaceID string, limit int) ([]GrantRecord, error)
}

// Request is an upload-URL request as received from a caller.
type Request struct {
	FileName    string
	ContentType string
	NamespaceID string
	Size        int64 // optional hint, 0 when unknown
}

// Result is a signed PUT grant for a freshly derived key.
type Result struct {
	Key   string
	Grant storage.Grant
}

// Service contains the business logic for issuing upload URLs.
type Service struct {
	keys   *KeyDeriver
	signer storage.Signer
	bucket string
	ttl    time.Duration
	ledger Ledger
}

// NewService creates a new upload Service. signer must mint URLs the caller's
// browser can reach. ledger may be nil.
func NewService(keys *KeyDeriver, signer storage.Signer, bucket string, ttl time.Duration, ledger Ledger) *Service {
	if ttl <= 0 {
		ttl = storage.DefaultTTL
	}
	return &Service{keys: keys, signer: signer, bucket: bucket, ttl: ttl, ledger: ledger}
}

// RequestUpload validates req, derives a new key and signs a PUT for it.
// Nothing is written to the object store; the caller uploads with the URL.
// Identical requests yield different keys.
func (s *Service) RequestUpload(ctx context.Context, req Request) (*Result, error) {
	fileName := strings.TrimSpace(req.FileName)
	contentType := strings.TrimSpace(req.ContentType)
	if fileName == "" || contentType == "" {
		return nil, apperr.Validation("fileName", "fileName and contentType are required")
	}
	if req.Size < 0 {
		return nil, apperr.Validation("size", "size must not be negative")
	}

	key, err := s.keys.DeriveKey(req.NamespaceID, fileName)
	if err != nil {
		return nil, err
	}

	grant, err := s.signer.PresignPut(ctx, s.bucket, key, contentType, s.ttl)
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		rec := &GrantRecord{
			Key:         key,
			NamespaceID: strings.TrimSpace(req.NamespaceID),
			FileName:    fileName,
			ContentType: contentType,
			Size:        req.Size,
			ExpiresAt:   grant.ExpiresAt,
		}
		if err := s.ledger.Record(ctx, rec); err != nil {
			return nil, apperr.StoreUnavailable("record upload grant", err)
		}
	}

	log.Printf("[upload] issued key=%s expires=%s", key, grant.ExpiresAt.UTC().Format(time.RFC3339))
	return &Result{Key: key, Grant: grant}, nil
}

// RecentGrants lists ledger entries, newest first. An empty namespaceID lists
// all namespaces; a non-positive limit selects the default.
func (s *Service) RecentGrants(ctx context.Context, namespaceID string, limit int) ([]GrantRecord, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}

	namespaceID = strings.TrimSpace(namespaceID)
	if namespaceID != "" {
		id, err := s.keys.ValidateNamespace(namespaceID)
		if err != nil {
			return nil, err
		}
		namespaceID = id
	}

	switch {
	case limit <= 0:
		limit = defaultGrantLimit
	case limit > maxGrantLimit:
		limit = maxGrantLimit
	}

	records, err := s.ledger.ListRecent(ctx, namespaceID, limit)
	if err != nil {
		return nil, apperr.StoreUnavailable("list upload grants", err)
	}
	if records == nil {
		records = []GrantRecord{}
	}
	return records, nil
}
