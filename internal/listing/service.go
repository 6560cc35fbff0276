// Package listing enumerates stored objects and mints browser-reachable URLs
// for each of them.
package listing

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gameshots/uploader/internal/storage"
)

// DefaultMaxItems caps one listing call. There is no continuation token.
const DefaultMaxItems = 200

// Item is one object in a listing.
type Item struct {
	Key          string
	Size         int64
	LastModified *time.Time
	DirectURL    string
	Preview      storage.Grant
}

// Config holds the listing parameters fixed at startup.
type Config struct {
	Bucket         string // bucket listed through the internal client
	PublicBucket   string // bucket name used in direct URLs
	PublicEndpoint string
	TTL            time.Duration
	MaxItems       int
	Concurrency    int
}

// Service lists objects through the internal client and signs previews with
// the public signer, so returned URLs resolve from the caller's network.
type Service struct {
	lister storage.Lister
	public storage.Signer
	cfg    Config
}

// NewService creates a new listing Service, filling zero Config values with
// defaults.
func NewService(lister storage.Lister, public storage.Signer, cfg Config) *Service {
	if cfg.PublicBucket == "" {
		cfg.PublicBucket = cfg.Bucket
	}
	if cfg.TTL <= 0 {
		cfg.TTL = storage.DefaultTTL
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{lister: lister, public: public, cfg: cfg}
}

// List returns up to MaxItems objects, newest first. Objects without a
// timestamp sort last. The first store or signing failure aborts the whole
// listing.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	objects, err := s.lister.ListObjects(ctx, s.cfg.Bucket, s.cfg.MaxItems)
	if err != nil {
		return nil, err
	}

	kept := objects[:0]
	for _, o := range objects {
		if o.Key != "" {
			kept = append(kept, o)
		}
	}
	sortNewestFirst(kept)

	items := make([]Item, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, o := range kept {
		g.Go(func() error {
			preview, err := s.public.PresignGet(gctx, s.cfg.Bucket, o.Key, s.cfg.TTL)
			if err != nil {
				return err
			}
			items[i] = Item{
				Key:          o.Key,
				Size:         o.Size,
				LastModified: timestamp(o.LastModified),
				DirectURL:    storage.DirectURL(s.cfg.PublicEndpoint, s.cfg.PublicBucket, o.Key),
				Preview:      preview,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// sortNewestFirst orders by LastModified descending; the zero time counts as
// the epoch and therefore lands at the end.
func sortNewestFirst(objects []storage.ObjectInfo) {
	sort.SliceStable(objects, func(i, j int) bool {
		return unixMilli(objects[i].LastModified) > unixMilli(objects[j].LastModified)
	})
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timestamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
