package upload

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshots/uploader/internal/apperr"
	"github.com/gameshots/uploader/internal/storage"
)

// fakeSigner stands in for the object store. It remembers every grant it
// issued and, like a real store, refuses grants presented after expiry.
type fakeSigner struct {
	mu     sync.Mutex
	now    func() time.Time
	grants map[string]storage.Grant
	calls  int
	err    error
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{now: time.Now, grants: map[string]storage.Grant{}}
}

func (f *fakeSigner) PresignPut(_ context.Context, bucket, key, contentType string, ttl time.Duration) (storage.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return storage.Grant{}, f.err
	}
	g := storage.Grant{
		URL:       "http://store.test/" + bucket + "/" + key + "?ct=" + contentType,
		Method:    http.MethodPut,
		ExpiresAt: f.now().Add(ttl),
	}
	f.grants[g.URL] = g
	return g, nil
}

func (f *fakeSigner) PresignGet(context.Context, string, string, time.Duration) (storage.Grant, error) {
	return storage.Grant{}, errors.New("not used")
}

// present simulates the caller using url at time t.
func (f *fakeSigner) present(url string, t time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.grants[url]
	return ok && g.ValidAt(t)
}

type fakeLedger struct {
	records []GrantRecord
	err     error
}

func (l *fakeLedger) Record(_ context.Context, rec *GrantRecord) error {
	if l.err != nil {
		return l.err
	}
	rec.ID = "id-1"
	l.records = append(l.records, *rec)
	return nil
}

func (l *fakeLedger) ListRecent(_ context.Context, namespaceID string, limit int) ([]GrantRecord, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []GrantRecord
	for _, r := range l.records {
		if namespaceID == "" || r.NamespaceID == namespaceID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(signer storage.Signer, ledger Ledger) *Service {
	return NewService(NewKeyDeriver("games", DigitsOnly), signer, "uploads", 5*time.Minute, ledger)
}

func TestRequestUpload(t *testing.T) {
	signer := newFakeSigner()
	svc := newTestService(signer, nil)

	res, err := svc.RequestUpload(context.Background(), Request{
		FileName:    "My Photo.PNG",
		ContentType: "image/png",
		NamespaceID: "7",
	})
	require.NoError(t, err)
	assert.Regexp(t, keyPattern, res.Key)
	assert.Equal(t, http.MethodPut, res.Grant.Method)
	assert.Contains(t, res.Grant.URL, "/uploads/"+res.Key)
	assert.Contains(t, res.Grant.URL, "ct=image/png")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), res.Grant.ExpiresAt, 5*time.Second)
}

func TestRequestUploadValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"missing namespace", Request{FileName: "a.txt", ContentType: "text/plain"}, "gameId is required"},
		{"blank namespace", Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "  "}, "gameId is required"},
		{"non-digit namespace", Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7x"}, "gameId must contain only digits"},
		{"missing file name", Request{ContentType: "text/plain", NamespaceID: "7"}, "fileName and contentType are required"},
		{"blank content type", Request{FileName: "a.txt", ContentType: " ", NamespaceID: "7"}, "fileName and contentType are required"},
		{"negative size", Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7", Size: -1}, "size must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := newFakeSigner()
			ledger := &fakeLedger{}
			svc := newTestService(signer, ledger)

			_, err := svc.RequestUpload(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.EqualError(t, err, tt.msg)
			assert.Zero(t, signer.calls, "no signing call for invalid input")
			assert.Empty(t, ledger.records)
		})
	}
}

func TestRequestUploadTwiceYieldsDifferentKeys(t *testing.T) {
	signer := newFakeSigner()
	svc := newTestService(signer, nil)
	req := Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7"}

	first, err := svc.RequestUpload(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.RequestUpload(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.NotEqual(t, first.Grant.URL, second.Grant.URL)
}

func TestRequestUploadConcurrentKeysAreUnique(t *testing.T) {
	svc := newTestService(newFakeSigner(), nil)
	req := Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7"}

	const n = 64
	keys := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.RequestUpload(context.Background(), req)
			if assert.NoError(t, err) {
				keys[i] = res.Key
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestGrantRejectedAfterExpiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := newFakeSigner()
	signer.now = func() time.Time { return issued }
	svc := newTestService(signer, nil)

	res, err := svc.RequestUpload(context.Background(), Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7"})
	require.NoError(t, err)

	assert.Equal(t, issued.Add(5*time.Minute), res.Grant.ExpiresAt)
	assert.True(t, signer.present(res.Grant.URL, issued.Add(4*time.Minute)))
	assert.False(t, signer.present(res.Grant.URL, issued.Add(5*time.Minute)))
	assert.False(t, signer.present(res.Grant.URL, issued.Add(time.Hour)))
}

func TestRequestUploadSignerFailure(t *testing.T) {
	signer := newFakeSigner()
	signer.err = apperr.StoreUnavailable("presign put", errors.New("boom"))
	svc := newTestService(signer, nil)

	_, err := svc.RequestUpload(context.Background(), Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7"})
	require.Error(t, err)
	assert.True(t, apperr.IsStoreUnavailable(err))
	assert.False(t, apperr.IsValidation(err))
}

func TestRequestUploadRecordsGrant(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(newFakeSigner(), ledger)

	res, err := svc.RequestUpload(context.Background(), Request{
		FileName:    " clip.mp4 ",
		ContentType: "video/mp4",
		NamespaceID: " 12 ",
		Size:        1024,
	})
	require.NoError(t, err)

	require.Len(t, ledger.records, 1)
	rec := ledger.records[0]
	assert.Equal(t, res.Key, rec.Key)
	assert.Equal(t, "12", rec.NamespaceID)
	assert.Equal(t, "clip.mp4", rec.FileName)
	assert.Equal(t, "video/mp4", rec.ContentType)
	assert.Equal(t, int64(1024), rec.Size)
	assert.Equal(t, res.Grant.ExpiresAt, rec.ExpiresAt)
}

func TestRequestUploadLedgerFailure(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("db down")}
	svc := newTestService(newFakeSigner(), ledger)

	_, err := svc.RequestUpload(context.Background(), Request{FileName: "a.txt", ContentType: "text/plain", NamespaceID: "7"})
	require.Error(t, err)
	assert.True(t, apperr.IsStoreUnavailable(err))
	assert.Contains(t, err.Error(), "db down")
}

func TestRecentGrants(t *testing.T) {
	ledger := &fakeLedger{records: []GrantRecord{
		{Key: "games/1/a", NamespaceID: "1"},
		{Key: "games/2/b", NamespaceID: "2"},
		{Key: "games/1/c", NamespaceID: "1"},
	}}
	svc := newTestService(newFakeSigner(), ledger)
	ctx := context.Background()

	all, err := svc.RecentGrants(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := svc.RecentGrants(ctx, "1", 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "games/1/a", one[0].Key)

	none, err := svc.RecentGrants(ctx, "9", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.RecentGrants(ctx, "x/y", 10)
	assert.True(t, apperr.IsValidation(err))
}

func TestRecentGrantsLedgerDisabled(t *testing.T) {
	svc := newTestService(newFakeSigner(), nil)
	_, err := svc.RecentGrants(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrLedgerDisabled)
}
