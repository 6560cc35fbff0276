package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postUploadURL(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/upload-url", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.CreateUploadURL(rr, req)
	return rr
}

func TestCreateUploadURL(t *testing.T) {
	h := NewHandler(newTestService(newFakeSigner(), nil))

	rr := postUploadURL(t, h, `{"fileName":"My Photo.PNG","contentType":"image/png","gameId":"7"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
		ExpiresAt string `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Regexp(t, keyPattern, body.Key)
	assert.Contains(t, body.UploadURL, body.Key)
	assert.NotEmpty(t, body.ExpiresAt)
}

func TestCreateUploadURLErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"malformed json", `{"fileName":`, nil, http.StatusBadRequest, "invalid request body"},
		{"missing game id", `{"fileName":"a.txt","contentType":"text/plain","gameId":""}`, nil, http.StatusBadRequest, "gameId is required"},
		{"missing content type", `{"fileName":"a.txt","gameId":"7"}`, nil, http.StatusBadRequest, "fileName and contentType are required"},
		{"store failure", `{"fileName":"a.txt","contentType":"text/plain","gameId":"7"}`, errors.New("dial tcp: refused"), http.StatusInternalServerError, "failed to create upload url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := newFakeSigner()
			signer.err = tt.err
			h := NewHandler(newTestService(signer, nil))

			rr := postUploadURL(t, h, tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, rr.Body.String())
		})
	}
}

func TestListGrantsHandler(t *testing.T) {
	ledger := &fakeLedger{records: []GrantRecord{{ID: "1", Key: "games/7/a", NamespaceID: "7"}}}
	h := NewHandler(newTestService(newFakeSigner(), ledger))

	rr := httptest.NewRecorder()
	h.ListGrants(rr, httptest.NewRequest(http.MethodGet, "/api/upload-grants?gameId=7&limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Items []GrantRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "games/7/a", body.Items[0].Key)

	rr = httptest.NewRecorder()
	h.ListGrants(rr, httptest.NewRequest(http.MethodGet, "/api/upload-grants?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	ledger.err = errors.New("db down")
	rr = httptest.NewRecorder()
	h.ListGrants(rr, httptest.NewRequest(http.MethodGet, "/api/upload-grants", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}
