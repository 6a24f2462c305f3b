package ratchet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiobatalha/processing/internal/access"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestLookup_Found(t *testing.T) {
	var gotPath, gotCode string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCode = r.URL.Query().Get("code")
		w.Write([]byte(`{
			"meta": {"total": 1},
			"objects": [{
				"code": "S0102-67202009000300001",
				"total": 5,
				"pdf": {"total": 5, "Y2020": {"total": 5, "M03": {"total": 5, "D02": 5}}}
			}]
		}`))
	})

	rec, err := c.Lookup(context.Background(), "S0102-6720(09)000300001")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/general/", gotPath)
	assert.Equal(t, "S0102-6720(09)000300001", gotCode)

	require.Contains(t, rec, access.TypePDF)
	assert.Equal(t, 5, rec[access.TypePDF].Years["Y2020"].Months["M03"].Total)
}

func TestLookup_NoHistory(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty objects", status: http.StatusOK, body: `{"objects": []}`},
		{name: "missing objects", status: http.StatusOK, body: `{"meta": {}}`},
		{name: "no access types", status: http.StatusOK, body: `{"objects": [{"code": "x"}]}`},
		{name: "not found", status: http.StatusNotFound, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			rec, err := c.Lookup(context.Background(), "/PDF/ABCD/V22N3/A01.PDF")
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestLookup_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: ErrAPIError},
		{name: "malformed json", status: http.StatusOK, body: `{"objects": [`, wantErr: ErrInvalidResponse},
		{name: "malformed record", status: http.StatusOK, body: `{"objects": [{"pdf": {"Y2020": 3}}]}`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Lookup(context.Background(), "S0102-67202009000300001")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLookup_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "S0102-67202009000300001")
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestClient_ImplementsLookup(t *testing.T) {
	var _ access.Lookup = (*Client)(nil)
}
