package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestImpactFactor(t *testing.T) {
	var gotPath, gotCode, gotCollection string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCode = r.URL.Query().Get("code")
		gotCollection = r.URL.Query().Get("collection")
		w.Write([]byte(`[
			[2014, 0.0526, 0.25, 0.3125, "0.28", 0.2667, null],
			[2015, 0, 0.1, 0.2, 0.3, 0.4, 0.5]
		]`))
	})

	got, err := c.ImpactFactor(context.Background(), "0102-6720", "scl")
	require.NoError(t, err)
	assert.Equal(t, "/ajx/bibliometric/journal/impact_factor", gotPath)
	assert.Equal(t, "0102-6720", gotCode)
	assert.Equal(t, "scl", gotCollection)

	require.Len(t, got, 2)
	assert.Equal(t, ImpactFactor{
		BaseYear:  "2014",
		Immediacy: "0.0526",
		Factors:   [5]string{"0.25", "0.3125", "0.28", "0.2667", ""},
	}, got[0])
	assert.Equal(t, []string{"2015", "0", "0.1", "0.2", "0.3", "0.4", "0.5"}, got[1].Values())
}

func TestImpactFactor_NoIndicators(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty list", status: http.StatusOK, body: `[]`},
		{name: "null", status: http.StatusOK, body: `null`},
		{name: "not found", status: http.StatusNotFound, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			got, err := c.ImpactFactor(context.Background(), "0102-6720", "scl")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestImpactFactor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: ErrAPIError},
		{name: "malformed json", status: http.StatusOK, body: `[[2014,`, wantErr: ErrInvalidResponse},
		{name: "short entry", status: http.StatusOK, body: `[[2014, 0.1]]`, wantErr: ErrInvalidResponse},
		{name: "object value", status: http.StatusOK, body: `[[2014, {}, 1, 2, 3, 4, 5]]`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.ImpactFactor(context.Background(), "0102-6720", "scl")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestImpactFactor_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.ImpactFactor(context.Background(), "0102-6720", "scl")
	assert.ErrorIs(t, err, ErrNetworkError)
}
