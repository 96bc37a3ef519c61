package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/fyrsmithlabs/folio/internal/http"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

func fakeFolio(t *testing.T, healthCode int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(healthCode)
		status := "ok"
		if healthCode != http.StatusOK {
			status = "degraded"
		}
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: status, Database: "ok", Version: "test"})
	})
	mux.HandleFunc("/api/v1/admin/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.StatusResponse{
			Version: "test",
			Chunks:  11,
			Counts:  storage.Counts{Documents: 2, Sessions: 5},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	srv := fakeFolio(t, http.StatusOK)

	snap, err := NewClient(srv.URL, "good").Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Admin)
	assert.Equal(t, "ok", snap.Health.Status)
	assert.Equal(t, "test", snap.Health.Version)
	assert.Equal(t, 11, snap.Status.Chunks)
	assert.Equal(t, 5, snap.Status.Counts.Sessions)
	assert.Positive(t, snap.Latency)
}

func TestClient_Fetch_HealthOnly(t *testing.T) {
	srv := fakeFolio(t, http.StatusOK)

	snap, err := NewClient(srv.URL, "").Fetch(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Admin)
	assert.Equal(t, "ok", snap.Health.Status)
	assert.Zero(t, snap.Status.Chunks)
}

func TestClient_Fetch_Degraded(t *testing.T) {
	srv := fakeFolio(t, http.StatusServiceUnavailable)

	snap, err := NewClient(srv.URL, "good").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", snap.Health.Status)
}

func TestClient_Fetch_Unauthorized(t *testing.T) {
	srv := fakeFolio(t, http.StatusOK)

	_, err := NewClient(srv.URL, "bad").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Fetch_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Fetch(context.Background())
	assert.ErrorContains(t, err, "418")
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", "").Fetch(context.Background())
	assert.ErrorContains(t, err, "request failed")
}
