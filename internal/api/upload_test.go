package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempFile creates a file with the given content and returns its path.
func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestUploadMedia(t *testing.T) {
	t.Parallel()

	content := []byte("fake image bytes, long enough to be a few chunks at least")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/media", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "photo.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Attachment{ID: "att-1", Type: "image"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	path := writeTempFile(t, "photo.png", content)

	var mu sync.Mutex
	var lastLoaded, lastTotal int64
	var calls int

	att, err := client.UploadMedia(context.Background(), path, func(loaded, total int64) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.GreaterOrEqual(t, loaded, lastLoaded, "loaded must be monotonic")
		lastLoaded = loaded
		lastTotal = total
	})
	require.NoError(t, err)

	assert.Equal(t, "att-1", att.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, calls, "progress callback should fire")
	assert.Equal(t, int64(len(content)), lastTotal)
	assert.Equal(t, int64(len(content)), lastLoaded, "final progress should reach total")
}

func TestUploadMedia_NilProgress(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Attachment{ID: "att-2"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	path := writeTempFile(t, "doc.txt", []byte("content"))

	att, err := client.UploadMedia(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "att-2", att.ID)
}

func TestUploadMedia_ServerRejects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "File is too large"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	path := writeTempFile(t, "huge.bin", []byte("x"))

	_, err := client.UploadMedia(context.Background(), path, nil)
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.Equal(t, "File is too large", httpErr.Message)
}

func TestUploadMedia_MissingFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for a missing file")
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.UploadMedia(context.Background(), filepath.Join(t.TempDir(), "nope.png"), nil)
	assert.Error(t, err)
}
