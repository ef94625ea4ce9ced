package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eups-manifest/internal/app"
	"eups-manifest/tests/testutil"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := testutil.FixturesRoot(t)
	return New(app.NewService(), Config{StackRoot: root, DefaultStack: "stack"}), root
}

func get(t *testing.T, handler http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv.Routes(), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestManifestEndpoint(t *testing.T) {
	srv, root := newTestServer(t)
	handler := srv.Routes()

	want, err := app.NewService().Resolve(t.Context(), app.ResolveRequest{
		BaseDir: filepath.Join(root, "stack"),
		Package: "foo",
		Version: "1.0",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
	}{
		{name: "explicit stack", path: "/stack/manifests/foo-1.0.manifest"},
		{name: "default stack", path: "/manifests/foo-1.0.manifest"},
		{name: "current version", path: "/manifests/foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, contentTypeText, rec.Header().Get("Content-Type"))
			assert.Equal(t, want.Manifest.String(), rec.Body.String())
			assert.Equal(t, bodyETag(want.Manifest.String()), rec.Header().Get("ETag"))
		})
	}
}

func TestManifestEndpointNotModified(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Routes()

	first := get(t, handler, "/stack/manifests/diamond-1.0.manifest", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(t, handler, "/stack/manifests/diamond-1.0.manifest", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())

	stale := get(t, handler, "/stack/manifests/diamond-1.0.manifest", http.Header{"If-None-Match": {`"0000000000000000"`}})
	assert.Equal(t, http.StatusOK, stale.Code)
}

func TestManifestEndpointLenient(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv.Routes(), "/stack/manifests/broken-1.0.manifest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# bad syntax: add needs at least a pkg parameter")
	assert.Contains(t, rec.Body.String(), "# unrecognized directive: frobnicate")
}

func TestManifestEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Routes()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "unknown package", path: "/manifests/ghost", wantStatus: http.StatusNotFound},
		{name: "missing file", path: "/manifests/bar-9.9.manifest", wantStatus: http.StatusNotFound},
		{name: "missing stack", path: "/nostack/manifests/foo-1.0.manifest", wantStatus: http.StatusNotFound},
		{name: "cycle", path: "/stack/manifests/cyc1-1.0.manifest", wantStatus: http.StatusInternalServerError},
		{name: "bad path", path: "/manifests/foo-", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestIndexEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Routes()

	rec := get(t, handler, "/index/foo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "foo 1.0 generic\n# current 1.0\n", rec.Body.String())

	rec = get(t, handler, "/index/foo?flavor=Linux64", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "foo 1.0 Linux64\n# current 1.0\n", rec.Body.String())

	rec = get(t, handler, "/index/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, handler, "/index/foo?stack=..", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
