package adapters

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eups-manifest/internal/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRepositoryLayoutAdapter_Paths(t *testing.T) {
	adapter := NewRepositoryLayoutAdapter("/stack")
	assert.Equal(t, "/stack/manifests/foo-1.0.manifest", adapter.ManifestPath("foo", "1.0", "generic"))
	assert.Equal(t, "/stack/manifests/foo-1.0.manifest", adapter.ManifestPath("foo", "1.0", ""))
	assert.Equal(t, "/stack/manifests/Linux64/foo-1.0.manifest", adapter.ManifestPath("foo", "1.0", "Linux64"))
	assert.Equal(t, "/stack/manifests/foo.manifest", adapter.ManifestPath("foo", "", "generic"))
	assert.Equal(t, "/stack/current.list", adapter.CurrentPath())

	adapter.ManifestsDir = "dist"
	adapter.CurrentFile = "index.txt"
	assert.Equal(t, "/stack/dist/foo-1.0.manifest", adapter.ManifestPath("foo", "1.0", ""))
	assert.Equal(t, "/stack/index.txt", adapter.CurrentPath())
}

func TestRepositoryLayoutAdapter_ExistsAndOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifests", "foo-1.0.manifest"), "bar\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "manifests", "dir.manifest"), 0o755))
	adapter := NewRepositoryLayoutAdapter(dir)

	assert.True(t, adapter.Exists(adapter.ManifestPath("foo", "1.0", "")))
	assert.False(t, adapter.Exists(adapter.ManifestPath("foo", "2.0", "")))
	assert.False(t, adapter.Exists(filepath.Join(dir, "manifests", "dir.manifest")))

	reader, err := adapter.Open(adapter.ManifestPath("foo", "1.0", ""))
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "bar\n", string(content))

	_, err = adapter.Open(adapter.ManifestPath("foo", "2.0", ""))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseManifestFileName(t *testing.T) {
	tests := []struct {
		name   string
		want   types.ManifestRef
		wantOK bool
	}{
		{name: "foo-1.0.manifest", want: types.ManifestRef{Package: "foo", Version: "1.0"}, wantOK: true},
		{name: "foo.manifest", want: types.ManifestRef{Package: "foo"}, wantOK: true},
		{name: "foo-1.0@Linux64.manifest", want: types.ManifestRef{Package: "foo", Version: "1.0", Flavor: "Linux64"}, wantOK: true},
		{name: "foo-1.0-rc1.manifest", want: types.ManifestRef{Package: "foo", Version: "1.0-rc1"}, wantOK: true},
		{name: "foo-1.0.txt", wantOK: false},
		{name: "-1.0.manifest", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseManifestFileName(tt.name)
			require.Equal(t, tt.wantOK, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected ref (-want +got):\n%s", diff)
			}
		})
	}
}

func TestManifestFileName(t *testing.T) {
	assert.Equal(t, "foo-1.0.manifest", ManifestFileName("foo", "1.0"))
	assert.Equal(t, "foo.manifest", ManifestFileName("foo", ""))
}

func TestRepositoryLayoutAdapter_ListManifests(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"foo-1.10.manifest", "foo-1.9.manifest", "bar-2.0.manifest", "notes.txt", "foo-1.2~rc1.manifest"} {
		writeFile(t, filepath.Join(dir, "manifests", name), "")
	}
	writeFile(t, filepath.Join(dir, "manifests", "Linux64", "foo-1.0.manifest"), "")
	adapter := NewRepositoryLayoutAdapter(dir)

	t.Run("all packages", func(t *testing.T) {
		refs, err := adapter.ListManifests("", "")
		require.NoError(t, err)
		var got []string
		for _, ref := range refs {
			got = append(got, ref.Package+"-"+ref.Version+"@"+ref.Flavor)
		}
		want := []string{"bar-2.0@generic", "foo-1.2~rc1@generic", "foo-1.9@generic", "foo-1.10@generic"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("unexpected listing (-want +got):\n%s", diff)
		}
	})

	t.Run("single package in flavor directory", func(t *testing.T) {
		refs, err := adapter.ListManifests("foo", "Linux64")
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "Linux64", refs[0].Flavor)
		assert.Equal(t, filepath.Join(dir, "manifests", "Linux64", "foo-1.0.manifest"), refs[0].Path)
	})

	t.Run("missing directory", func(t *testing.T) {
		refs, err := adapter.ListManifests("", "SunOS")
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}
