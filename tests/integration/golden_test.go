package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eups-manifest/internal/adapters"
	"eups-manifest/internal/core"
	"eups-manifest/tests/testutil"
)

// TestGoldenManifests resolves fixture packages and compares the rendered
// manifests against committed golden files. Missing golden files are
// written on the first run so they can be committed.
//
// To update golden files after an intentional change, delete the
// testdata/golden/ directory and re-run the test.
func TestGoldenManifests(t *testing.T) {
	root := testutil.RepoRoot(t)
	goldenDir := filepath.Join(root, "tests", "integration", "testdata", "golden")
	stack := filepath.Join(root, "fixtures", "stack")

	cases := []struct {
		name    string
		pkg     string
		version string
		flavor  string
		strict  bool
	}{
		{name: "foo-1.0.manifest", pkg: "foo", version: "1.0", strict: true},
		{name: "diamond-1.0.manifest", pkg: "diamond", version: "1.0", strict: true},
		{name: "foo-1.0-Linux64.manifest", pkg: "foo", version: "1.0", flavor: "Linux64", strict: true},
		{name: "broken-1.0.manifest", pkg: "broken", version: "1.0", strict: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := adapters.NewRepositoryLayoutAdapter(stack)
			loader := core.NewLoader(repo, adapters.NewCurrentIndexFileAdapter(repo), tc.strict)
			manifest, err := loader.MakeManifestFor(t.Context(), tc.pkg, tc.version, tc.flavor)
			require.NoError(t, err)
			actual := manifest.String()

			goldenPath := filepath.Join(goldenDir, tc.name)
			if _, statErr := os.Stat(goldenPath); os.IsNotExist(statErr) {
				// Golden file doesn't exist yet -- write it.
				require.NoError(t, os.MkdirAll(goldenDir, 0o755))
				require.NoError(t, os.WriteFile(goldenPath, []byte(actual), 0o644))
				t.Logf("golden file written: %s (commit it)", goldenPath)
				return
			}

			expected, err := os.ReadFile(goldenPath)
			require.NoError(t, err)
			assert.Equal(t, string(expected), actual,
				"golden mismatch for %s -- delete testdata/golden/ and re-run to regenerate", tc.name)
		})
	}
}

// TestGoldenManifestStructure checks properties of the fixture stack that
// hold regardless of exact column layout.
func TestGoldenManifestStructure(t *testing.T) {
	root := testutil.RepoRoot(t)
	stack := filepath.Join(root, "fixtures", "stack")
	repo := adapters.NewRepositoryLayoutAdapter(stack)
	index := adapters.NewCurrentIndexFileAdapter(repo)

	current, err := index.CurrentEntries()
	require.NoError(t, err)
	require.NotEmpty(t, current)

	t.Run("every listed directive file is in the index", func(t *testing.T) {
		refs, err := repo.ListManifests("", "")
		require.NoError(t, err)
		for _, ref := range refs {
			entry, ok := index.LookupCurrent(ref.Package)
			require.True(t, ok, "no index row for %s", ref.Package)
			assert.Equal(t, entry.Version, ref.Version, "directive file is not the current version of %s", ref.Package)
		}
	})

	t.Run("records are unique and the requested package comes last", func(t *testing.T) {
		loader := core.NewLoader(repo, index, true)
		manifest, err := loader.MakeManifestFor(t.Context(), "diamond", "", "")
		require.NoError(t, err)
		seen := map[string]struct{}{}
		records := manifest.Records()
		for _, rec := range records {
			_, dup := seen[rec.Key()]
			assert.False(t, dup, "duplicate record %s", rec.Key())
			seen[rec.Key()] = struct{}{}
		}
		require.NotEmpty(t, records)
		assert.Equal(t, "diamond", records[len(records)-1].Package)
	})

	t.Run("rendered lines parse back", func(t *testing.T) {
		loader := core.NewLoader(repo, index, false)
		manifest, err := loader.MakeManifestFor(t.Context(), "broken", "", "")
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "broken.manifest")
		require.NoError(t, os.WriteFile(path, []byte(manifest.String()), 0o644))

		_, entries, err := adapters.NewManifestReaderAdapter().ReadManifest(path)
		require.NoError(t, err)
		assert.Len(t, entries, len(manifest.Entries()))
		for i, entry := range manifest.Entries() {
			if entry.Comment != "" {
				assert.Equal(t, strings.TrimSpace(entry.Comment), entries[i].Comment)
			}
		}
	})
}
