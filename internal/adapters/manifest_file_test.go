package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eups-manifest/internal/types"
)

const sampleManifest = `EUPS distribution manifest for foo (1.0). Version 1.0
#
# pkg flavor  version tablefile installation_directory installID
#---- ------- ------- --------- ---------------------- -------------------------
bar   generic 2.3     bar.table bar/2.3                lsstbuild:bar/2.3/bar-2.3.tar.gz
# No manifest found for qux 0.5: manifests/qux-0.5.manifest
baz   linux   4.0     baz.table baz/4.0                baz/4.0/baz-4.0.tar.gz
`

func TestManifestFileAdapter_WriteManifest(t *testing.T) {
	dir := t.TempDir()
	adapter := NewManifestFileAdapter(dir)

	path, err := adapter.WriteManifest(types.Identity{Name: "foo", Version: "1.0", Flavor: "generic"}, []byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manifests", "foo-1.0.manifest"), path)

	path, err = adapter.WriteManifest(types.Identity{Name: "foo", Version: "1.0", Flavor: "Linux64"}, []byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manifests", "Linux64", "foo-1.0.manifest"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleManifest, string(content))
}

func TestManifestFileAdapter_EmptyDir(t *testing.T) {
	_, err := NewManifestFileAdapter("").WriteReport(types.GenerateReport{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestManifestFileAdapter_ReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	report := types.GenerateReport{
		GeneratedAt: "2024-01-02T03:04:05Z",
		BaseDir:     "/stack",
		Flavor:      "generic",
		Strict:      true,
		Manifests: []types.GenerateReportEntry{
			{Package: "foo", Version: "1.0", Flavor: "generic", Path: "out/foo-1.0.manifest", Records: 3},
			{Package: "cyc1", Version: "1.0", Error: "circular inclusion detected: a -> b -> a"},
		},
	}
	path, err := NewManifestFileAdapter(dir).WriteReport(report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFileName), path)

	got, err := NewManifestReaderAdapter().ReadReport(path)
	require.NoError(t, err)
	if diff := cmp.Diff(report, got); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}
}
