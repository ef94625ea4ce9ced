package ports

import "eups-manifest/internal/types"

// ManifestReaderPort parses rendered manifests.
type ManifestReaderPort interface {
	ReadManifest(path string) (types.Identity, []types.Entry, error)
	ReadReport(path string) (types.GenerateReport, error)
}
