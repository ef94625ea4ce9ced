package ports

import "eups-manifest/internal/types"

// ManifestWriterPort persists rendered manifests and generation reports.
type ManifestWriterPort interface {
	WriteManifest(id types.Identity, content []byte) (string, error)
	WriteReport(report types.GenerateReport) (string, error)
}
