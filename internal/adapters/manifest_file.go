package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"eups-manifest/internal/ports"
	"eups-manifest/internal/types"
)

const ReportFileName = "generate-report.yaml"

// ManifestFileAdapter writes rendered manifests into a static tree that
// mirrors the repository layout, so a plain file server can serve it.
type ManifestFileAdapter struct {
	Dir string
}

func NewManifestFileAdapter(dir string) ManifestFileAdapter {
	return ManifestFileAdapter{Dir: dir}
}

func (a ManifestFileAdapter) WriteManifest(id types.Identity, content []byte) (string, error) {
	layout := NewRepositoryLayoutAdapter(a.Dir)
	path := layout.ManifestPath(id.Name, id.Version, id.Flavor)
	if err := a.ensureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest").
			WithCause(err)
	}
	return path, nil
}

func (a ManifestFileAdapter) WriteReport(report types.GenerateReport) (string, error) {
	if err := a.ensureDir(a.Dir); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode generate report").
			WithCause(err)
	}
	path := filepath.Join(a.Dir, ReportFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write generate report").
			WithCause(err)
	}
	return path, nil
}

func (a ManifestFileAdapter) ensureDir(dir string) error {
	if a.Dir == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return nil
}

var _ ports.ManifestWriterPort = ManifestFileAdapter{}
