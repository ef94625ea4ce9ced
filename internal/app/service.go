package app

import (
	"time"

	"eups-manifest/internal/adapters"
	"eups-manifest/internal/core"
	"eups-manifest/internal/ports"
)

type Service struct {
	ManifestsDir   string
	CurrentFile    string
	ManifestReader ports.ManifestReaderPort
	Clock          func() time.Time
}

func NewService() Service {
	return Service{
		ManifestsDir:   adapters.DefaultManifestsDir,
		CurrentFile:    adapters.DefaultCurrentFile,
		ManifestReader: adapters.NewManifestReaderAdapter(),
		Clock:          time.Now,
	}
}

func (s Service) repository(baseDir string) adapters.RepositoryLayoutAdapter {
	layout := adapters.NewRepositoryLayoutAdapter(baseDir)
	if s.ManifestsDir != "" {
		layout.ManifestsDir = s.ManifestsDir
	}
	if s.CurrentFile != "" {
		layout.CurrentFile = s.CurrentFile
	}
	return layout
}

// newLoader builds a loader with its own index cache; loaders are never
// shared between requests.
func (s Service) newLoader(baseDir string, strict bool) *core.Loader {
	repo := s.repository(baseDir)
	return core.NewLoader(repo, adapters.NewCurrentIndexFileAdapter(repo), strict)
}
