package ports

import (
	"io"

	"eups-manifest/internal/types"
)

// RepositoryPort encapsulates the on-disk layout of a package repository.
type RepositoryPort interface {
	// ManifestPath returns the directive file path for a package. An empty
	// version omits the version suffix; an empty or generic flavor omits
	// the flavor directory.
	ManifestPath(pkgName string, version string, flavor string) string
	CurrentPath() string
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
}

// ManifestListPort lists the directive files a repository holds.
type ManifestListPort interface {
	ListManifests(pkgName string, flavor string) ([]types.ManifestRef, error)
}
