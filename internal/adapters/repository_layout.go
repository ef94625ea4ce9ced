package adapters

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"eups-manifest/internal/ports"
	"eups-manifest/internal/types"
)

const (
	DefaultManifestsDir = "manifests"
	DefaultCurrentFile  = "current.list"
	manifestSuffix      = ".manifest"
)

var manifestFileRE = regexp.MustCompile(`^(?P<product>[^\-\s]+)(-(?P<version>\S+?))?(@(?P<flavor>[^\-\s]+))?\.manifest$`)

// RepositoryLayoutAdapter maps packages onto the directive files of a
// repository rooted at BaseDir:
//
//	<BaseDir>/<ManifestsDir>/[<flavor>/]<pkg>[-<version>].manifest
//	<BaseDir>/<CurrentFile>
type RepositoryLayoutAdapter struct {
	BaseDir      string
	ManifestsDir string
	CurrentFile  string
}

func NewRepositoryLayoutAdapter(baseDir string) RepositoryLayoutAdapter {
	return RepositoryLayoutAdapter{
		BaseDir:      baseDir,
		ManifestsDir: DefaultManifestsDir,
		CurrentFile:  DefaultCurrentFile,
	}
}

func (a RepositoryLayoutAdapter) ManifestPath(pkgName string, version string, flavor string) string {
	return filepath.Join(a.manifestsRoot(), flavorDir(flavor), ManifestFileName(pkgName, version))
}

func (a RepositoryLayoutAdapter) CurrentPath() string {
	name := a.CurrentFile
	if name == "" {
		name = DefaultCurrentFile
	}
	return filepath.Join(a.BaseDir, name)
}

func (a RepositoryLayoutAdapter) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (a RepositoryLayoutAdapter) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ListManifests returns the directive files for pkgName (every package when
// empty) in the flavor directory, ordered by package then version.
func (a RepositoryLayoutAdapter) ListManifests(pkgName string, flavor string) ([]types.ManifestRef, error) {
	dir := filepath.Join(a.manifestsRoot(), flavorDir(flavor))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list manifests directory").
			WithCause(err)
	}
	var refs []types.ManifestRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ref, ok := ParseManifestFileName(entry.Name())
		if !ok {
			continue
		}
		if pkgName != "" && ref.Package != pkgName {
			continue
		}
		if ref.Flavor == "" {
			ref.Flavor = normalizeFlavor(flavor)
		}
		ref.Path = filepath.Join(dir, entry.Name())
		refs = append(refs, ref)
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Package != refs[j].Package {
			return refs[i].Package < refs[j].Package
		}
		return compareVersions(refs[i].Version, refs[j].Version) < 0
	})
	return refs, nil
}

func (a RepositoryLayoutAdapter) manifestsRoot() string {
	dir := a.ManifestsDir
	if dir == "" {
		dir = DefaultManifestsDir
	}
	return filepath.Join(a.BaseDir, dir)
}

// ManifestFileName returns "<pkg>[-<version>].manifest".
func ManifestFileName(pkgName string, version string) string {
	if version == "" {
		return pkgName + manifestSuffix
	}
	return pkgName + "-" + version + manifestSuffix
}

// ParseManifestFileName splits a directive file name into package, version
// and an optional "@flavor" suffix.
func ParseManifestFileName(name string) (types.ManifestRef, bool) {
	match := manifestFileRE.FindStringSubmatch(name)
	if match == nil {
		return types.ManifestRef{}, false
	}
	return types.ManifestRef{
		Package: match[manifestFileRE.SubexpIndex("product")],
		Version: match[manifestFileRE.SubexpIndex("version")],
		Flavor:  match[manifestFileRE.SubexpIndex("flavor")],
	}, true
}

func flavorDir(flavor string) string {
	if flavor == "" || flavor == types.FlavorGeneric {
		return ""
	}
	return flavor
}

func normalizeFlavor(flavor string) string {
	if strings.TrimSpace(flavor) == "" {
		return types.FlavorGeneric
	}
	return flavor
}

var (
	_ ports.RepositoryPort   = RepositoryLayoutAdapter{}
	_ ports.ManifestListPort = RepositoryLayoutAdapter{}
)
