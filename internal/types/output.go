package types

import "strings"

// Record is one row of a deployment manifest. The (Package, Flavor,
// Version) triple is its key.
type Record struct {
	Package    string `yaml:"package"`
	Flavor     string `yaml:"flavor"`
	Version    string `yaml:"version"`
	TableFile  string `yaml:"table_file"`
	InstallDir string `yaml:"install_dir"`
	InstallID  string `yaml:"install_id"`
}

func (r Record) Key() string {
	return RecordKey(r.Package, r.Flavor, r.Version)
}

// Fields returns the record columns in wire order.
func (r Record) Fields() []string {
	return []string{r.Package, r.Flavor, r.Version, r.TableFile, r.InstallDir, r.InstallID}
}

func RecordKey(pkg string, flavor string, version string) string {
	return strings.Join([]string{pkg, flavor, version}, ":")
}

// Entry is either a record or a free-text comment, kept in insertion order.
type Entry struct {
	Kind    EntryKind
	Record  Record
	Comment string
}

// Identity names the package, version and flavor a manifest is for.
type Identity struct {
	Name    string
	Version string
	Flavor  string
}

// ManifestRef identifies one directive file in a repository.
type ManifestRef struct {
	Package string
	Version string
	Flavor  string
	Path    string
}
