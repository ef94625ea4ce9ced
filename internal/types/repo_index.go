package types

// CurrentEntry is one row of the current-version index. Version may be
// empty when the package was only discovered through an unversioned
// directive file.
type CurrentEntry struct {
	Package    string
	Flavor     string
	Version    string
	PathPrefix string
	InstallDir string
}
