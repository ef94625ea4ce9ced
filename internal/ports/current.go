package ports

import "eups-manifest/internal/types"

// CurrentIndexPort looks up the default version and path conventions of a
// package. A miss is reported through the boolean, never as an error.
type CurrentIndexPort interface {
	LookupCurrent(pkgName string) (types.CurrentEntry, bool)
}

// CurrentListPort enumerates every package named in a current-version index.
type CurrentListPort interface {
	CurrentEntries() ([]types.CurrentEntry, error)
}
