package adapters

import (
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
)

// compareVersions orders versions with Debian semantics, falling back to a
// plain string comparison when either side does not parse.
func compareVersions(a string, b string) int {
	va, err := debversion.NewVersion(a)
	if err != nil {
		return strings.Compare(a, b)
	}
	vb, err := debversion.NewVersion(b)
	if err != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
