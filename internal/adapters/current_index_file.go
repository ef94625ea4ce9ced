package adapters

import (
	"bufio"
	"errors"
	"io/fs"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"eups-manifest/internal/ports"
	"eups-manifest/internal/types"
)

// CurrentIndexFileAdapter reads the current-version index of a repository.
// Lookups are cached for the adapter's lifetime, so one adapter should
// serve a single resolution request.
type CurrentIndexFileAdapter struct {
	Repo  ports.RepositoryPort
	cache map[string]currentLookup
}

type currentLookup struct {
	entry types.CurrentEntry
	found bool
}

func NewCurrentIndexFileAdapter(repo ports.RepositoryPort) *CurrentIndexFileAdapter {
	return &CurrentIndexFileAdapter{
		Repo:  repo,
		cache: map[string]currentLookup{},
	}
}

// LookupCurrent scans the index until the first row naming pkgName. When no
// row matches but an unversioned directive file exists for the package, a
// versionless entry is returned.
func (a *CurrentIndexFileAdapter) LookupCurrent(pkgName string) (types.CurrentEntry, bool) {
	if cached, ok := a.cache[pkgName]; ok {
		return cached.entry, cached.found
	}
	entry, found := a.scan(pkgName)
	a.cache[pkgName] = currentLookup{entry: entry, found: found}
	return entry, found
}

func (a *CurrentIndexFileAdapter) scan(pkgName string) (types.CurrentEntry, bool) {
	var fields []string
	matched := false
	err := a.eachRow(func(row []string) bool {
		if row[0] != pkgName {
			return true
		}
		fields = row
		matched = true
		return false
	})
	if err != nil {
		log.Debug().Err(err).Str("package", pkgName).Msg("current index unreadable")
	}
	if matched {
		return parseCurrentRow(fields)
	}
	if a.Repo.Exists(a.Repo.ManifestPath(pkgName, "", types.FlavorGeneric)) {
		return types.CurrentEntry{Package: pkgName, Flavor: types.FlavorGeneric}, true
	}
	return types.CurrentEntry{}, false
}

// CurrentEntries returns every well-formed row of the index, keeping the
// first row per package.
func (a *CurrentIndexFileAdapter) CurrentEntries() ([]types.CurrentEntry, error) {
	seen := map[string]struct{}{}
	var entries []types.CurrentEntry
	err := a.eachRow(func(row []string) bool {
		if _, ok := seen[row[0]]; ok {
			return true
		}
		seen[row[0]] = struct{}{}
		if entry, ok := parseCurrentRow(row); ok {
			entries = append(entries, entry)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// eachRow calls fn with the columns of every non-comment row until fn
// returns false.
func (a *CurrentIndexFileAdapter) eachRow(fn func(row []string) bool) error {
	path := a.Repo.CurrentPath()
	reader, err := a.Repo.Open(path)
	if err != nil {
		code := errbuilder.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = errbuilder.CodeNotFound
		}
		return errbuilder.New().
			WithCode(code).
			WithMsg("current index file not readable: " + path).
			WithCause(err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !fn(strings.Fields(line)) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read current index file: " + path).
			WithCause(err)
	}
	return nil
}

// parseCurrentRow maps "name flavor version [pathPrefix [installDir]]".
func parseCurrentRow(fields []string) (types.CurrentEntry, bool) {
	if len(fields) < 3 {
		return types.CurrentEntry{}, false
	}
	entry := types.CurrentEntry{
		Package: fields[0],
		Flavor:  fields[1],
		Version: fields[2],
	}
	if len(fields) > 3 {
		entry.PathPrefix = fields[3]
	}
	if len(fields) > 4 {
		entry.InstallDir = fields[4]
	}
	return entry, true
}

var (
	_ ports.CurrentIndexPort = (*CurrentIndexFileAdapter)(nil)
	_ ports.CurrentListPort  = (*CurrentIndexFileAdapter)(nil)
)
