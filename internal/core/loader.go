package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"eups-manifest/internal/ports"
	"eups-manifest/internal/types"
)

const (
	msgFileNotFound      = "manifest file not found"
	msgCircularInclusion = "circular inclusion detected"
	msgBadSyntax         = "bad syntax"
	msgMissingVersion    = "lack of current version for"
)

// Loader expands directive files into a Manifest. A Loader holds per-load
// state and must not be used by two loads at the same time; create one
// per request.
type Loader struct {
	Repo   ports.RepositoryPort
	Index  ports.CurrentIndexPort
	Strict bool

	openFiles []string
	visited   map[string]struct{}
}

func NewLoader(repo ports.RepositoryPort, index ports.CurrentIndexPort, strict bool) *Loader {
	return &Loader{
		Repo:    repo,
		Index:   index,
		Strict:  strict,
		visited: map[string]struct{}{},
	}
}

// FileSource describes a directive file and the package it belongs to.
// Empty identity fields default to the manifest's identity.
type FileSource struct {
	Path            string
	PkgPath         string
	Package         string
	Version         string
	Flavor          string
	PreferredFlavor string
	InstallDir      string

	top    bool
	nested bool
}

type frame struct {
	src     FileSource
	reader  io.ReadCloser
	scanner *bufio.Scanner
}

// LookupCurrent returns the current-version index entry for a package.
func (l *Loader) LookupCurrent(pkgName string) (types.CurrentEntry, bool) {
	if l.Index == nil {
		return types.CurrentEntry{}, false
	}
	return l.Index.LookupCurrent(pkgName)
}

// FileFor returns the directive file path for a package together with the
// package path prefix from the current index (empty when there is none).
// An empty version is filled from the current index when possible.
func (l *Loader) FileFor(pkgName string, version string, flavor string) (string, string) {
	entry, ok := l.LookupCurrent(pkgName)
	if version == "" && ok {
		version = entry.Version
	}
	return l.Repo.ManifestPath(pkgName, version, flavor), entry.PathPrefix
}

// MakeManifestFor creates a manifest for the given package and loads it.
func (l *Loader) MakeManifestFor(ctx context.Context, pkgName string, version string, flavor string) (*Manifest, error) {
	m := NewManifest(pkgName, version, flavor)
	if err := l.Load(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load resolves the directive file for the manifest's identity and expands
// it. A flavor-specific file that does not exist falls back to the generic
// one, and the manifest's flavor is updated to match.
func (l *Loader) Load(ctx context.Context, m *Manifest) error {
	id := m.Identity()
	version := id.Version
	if version == "" {
		entry, ok := l.LookupCurrent(id.Name)
		if !ok || entry.Version == "" {
			return missingVersionError(id.Name)
		}
		version = entry.Version
		m.SetIdentity(id.Name, version, id.Flavor)
	}
	flavor := id.Flavor
	preferred := flavor

	file, pkgPath := l.FileFor(id.Name, version, flavor)
	found := l.Repo.Exists(file)
	if !found && flavor != "" && flavor != types.FlavorGeneric {
		file, pkgPath = l.FileFor(id.Name, version, types.FlavorGeneric)
		found = l.Repo.Exists(file)
		if found {
			flavor = types.FlavorGeneric
			m.setFlavor(flavor)
		}
	}
	if !found {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("%s: %s", msgFileNotFound, file))
	}

	return l.LoadFile(ctx, m, FileSource{
		Path:            file,
		PkgPath:         pkgPath,
		Package:         id.Name,
		Version:         version,
		Flavor:          flavor,
		PreferredFlavor: preferred,
	})
}

// LoadFile expands one directive file, following merges depth first.
func (l *Loader) LoadFile(ctx context.Context, m *Manifest, src FileSource) (err error) {
	l.reset()
	id := m.Identity()
	if src.Package == "" {
		src.Package = id.Name
		if src.Version == "" {
			src.Version = id.Version
		}
		if src.Flavor == "" {
			src.Flavor = id.Flavor
		}
	}
	if src.Version == "" {
		return missingVersionError(src.Package)
	}
	if src.Flavor == "" {
		src.Flavor = types.FlavorGeneric
	}
	if src.PreferredFlavor == "" {
		src.PreferredFlavor = src.Flavor
	}
	src.top = true

	var stack []*frame
	defer func() {
		for i := len(stack) - 1; i >= 0; i-- {
			l.leave(stack[i])
		}
	}()

	root, err := l.enter(ctx, m, src)
	if err != nil || root == nil {
		return err
	}
	stack = append(stack, root)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		if !current.scanner.Scan() {
			scanErr := current.scanner.Err()
			stack = stack[:len(stack)-1]
			l.leave(current)
			if scanErr != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to read directive file: %s", current.src.Path)).
					WithCause(scanErr)
			}
			continue
		}

		child, err := l.applyLine(ctx, m, current.src, current.scanner.Text())
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		next, err := l.enter(ctx, m, *child)
		if err != nil {
			return err
		}
		if next != nil {
			stack = append(stack, next)
		}
	}

	log.Ctx(ctx).Debug().
		Str("package", id.Name).
		Int("entries", len(m.entries)).
		Msg("manifest loaded")
	return nil
}

func (l *Loader) reset() {
	l.openFiles = l.openFiles[:0]
	l.visited = map[string]struct{}{}
}

// enter opens a directive file and marks it open. It returns a nil frame
// when the file was already processed or is missing and recoverable.
func (l *Loader) enter(ctx context.Context, m *Manifest, src FileSource) (*frame, error) {
	if slices.Contains(l.openFiles, src.Path) {
		chain := append(append([]string(nil), l.openFiles...), src.Path)
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("%s: %s", msgCircularInclusion, strings.Join(chain, " -> ")))
	}
	if _, ok := l.visited[src.Path]; ok {
		log.Ctx(ctx).Debug().Str("file", src.Path).Msg("directive file already visited")
		return nil, nil
	}

	reader, err := l.Repo.Open(src.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to open directive file: %s", src.Path)).
				WithCause(err)
		}
		if l.Strict && !src.nested {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("%s: %s", msgFileNotFound, src.Path)).
				WithCause(err)
		}
		pkgPath := ""
		if src.PkgPath != "" {
			pkgPath = fmt.Sprintf(" (%s)", src.PkgPath)
		}
		m.AddComment(fmt.Sprintf("No manifest found for %s %s%s: %s", src.Package, src.Version, pkgPath, src.Path))
		l.visited[src.Path] = struct{}{}
		log.Ctx(ctx).Debug().Str("file", src.Path).Msg("directive file missing, recorded as comment")
		return nil, nil
	}

	l.openFiles = append(l.openFiles, src.Path)
	log.Ctx(ctx).Debug().Str("file", src.Path).Int("depth", len(l.openFiles)).Msg("directive file opened")
	return &frame{src: src, reader: reader, scanner: bufio.NewScanner(reader)}, nil
}

// leave closes a frame's file, pops it from the open set and marks it
// visited.
func (l *Loader) leave(f *frame) {
	_ = f.reader.Close()
	if idx := slices.Index(l.openFiles, f.src.Path); idx >= 0 {
		l.openFiles = slices.Delete(l.openFiles, idx, idx+1)
	}
	l.visited[f.src.Path] = struct{}{}
}

func (l *Loader) applyLine(ctx context.Context, m *Manifest, src FileSource, line string) (*FileSource, error) {
	directive := ParseLine(line)
	switch directive.Op {
	case types.DirectiveOpSelf:
		directive.Pkg = src.Package
		directive.Ver = src.Version
		directive.Flavor = src.Flavor
		directive.PkgPath = src.PkgPath
		directive.Op = types.DirectiveOpAdd
	case types.DirectiveOpID:
		// identity changes only apply to the top-level manifest
		if !src.top {
			return nil, nil
		}
	}
	return l.UpdateManifest(ctx, m, directive, src.PreferredFlavor)
}

// UpdateManifest applies one directive to the manifest. For a merge it
// returns the directive file to expand next instead of expanding it.
func (l *Loader) UpdateManifest(ctx context.Context, m *Manifest, d types.Directive, preferredFlavor string) (*FileSource, error) {
	if d.IsNoop() {
		return nil, nil
	}
	if d.Flavor == "" {
		d.Flavor = preferredFlavor
		if d.Flavor == "" {
			d.Flavor = types.FlavorGeneric
		}
	}

	switch d.Op {
	case types.DirectiveOpID:
		if d.Pkg != "" && d.Ver != "" {
			m.SetIdentity(d.Pkg, d.Ver, d.Flavor)
		}
		return nil, nil
	case types.DirectiveOpAdd, types.DirectiveOpMerge:
	default:
		m.AddComment(fmt.Sprintf("unrecognized directive: %s", d.Op))
		return nil, nil
	}

	if d.Pkg == "" {
		return nil, l.softFail(ctx, m, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s: %s needs at least a pkg parameter: %s", msgBadSyntax, d.Op, describeDirective(d))))
	}
	if d.Ver == "" || d.PkgPath == "" {
		entry, ok := l.LookupCurrent(d.Pkg)
		if d.Ver == "" {
			if !ok || entry.Version == "" {
				return nil, l.softFail(ctx, m, errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg(fmt.Sprintf("%s %s: %s", msgMissingVersion, d.Pkg, describeDirective(d))))
			}
			d.Ver = entry.Version
		}
		if ok && d.PkgPath == "" {
			d.PkgPath = entry.PathPrefix
		}
		if ok && d.InstallDir == "" && entry.InstallDir != "" && entry.Version == d.Ver {
			d.InstallDir = entry.InstallDir
		}
	}

	if d.Op == types.DirectiveOpAdd {
		m.AddStandardRecord(StandardRecord{
			Package:     d.Pkg,
			Version:     d.Ver,
			PkgPath:     d.PkgPath,
			Flavor:      d.Flavor,
			InstallType: d.InstallType,
			InstallFile: d.InstallFile,
			TableFile:   d.TableFile,
			InstallDir:  d.InstallDir,
			InstallID:   d.InstallID,
		})
		return nil, nil
	}

	file, pkgPath := l.FileFor(d.Pkg, d.Ver, d.Flavor)
	if !l.Repo.Exists(file) {
		file, pkgPath = l.FileFor(d.Pkg, d.Ver, types.FlavorGeneric)
		d.Flavor = types.FlavorGeneric
	}
	if d.PkgPath != "" {
		pkgPath = d.PkgPath
	}
	installDir := d.InstallDir
	if installDir == "" {
		installDir = path.Join(pkgPath, d.Pkg, d.Ver)
	}
	log.Ctx(ctx).Debug().
		Str("package", d.Pkg).
		Str("version", d.Ver).
		Str("file", file).
		Msg("merging directive file")
	return &FileSource{
		Path:            file,
		PkgPath:         pkgPath,
		Package:         d.Pkg,
		Version:         d.Ver,
		Flavor:          d.Flavor,
		PreferredFlavor: preferredFlavor,
		InstallDir:      installDir,
		nested:          true,
	}, nil
}

// softFail returns err in strict mode and records it as a comment otherwise.
func (l *Loader) softFail(ctx context.Context, m *Manifest, err *errbuilder.ErrBuilder) error {
	if l.Strict {
		return err
	}
	m.AddComment(err.Msg)
	log.Ctx(ctx).Debug().Str("reason", err.Msg).Msg("directive skipped")
	return nil
}

func describeDirective(d types.Directive) string {
	parts := []string{"op=" + string(d.Op)}
	fields := []struct {
		name  string
		value string
	}{
		{"pkg", d.Pkg},
		{"ver", d.Ver},
		{"flavor", d.Flavor},
		{"pkgpath", d.PkgPath},
		{"tablefile", d.TableFile},
		{"installDir", d.InstallDir},
		{"installID", d.InstallID},
		{"installType", d.InstallType},
		{"installFile", d.InstallFile},
	}
	for _, field := range fields {
		if field.value != "" {
			parts = append(parts, field.name+"="+field.value)
		}
	}
	return strings.Join(parts, " ")
}

func missingVersionError(pkgName string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s %s", msgMissingVersion, pkgName))
}

// KindOf classifies an error returned by Load.
func KindOf(err error) types.ErrorKind {
	if err == nil {
		return types.ErrorKindNone
	}
	var builder *errbuilder.ErrBuilder
	if !errors.As(err, &builder) {
		return types.ErrorKindOther
	}
	switch {
	case strings.HasPrefix(builder.Msg, msgFileNotFound):
		return types.ErrorKindFileNotFound
	case strings.HasPrefix(builder.Msg, msgCircularInclusion):
		return types.ErrorKindCircularInclusion
	case strings.HasPrefix(builder.Msg, msgBadSyntax):
		return types.ErrorKindSyntaxViolation
	case strings.HasPrefix(builder.Msg, msgMissingVersion):
		return types.ErrorKindMissingVersion
	default:
		return types.ErrorKindOther
	}
}
