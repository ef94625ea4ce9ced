package app

import (
	"context"
	"fmt"
	"path"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"eups-manifest/internal/core"
	"eups-manifest/internal/shared"
	"eups-manifest/internal/types"
)

const manifestsSegment = "manifests"

func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	baseDir := strings.TrimSpace(req.BaseDir)
	if baseDir == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("base directory is required")
	}
	pkg := strings.TrimSpace(req.Package)
	if pkg == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name is required")
	}
	assert.NotEmpty(ctx, pkg, "package must be set")

	loader := s.newLoader(baseDir, req.Strict)
	manifest := core.NewManifest(pkg, strings.TrimSpace(req.Version), strings.TrimSpace(req.Flavor))
	if err := loader.Load(ctx, manifest); err != nil {
		return ResolveResult{}, err
	}
	comments := manifest.Comments()
	log.Ctx(ctx).Debug().
		Str("package", pkg).
		Int("comments", len(comments)).
		Msg("manifest resolved")
	return ResolveResult{
		Manifest: manifest,
		Identity: manifest.Identity(),
		Records:  len(manifest.Records()),
		Comments: comments,
	}, nil
}

// ResolvePath maps a request path onto a stack directory and resolves the
// manifest it names. Path requests are always resolved leniently so soft
// failures reach the reader as comments.
func (s Service) ResolvePath(ctx context.Context, req ResolvePathRequest) (ResolvePathResult, error) {
	stackRoot := strings.TrimSpace(req.StackRoot)
	if stackRoot == "" {
		return ResolvePathResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("stack root is required")
	}
	parsed, err := ParseManifestPath(req.Path, req.DefaultStack)
	if err != nil {
		return ResolvePathResult{}, err
	}
	baseDir := path.Join(stackRoot, parsed.Stack)
	if parsed.Version == "" {
		loader := s.newLoader(baseDir, false)
		entry, ok := loader.LookupCurrent(parsed.Package)
		if !ok || entry.Version == "" {
			return ResolvePathResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("current version for package not found: %s", parsed.Package))
		}
		parsed.Version = entry.Version
	}
	result, err := s.Resolve(ctx, ResolveRequest{
		BaseDir: baseDir,
		Package: parsed.Package,
		Version: parsed.Version,
		Flavor:  parsed.Flavor,
		Strict:  false,
	})
	if err != nil {
		return ResolvePathResult{}, err
	}
	return ResolvePathResult{Stack: parsed.Stack, ResolveResult: result}, nil
}

// ParseManifestPath splits "/[<stack>/]manifests/[<flavor>/]<pkg>[-<version>][.manifest]".
// The package and version are split on the first dash. A path without a
// manifests segment names a package in the default stack.
func ParseManifestPath(raw string, defaultStack string) (ManifestPath, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "/" {
		return ManifestPath{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no manifest file provided")
	}

	out := ManifestPath{Stack: defaultStack}
	rest := trimmed
	marker := "/" + manifestsSegment + "/"
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	if idx := strings.Index(rest, marker); idx >= 0 {
		if stack := strings.Trim(rest[:idx], "/"); stack != "" {
			out.Stack = stack
		}
		rest = rest[idx+len(marker):]
	}
	rest = strings.TrimSuffix(strings.Trim(rest, "/"), ".manifest")

	name := rest
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		out.Flavor = rest[:idx]
		name = rest[idx+1:]
	}
	if before, after, ok := strings.Cut(name, "-"); ok {
		out.Package = before
		out.Version = after
		if after == "" {
			return ManifestPath{}, badManifestPath(raw)
		}
	} else {
		out.Package = name
	}
	if out.Flavor == "" {
		out.Flavor = types.FlavorGeneric
	}

	if out.Package == "" {
		return ManifestPath{}, badManifestPath(raw)
	}
	for _, part := range []string{out.Stack, out.Flavor, out.Package, out.Version} {
		if shared.HasParentSegment(part) {
			return ManifestPath{}, badManifestPath(raw)
		}
	}
	return out, nil
}

func badManifestPath(raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("bad manifest file name: %s", raw))
}
