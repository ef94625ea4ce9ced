package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// List enumerates the directive files of a stack, optionally narrowed to
// one package, and reports the current version of that package.
func (s Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	baseDir := strings.TrimSpace(req.BaseDir)
	if baseDir == "" {
		return ListResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("base directory is required")
	}
	pkg := strings.TrimSpace(req.Package)
	repo := s.repository(baseDir)
	refs, err := repo.ListManifests(pkg, strings.TrimSpace(req.Flavor))
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Manifests: refs}
	if pkg != "" {
		loader := s.newLoader(baseDir, false)
		if entry, ok := loader.LookupCurrent(pkg); ok && entry.Version != "" {
			result.Current = entry
			result.HasCurrent = true
		}
	}
	log.Ctx(ctx).Debug().Int("manifests", len(refs)).Str("package", pkg).Msg("manifests listed")
	return result, nil
}
