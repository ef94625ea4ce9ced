package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"eups-manifest/internal/adapters"
	"eups-manifest/internal/ports"
	"eups-manifest/internal/shared"
	"eups-manifest/internal/types"
)

const defaultGenerateWorkers = 4

// Generate resolves a set of packages and writes every manifest into a
// static tree under OutputDir. Without an explicit package list every
// package in the current index is generated. Per-package failures are
// recorded in the report; the run fails when any package failed.
func (s Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	baseDir := strings.TrimSpace(req.BaseDir)
	if baseDir == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("base directory is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}

	targets, err := s.generateTargets(baseDir, req.Packages)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(targets) == 0 {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no packages to generate")
	}

	workers := req.Workers
	if workers <= 0 {
		workers = defaultGenerateWorkers
	}
	var writer ports.ManifestWriterPort = adapters.NewManifestFileAdapter(outputDir)
	entries := make([]types.GenerateReportEntry, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, target := range targets {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			entries[i] = s.generateOne(groupCtx, baseDir, target, req.Flavor, req.Strict, writer)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("manifest generation interrupted").
			WithCause(err)
	}

	result := GenerateResult{}
	for _, entry := range entries {
		if entry.Error != "" {
			result.Failed++
			continue
		}
		result.Written++
	}

	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	reportPath, err := writer.WriteReport(types.GenerateReport{
		GeneratedAt: clock().UTC().Format(time.RFC3339),
		BaseDir:     baseDir,
		Flavor:      req.Flavor,
		Strict:      req.Strict,
		Manifests:   entries,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	result.ReportPath = reportPath

	log.Ctx(ctx).Info().
		Int("written", result.Written).
		Int("failed", result.Failed).
		Str("report", reportPath).
		Msg("manifest generation finished")
	if result.Failed > 0 {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("%d of %d manifests failed to generate", result.Failed, len(entries)))
	}
	return result, nil
}

type generateTarget struct {
	Package string
	Version string
}

func (s Service) generateTargets(baseDir string, packages []string) ([]generateTarget, error) {
	var targets []generateTarget
	if len(packages) > 0 {
		seen := map[string]struct{}{}
		for _, raw := range packages {
			name, version, _ := strings.Cut(strings.TrimSpace(raw), "=")
			if name == "" {
				continue
			}
			key := types.RecordKey(name, "", version)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			targets = append(targets, generateTarget{Package: name, Version: version})
		}
		return targets, nil
	}

	var index ports.CurrentListPort = adapters.NewCurrentIndexFileAdapter(s.repository(baseDir))
	current, err := index.CurrentEntries()
	if err != nil {
		return nil, err
	}
	for _, entry := range current {
		targets = append(targets, generateTarget{Package: entry.Package, Version: entry.Version})
	}
	return targets, nil
}

func (s Service) generateOne(
	ctx context.Context,
	baseDir string,
	target generateTarget,
	flavor string,
	strict bool,
	writer ports.ManifestWriterPort,
) types.GenerateReportEntry {
	entry := types.GenerateReportEntry{
		Package: target.Package,
		Version: target.Version,
		Flavor:  flavor,
	}
	result, err := s.Resolve(ctx, ResolveRequest{
		BaseDir: baseDir,
		Package: target.Package,
		Version: target.Version,
		Flavor:  flavor,
		Strict:  strict,
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("package", target.Package).Msg("manifest generation failed")
		entry.Error = shared.ErrorMessage(err)
		return entry
	}
	entry.Version = result.Identity.Version
	entry.Flavor = result.Identity.Flavor
	entry.Records = result.Records
	entry.Comments = result.Comments

	path, err := writer.WriteManifest(result.Identity, []byte(result.Manifest.String()))
	if err != nil {
		entry.Error = shared.ErrorMessage(err)
		return entry
	}
	entry.Path = path
	return entry
}
