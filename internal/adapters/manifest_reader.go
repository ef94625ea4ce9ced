package adapters

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"eups-manifest/internal/ports"
	"eups-manifest/internal/types"
)

var bannerRE = regexp.MustCompile(`^EUPS distribution manifest for (\S*) \((.*)\)\. Version 1\.0$`)

type ManifestReaderAdapter struct{}

func NewManifestReaderAdapter() ManifestReaderAdapter {
	return ManifestReaderAdapter{}
}

// ReadManifest parses the text wire format back into entries. The flavor
// of the identity is not part of the format and is left empty.
func (a ManifestReaderAdapter) ReadManifest(path string) (types.Identity, []types.Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Identity{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("manifest not found").
			WithCause(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) < 4 {
		return types.Identity{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid manifest format: missing header")
	}
	match := bannerRE.FindStringSubmatch(lines[0])
	if match == nil {
		return types.Identity{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid manifest format: bad banner")
	}
	id := types.Identity{Name: match[1], Version: match[2]}

	var entries []types.Entry
	for i, line := range lines[4:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			entries = append(entries, types.Entry{
				Kind:    types.EntryKindComment,
				Comment: strings.TrimPrefix(strings.TrimPrefix(line, "#"), " "),
			})
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return types.Identity{}, nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid manifest format: line %d has %d columns", i+5, len(fields)))
		}
		entries = append(entries, types.Entry{
			Kind: types.EntryKindRecord,
			Record: types.Record{
				Package:    fields[0],
				Flavor:     fields[1],
				Version:    fields[2],
				TableFile:  fields[3],
				InstallDir: fields[4],
				InstallID:  fields[5],
			},
		})
	}
	return id, entries, nil
}

func (a ManifestReaderAdapter) ReadReport(path string) (types.GenerateReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.GenerateReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("generate report not found").
			WithCause(err)
	}
	var report types.GenerateReport
	if err := yaml.Unmarshal(content, &report); err != nil {
		return types.GenerateReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid generate report format").
			WithCause(err)
	}
	return report, nil
}

var _ ports.ManifestReaderPort = ManifestReaderAdapter{}
