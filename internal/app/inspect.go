package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"eups-manifest/internal/types"
)

// Inspect reads a rendered manifest back and summarizes it.
func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is required")
	}
	id, entries, err := s.ManifestReader.ReadManifest(path)
	if err != nil {
		return InspectResult{}, err
	}
	result := InspectResult{
		Identity: id,
		Flavors:  map[string]int{},
	}
	for _, entry := range entries {
		switch entry.Kind {
		case types.EntryKindRecord:
			result.Records = append(result.Records, entry.Record)
			result.Flavors[entry.Record.Flavor]++
		case types.EntryKindComment:
			result.Comments = append(result.Comments, entry.Comment)
		}
	}
	return result, nil
}
