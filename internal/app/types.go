package app

import (
	"eups-manifest/internal/core"
	"eups-manifest/internal/types"
)

type ResolveRequest struct {
	BaseDir string
	Package string
	Version string
	Flavor  string
	Strict  bool
}

type ResolveResult struct {
	Manifest *core.Manifest
	Identity types.Identity
	Records  int
	Comments []string
}

type ResolvePathRequest struct {
	StackRoot    string
	DefaultStack string
	Path         string
}

type ResolvePathResult struct {
	Stack string
	ResolveResult
}

// ManifestPath is a request path split into its parts.
type ManifestPath struct {
	Stack   string
	Package string
	Version string
	Flavor  string
}

type GenerateRequest struct {
	BaseDir   string
	OutputDir string
	Flavor    string
	Packages  []string
	Workers   int
	Strict    bool
}

type GenerateResult struct {
	ReportPath string
	Written    int
	Failed     int
}

type ListRequest struct {
	BaseDir string
	Package string
	Flavor  string
}

type ListResult struct {
	Manifests  []types.ManifestRef
	Current    types.CurrentEntry
	HasCurrent bool
}

type InspectRequest struct {
	Path string
}

type InspectResult struct {
	Identity types.Identity
	Records  []types.Record
	Comments []string
	Flavors  map[string]int
}
