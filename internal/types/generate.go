package types

// GenerateReport summarizes a batch generation run.
type GenerateReport struct {
	GeneratedAt string                `yaml:"generated_at"`
	BaseDir     string                `yaml:"base_dir"`
	Flavor      string                `yaml:"flavor"`
	Strict      bool                  `yaml:"strict"`
	Manifests   []GenerateReportEntry `yaml:"manifests"`
}

type GenerateReportEntry struct {
	Package  string   `yaml:"package"`
	Version  string   `yaml:"version"`
	Flavor   string   `yaml:"flavor"`
	Path     string   `yaml:"path,omitempty"`
	Records  int      `yaml:"records"`
	Comments []string `yaml:"comments,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}
