package types

// Directive is one parsed line of a directive file.
type Directive struct {
	Op          DirectiveOp
	Pkg         string
	Ver         string
	Flavor      string
	PkgPath     string
	TableFile   string
	InstallDir  string
	InstallID   string
	InstallType string
	InstallFile string
	// Extra holds key=value pairs with keys this parser does not know.
	Extra map[string]string
}

func (d Directive) IsNoop() bool {
	return d.Op == DirectiveOpNone
}
