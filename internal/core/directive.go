package core

import (
	"strings"

	"eups-manifest/internal/types"
)

const directiveMarker = ">"

// ParseLine converts one line of a directive file into a Directive. It never
// fails: malformed lines yield partially empty directives and validation is
// left to the loader.
func ParseLine(line string) types.Directive {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return types.Directive{}
	}
	if strings.HasPrefix(trimmed, directiveMarker) {
		return parseKeyedLine(strings.TrimPrefix(trimmed, directiveMarker))
	}
	return parsePositionalLine(trimmed)
}

func parseKeyedLine(line string) types.Directive {
	words := strings.Fields(line)
	if len(words) == 0 {
		return types.Directive{}
	}
	out := types.Directive{Op: types.DirectiveOp(words[0])}
	for _, word := range words[1:] {
		name, value, ok := strings.Cut(word, "=")
		if !ok {
			// a bare word carries no field
			continue
		}
		setDirectiveField(&out, name, value)
	}
	return out
}

func setDirectiveField(d *types.Directive, name string, value string) {
	switch name {
	case "op":
	case "pkg":
		d.Pkg = value
	case "ver":
		d.Ver = value
	case "flavor":
		d.Flavor = value
	case "pkgpath":
		d.PkgPath = value
	case "tablefile":
		d.TableFile = value
	case "installDir":
		d.InstallDir = value
	case "installID":
		d.InstallID = value
	case "installType":
		d.InstallType = value
	case "installFile":
		d.InstallFile = value
	default:
		if d.Extra == nil {
			d.Extra = map[string]string{}
		}
		d.Extra[name] = value
	}
}

func parsePositionalLine(line string) types.Directive {
	out := types.Directive{Op: types.DirectiveOpAdd}
	fields := []*string{&out.Pkg, &out.Flavor, &out.Ver, &out.TableFile, &out.InstallDir, &out.InstallID}
	for i, word := range strings.Fields(line) {
		if i >= len(fields) {
			break
		}
		*fields[i] = word
	}
	return out
}
