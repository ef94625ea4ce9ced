package core

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"eups-manifest/internal/types"
)

const (
	manifestBannerFormat = "EUPS distribution manifest for %s (%s). Version 1.0\n#\n"
	ruleWidth            = 79
)

// ColumnNames are the header labels, in record field order.
var ColumnNames = []string{"pkg", "flavor", "version", "tablefile", "installation_directory", "installID"}

// Manifest is an ordered, deduplicated set of package records with
// interleaved comments.
type Manifest struct {
	id      types.Identity
	entries []types.Entry
	keys    map[string]int
}

func NewManifest(name string, version string, flavor string) *Manifest {
	if flavor == "" {
		flavor = types.FlavorGeneric
	}
	return &Manifest{
		id:   types.Identity{Name: name, Version: version, Flavor: flavor},
		keys: map[string]int{},
	}
}

func (m *Manifest) Identity() types.Identity {
	return m.id
}

func (m *Manifest) SetIdentity(name string, version string, flavor string) {
	if flavor == "" {
		flavor = types.FlavorGeneric
	}
	m.id = types.Identity{Name: name, Version: version, Flavor: flavor}
}

func (m *Manifest) setFlavor(flavor string) {
	m.id.Flavor = flavor
}

func (m *Manifest) AddComment(comment string) {
	m.entries = append(m.entries, types.Entry{Kind: types.EntryKindComment, Comment: comment})
}

// AddRecord appends a record unless one with the same key already exists,
// in which case the first one is kept.
func (m *Manifest) AddRecord(rec types.Record) bool {
	key := rec.Key()
	if _, ok := m.keys[key]; ok {
		return false
	}
	m.keys[key] = len(m.entries)
	m.entries = append(m.entries, types.Entry{Kind: types.EntryKindRecord, Record: rec})
	return true
}

// StandardRecord holds the inputs of AddStandardRecord. Empty fields are
// filled with the conventional defaults.
type StandardRecord struct {
	Package     string
	Version     string
	PkgPath     string
	Flavor      string
	InstallType string
	InstallFile string
	TableFile   string
	InstallDir  string
	InstallID   string
}

// BuildStandardRecord fills the unset fields of a standard record.
func BuildStandardRecord(in StandardRecord) types.Record {
	flavor := in.Flavor
	if flavor == "" {
		flavor = types.FlavorGeneric
	}
	installType := in.InstallType
	if installType == "" && flavor == types.FlavorGeneric {
		installType = types.InstallTypeLSSTBuild
	}
	installFile := in.InstallFile
	if installFile == "" {
		if installType == types.InstallTypeBuild {
			installFile = in.Package + ".build"
		} else {
			installFile = fmt.Sprintf("%s-%s.tar.gz", in.Package, in.Version)
		}
	}
	tableFile := in.TableFile
	if tableFile == "" {
		tableFile = path.Join(in.PkgPath, in.Package+".table")
	}
	installDir := in.InstallDir
	if installDir == "" {
		installDir = path.Join(in.PkgPath, in.Package, in.Version)
	}
	installID := in.InstallID
	if installID == "" {
		installID = path.Join(in.PkgPath, in.Package, in.Version, installFile)
		if installType != "" {
			installID = installType + ":" + installID
		}
	}
	return types.Record{
		Package:    in.Package,
		Flavor:     flavor,
		Version:    in.Version,
		TableFile:  tableFile,
		InstallDir: installDir,
		InstallID:  installID,
	}
}

func (m *Manifest) AddStandardRecord(in StandardRecord) bool {
	return m.AddRecord(BuildStandardRecord(in))
}

// AddSelfRecord adds the standard record for the package the manifest is for.
func (m *Manifest) AddSelfRecord(pkgPath string, flavor string, installType string) bool {
	return m.AddStandardRecord(StandardRecord{
		Package:     m.id.Name,
		Version:     m.id.Version,
		PkgPath:     pkgPath,
		Flavor:      flavor,
		InstallType: installType,
	})
}

// AddExternalRecord adds a standard record for a third-party package kept
// under the external path prefix.
func (m *Manifest) AddExternalRecord(pkgName string, version string, flavor string) bool {
	return m.AddStandardRecord(StandardRecord{
		Package: pkgName,
		Version: version,
		PkgPath: types.ExternalPkgPath,
		Flavor:  flavor,
	})
}

func (m *Manifest) HasRecord(pkgName string, flavor string, version string) bool {
	_, ok := m.keys[types.RecordKey(pkgName, flavor, version)]
	return ok
}

func (m *Manifest) Record(pkgName string, flavor string, version string) (types.Record, bool) {
	idx, ok := m.keys[types.RecordKey(pkgName, flavor, version)]
	if !ok {
		return types.Record{}, false
	}
	return m.entries[idx].Record, true
}

// RecordString returns the requested record as a space-joined line.
func (m *Manifest) RecordString(pkgName string, flavor string, version string) (string, error) {
	rec, ok := m.Record(pkgName, flavor, version)
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("record not found in manifest: %s", types.RecordKey(pkgName, flavor, version)))
	}
	return strings.Join(rec.Fields(), " "), nil
}

func (m *Manifest) Entries() []types.Entry {
	return append([]types.Entry(nil), m.entries...)
}

func (m *Manifest) Records() []types.Record {
	out := make([]types.Record, 0, len(m.keys))
	for _, entry := range m.entries {
		if entry.Kind == types.EntryKindRecord {
			out = append(out, entry.Record)
		}
	}
	return out
}

func (m *Manifest) Comments() []string {
	var out []string
	for _, entry := range m.entries {
		if entry.Kind == types.EntryKindComment {
			out = append(out, entry.Comment)
		}
	}
	return out
}

// Print writes the manifest in its text wire format: banner, column header,
// dashed rule, then one line per entry.
func (m *Manifest) Print(w io.Writer) error {
	widths := m.columnWidths()
	header := append([]string(nil), ColumnNames...)
	header[0] = "# " + header[0]

	var buf bytes.Buffer
	fmt.Fprintf(&buf, manifestBannerFormat, m.id.Name, m.id.Version)
	writeColumns(&buf, header, widths)
	buf.WriteString(dashedRule(widths))
	buf.WriteByte('\n')
	for _, entry := range m.entries {
		if entry.Kind == types.EntryKindComment {
			buf.WriteString("# ")
			buf.WriteString(entry.Comment)
			buf.WriteByte('\n')
			continue
		}
		writeColumns(&buf, entry.Record.Fields(), widths)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (m *Manifest) String() string {
	var buf bytes.Buffer
	_ = m.Print(&buf)
	return buf.String()
}

func (m *Manifest) columnWidths() []int {
	widths := make([]int, len(ColumnNames))
	widths[0] = len("# " + ColumnNames[0])
	for i := 1; i < len(ColumnNames); i++ {
		widths[i] = len(ColumnNames[i])
	}
	for _, entry := range m.entries {
		if entry.Kind != types.EntryKindRecord {
			continue
		}
		for i, field := range entry.Record.Fields() {
			widths[i] = max(widths[i], len(field))
		}
	}
	return widths
}

// writeColumns pads every column but the last to its width.
func writeColumns(buf *bytes.Buffer, fields []string, widths []int) {
	last := len(fields) - 1
	for i, field := range fields {
		if i == last {
			buf.WriteString(field)
			break
		}
		fmt.Fprintf(buf, "%-*s ", widths[i], field)
	}
	buf.WriteByte('\n')
}

func dashedRule(widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	rule := strings.Join(parts, " ")
	if len(rule) > ruleWidth {
		rule = rule[:ruleWidth]
	}
	return "#" + rule[1:]
}
