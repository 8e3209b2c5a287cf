package libtable

import (
	"strings"
)

// ProjectVar is expanded by KiCad to the directory of the open project.
const ProjectVar = "${KIPRJMOD}"

// libType is the plugin type written for every entry.
const libType = "KiCad"

// Kind identifies one of the two generated tables.
type Kind int

const (
	SymbolTable Kind = iota
	FootprintTable
)

// FileName returns the name of the table file inside a project directory.
func (k Kind) FileName() string {
	if k == SymbolTable {
		return "sym-lib-table"
	}
	return "fp-lib-table"
}

// keyword is the opening token of the table's s-expression.
func (k Kind) keyword() string {
	if k == SymbolTable {
		return "sym_lib_table"
	}
	return "footprint_lib_table"
}

func (k Kind) String() string { return k.FileName() }

// Kinds lists the tables in the order they are written.
var Kinds = []Kind{SymbolTable, FootprintTable}

// Entry is one row of a library table.
type Entry struct {
	Name string
	URI  string
}

// Render returns the table of the given kind.
func Render(k Kind, relRoot string, lib *Library) string {
	if k == SymbolTable {
		return RenderSymbolTable(relRoot, lib)
	}
	return RenderFootprintTable(relRoot, lib)
}

// SymbolEntries lists one entry per symbol file; the name drops the extension.
func SymbolEntries(relRoot string, lib *Library) []Entry {
	entries := make([]Entry, 0, len(lib.Symbols))
	for _, f := range lib.Symbols {
		entries = append(entries, Entry{
			Name: strings.TrimSuffix(f, SymbolExt),
			URI:  uri(relRoot, SymbolsDir, f),
		})
	}
	return entries
}

// FootprintEntries lists one entry per sub-library; the name drops exactly
// one trailing FootprintSuffix.
func FootprintEntries(relRoot string, lib *Library) []Entry {
	entries := make([]Entry, 0, len(lib.Footprints))
	for _, d := range lib.Footprints {
		entries = append(entries, Entry{
			Name: strings.TrimSuffix(d, FootprintSuffix),
			URI:  uri(relRoot, FootprintsDir, d),
		})
	}
	return entries
}

// RenderSymbolTable renders a complete sym-lib-table.
func RenderSymbolTable(relRoot string, lib *Library) string {
	return render(SymbolTable, SymbolEntries(relRoot, lib))
}

// RenderFootprintTable renders a complete fp-lib-table.
func RenderFootprintTable(relRoot string, lib *Library) string {
	return render(FootprintTable, FootprintEntries(relRoot, lib))
}

func render(k Kind, entries []Entry) string {
	var b strings.Builder
	b.WriteString("(" + k.keyword() + "\n")
	for _, e := range entries {
		b.WriteString(`  (lib (name "` + e.Name + `") (type "` + libType + `") (uri "` + e.URI + `"))` + "\n")
	}
	b.WriteString(")\n")
	return b.String()
}

func uri(relRoot, sub, name string) string {
	parts := []string{ProjectVar}
	if relRoot != "" && relRoot != "." {
		parts = append(parts, relRoot)
	}
	parts = append(parts, sub, name)
	return strings.Join(parts, "/")
}
