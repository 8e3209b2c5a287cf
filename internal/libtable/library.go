package libtable

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// SymbolsDir is the library-root subdirectory holding symbol files.
	SymbolsDir = "symbols"
	// FootprintsDir is the library-root subdirectory holding footprint sub-libraries.
	FootprintsDir = "footprints"
	// ModelsDir is the library-root subdirectory holding 3D models.
	ModelsDir = "3dmodels"

	// SymbolExt marks a symbol library file.
	SymbolExt = ".kicad_sym"
	// FootprintSuffix marks a directory as a footprint sub-library.
	FootprintSuffix = ".pretty"
)

// Library is the read-only view of a library root used for rendering.
// Entry slices hold base names (e.g. "Conn.kicad_sym", "Viking.pretty") in
// sorted order.
type Library struct {
	Root       string
	Symbols    []string
	Footprints []string
}

// Scan lists the symbol files and footprint sub-libraries directly under
// root. A missing symbols/ or footprints/ directory yields an empty list;
// a missing root is an error.
func Scan(root string) (*Library, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading library root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", root)
	}

	lib := &Library{Root: root}

	lib.Symbols, err = listEntries(filepath.Join(root, SymbolsDir), func(e os.DirEntry) bool {
		return !e.IsDir() && strings.HasSuffix(e.Name(), SymbolExt)
	})
	if err != nil {
		return nil, err
	}

	lib.Footprints, err = listEntries(filepath.Join(root, FootprintsDir), func(e os.DirEntry) bool {
		return e.IsDir() && strings.HasSuffix(e.Name(), FootprintSuffix)
	})
	if err != nil {
		return nil, err
	}

	return lib, nil
}

// FootprintLibraries returns the footprint sub-library directory names.
func FootprintLibraries(root string) ([]string, error) {
	return listEntries(filepath.Join(root, FootprintsDir), func(e os.DirEntry) bool {
		return e.IsDir() && strings.HasSuffix(e.Name(), FootprintSuffix)
	})
}

// listEntries returns the sorted names of entries in dir accepted by keep.
// A missing directory is not an error.
func listEntries(dir string, keep func(os.DirEntry) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if keep(e) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
