package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/libtable"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/platform"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

const (
	footprintExt = ".kicad_mod"
	// unsortedGroup receives symbols from archives without a footprint.
	unsortedGroup = "unsorted"
	// symbolStaging is where imported symbols wait for manual curation.
	symbolStaging = "to_sort"
)

// modelExts lists the 3D model extensions picked out of an archive.
var modelExts = []string{".stp", ".step"}

// ErrNoArchives is returned by ImportDir when the folder holds no zip files.
var ErrNoArchives = errors.New("no .zip files found")

// SelectFunc chooses the footprint sub-library for an archive. It receives
// the archive's base name and the available .pretty directory names and
// returns an index into choices.
type SelectFunc func(archive string, choices []string) (int, error)

// Options configures an import.
type Options struct {
	LibRoot  string
	Select   SelectFunc
	ModelVar string // path variable the library root is known by, e.g. "${VIKINGS}"
	DryRun   bool
	Log      *zap.Logger
}

// Result records what one archive contributed.
type Result struct {
	Archive    string
	Library    string // chosen footprint sub-library, empty without footprints
	Footprints []string
	Symbols    []string
	Models     []string
	Warnings   []string
	Skipped    bool
}

// contents groups the interesting members of an archive.
type contents struct {
	footprints []*zip.File
	symbols    []*zip.File
	models     []*zip.File
}

// Import unpacks one archive into the library.
func Import(archivePath string, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	res := &Result{Archive: filepath.Base(archivePath)}
	c := classify(zr.File)

	if len(c.footprints) == 0 && len(c.symbols) == 0 && len(c.models) == 0 {
		res.Skipped = true
		res.Warnings = append(res.Warnings, "no footprints, symbols or 3D models in archive")
		return res, nil
	}

	var modelName string
	if len(c.models) > 0 {
		modelName = memberBase(c.models[0].Name)
	}

	if len(c.footprints) > 0 {
		library, err := chooseLibrary(res.Archive, opts)
		if err != nil {
			return nil, err
		}
		res.Library = library

		dstDir := filepath.Join(opts.LibRoot, libtable.FootprintsDir, library)
		for _, f := range c.footprints {
			dst, warning, err := importFootprint(f, dstDir, modelName, opts)
			if err != nil {
				return nil, err
			}
			if warning != "" {
				res.Warnings = append(res.Warnings, warning)
			}
			res.Footprints = append(res.Footprints, dst)
			log.Debug("imported footprint", zap.String("archive", res.Archive), zap.String("path", dst))
		}
	}

	group := unsortedGroup
	if res.Library != "" {
		group = strings.TrimSuffix(res.Library, libtable.FootprintSuffix)
	}
	symDir := filepath.Join(opts.LibRoot, libtable.SymbolsDir, symbolStaging, group)
	for _, f := range c.symbols {
		dst := filepath.Join(symDir, memberBase(f.Name))
		if err := extract(f, dst, opts.DryRun); err != nil {
			return nil, err
		}
		res.Symbols = append(res.Symbols, dst)
	}

	modelDir := filepath.Join(opts.LibRoot, libtable.ModelsDir)
	for _, f := range c.models {
		dst := filepath.Join(modelDir, memberBase(f.Name))
		if err := extract(f, dst, opts.DryRun); err != nil {
			return nil, err
		}
		res.Models = append(res.Models, dst)
	}

	return res, nil
}

// ImportDir imports every *.zip (any case) in dir in name order.
func ImportDir(dir string, opts Options) ([]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			archives = append(archives, e.Name())
		}
	}
	if len(archives) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoArchives, dir)
	}
	sort.Strings(archives)

	results := make([]*Result, 0, len(archives))
	for _, name := range archives {
		res, err := Import(filepath.Join(dir, name), opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func classify(files []*zip.File) contents {
	var c contents
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ToLower(f.Name)
		switch {
		case strings.HasSuffix(name, footprintExt):
			c.footprints = append(c.footprints, f)
		case strings.HasSuffix(name, libtable.SymbolExt):
			c.symbols = append(c.symbols, f)
		case hasModelExt(name):
			c.models = append(c.models, f)
		}
	}
	return c
}

func hasModelExt(name string) bool {
	for _, ext := range modelExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// chooseLibrary asks opts.Select for a destination among the library's
// existing footprint sub-libraries.
func chooseLibrary(archive string, opts Options) (string, error) {
	choices, err := libtable.FootprintLibraries(opts.LibRoot)
	if err != nil {
		return "", err
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("no %s footprint libraries under %s", libtable.FootprintSuffix,
			filepath.Join(opts.LibRoot, libtable.FootprintsDir))
	}
	if opts.Select == nil {
		return "", fmt.Errorf("archive %s contains footprints but no library selector was given", archive)
	}

	idx, err := opts.Select(archive, choices)
	if err != nil {
		return "", fmt.Errorf("selecting library for %s: %w", archive, err)
	}
	if idx < 0 || idx >= len(choices) {
		return "", fmt.Errorf("selection %d out of range for %s", idx+1, archive)
	}
	return choices[idx], nil
}

// importFootprint extracts one footprint, pointing its 3D model at modelName
// when the archive ships one.
func importFootprint(f *zip.File, dstDir, modelName string, opts Options) (string, string, error) {
	name := memberBase(f.Name)
	dst := filepath.Join(dstDir, name)

	data, err := readMember(f)
	if err != nil {
		return "", "", err
	}

	var warning string
	content := string(data)
	if modelName != "" {
		modelPath := opts.ModelVar + "/" + libtable.ModelsDir + "/" + modelName
		patched, status := PatchModel(content, modelPath)
		if status == ModelUnmatched {
			warning = fmt.Sprintf("%s: could not parse model reference, left as-is", name)
		}
		content = patched
	} else {
		warning = fmt.Sprintf("%s: no 3D model in archive, model path not updated", name)
	}

	if opts.DryRun {
		return dst, warning, nil
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", dstDir, err)
	}
	if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return dst, warning, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// extract copies an archive member to dst verbatim.
func extract(f *zip.File, dst string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}

// memberBase returns the file name of an archive member. Archives built on
// Windows sometimes use backslashes.
func memberBase(name string) string {
	return path.Base(platform.ToSlash(name))
}
