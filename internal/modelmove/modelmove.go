package modelmove

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/platform"
	"go.uber.org/zap"
)

// Default reference prefixes.
const (
	DefaultOldPrefix = "${VIKINGSX}/3D/"
	DefaultNewPrefix = "${VIKINGS}/3dmodels/"
)

const footprintExt = ".kicad_mod"

// Options configures a relocation run.
type Options struct {
	FootprintDir string // walked recursively for *.kicad_mod
	OldRoot      string // directory OldPrefix refers to
	NewRoot      string // directory NewPrefix refers to
	OldPrefix    string
	NewPrefix    string
	DryRun       bool
	Log          *zap.Logger
}

// Ref is one rewritten model reference.
type Ref struct {
	Old string // reference as found, e.g. ${VIKINGSX}/3D/Connectors/TSW-104.stp
	New string // rewritten reference
	Rel string // path below the old prefix, slash-separated
}

// MoveStatus is the fate of one referenced model file.
type MoveStatus string

const (
	Moved   MoveStatus = "moved"
	Exists  MoveStatus = "already exists"
	Missing MoveStatus = "missing"
	Planned MoveStatus = "would move"
)

// Move records what happened to one model file.
type Move struct {
	From   string
	To     string
	Status MoveStatus
}

// FileResult describes one processed footprint.
type FileResult struct {
	Path  string
	Refs  []Ref
	Moves []Move
}

// Report summarizes a run.
type Report struct {
	Files []FileResult
}

// Count returns how many model files ended with status s.
func (r *Report) Count(s MoveStatus) int {
	n := 0
	for _, f := range r.Files {
		for _, m := range f.Moves {
			if m.Status == s {
				n++
			}
		}
	}
	return n
}

// refPattern builds the line matcher for references under prefix. A quoted
// path may contain spaces and must be closed on the same line; an unquoted
// path ends at whitespace or ')'.
func refPattern(prefix string) *regexp.Regexp {
	p := regexp.QuoteMeta(prefix)
	return regexp.MustCompile(`^(\s*\(model\s+)(?:"(` + p + `[^"\r\n]+)"|(` + p + `[^"\s)]+))`)
}

// RewriteModelRefs rewrites every model reference that starts with oldPrefix
// to newPrefix followed by the referenced file's base name. Lines are
// otherwise preserved byte for byte.
func RewriteModelRefs(content, oldPrefix, newPrefix string) (string, []Ref) {
	re := refPattern(oldPrefix)

	lines := strings.SplitAfter(content, "\n")
	var refs []Ref
	for i, line := range lines {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		start, end := m[4], m[5]
		if start < 0 {
			start, end = m[6], m[7]
		}

		old := line[start:end]
		rel := strings.TrimPrefix(old, oldPrefix)
		ref := Ref{Old: old, New: newPrefix + path.Base(rel), Rel: rel}
		refs = append(refs, ref)

		lines[i] = line[:start] + ref.New + line[end:]
	}
	return strings.Join(lines, ""), refs
}

// Run rewrites the footprints under opts.FootprintDir and moves the models
// they reference. Files are moved only if the target does not exist yet.
func Run(opts Options) (*Report, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OldPrefix == "" {
		opts.OldPrefix = DefaultOldPrefix
	}
	if opts.NewPrefix == "" {
		opts.NewPrefix = DefaultNewPrefix
	}

	if info, err := os.Stat(opts.FootprintDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("footprint directory %s not found", opts.FootprintDir)
	}

	report := &Report{}
	err := filepath.WalkDir(opts.FootprintDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), footprintExt) {
			return nil
		}

		res, err := processFootprint(p, opts, log)
		if err != nil {
			return err
		}
		if len(res.Refs) > 0 {
			report.Files = append(report.Files, *res)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", opts.FootprintDir, err)
	}
	return report, nil
}

func processFootprint(p string, opts Options, log *zap.Logger) (*FileResult, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	updated, refs := RewriteModelRefs(string(data), opts.OldPrefix, opts.NewPrefix)
	res := &FileResult{Path: p, Refs: refs}
	if len(refs) == 0 {
		return res, nil
	}

	if !opts.DryRun {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(p, []byte(updated), info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}
	}

	for _, ref := range refs {
		from := filepath.Join(opts.OldRoot, filepath.FromSlash(platform.ToSlash(ref.Rel)))
		to := filepath.Join(opts.NewRoot, path.Base(ref.Rel))
		mv := Move{From: from, To: to}

		switch {
		case !fileExists(from):
			mv.Status = Missing
		case fileExists(to):
			mv.Status = Exists
		case opts.DryRun:
			mv.Status = Planned
		default:
			if err := platform.MoveFile(from, to); err != nil {
				return nil, err
			}
			mv.Status = Moved
		}
		log.Debug("model reference", zap.String("footprint", p), zap.String("from", from), zap.String("status", string(mv.Status)))
		res.Moves = append(res.Moves, mv)
	}
	return res, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
