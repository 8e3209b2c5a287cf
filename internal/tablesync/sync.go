package tablesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/libtable"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/platform"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/project"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultLibSubmodule is the library location used when the caller gives none.
const DefaultLibSubmodule = "libs/EL-KiCad-Library"

// DefaultIgnoreFile is the per-repository ignore file name.
const DefaultIgnoreFile = ".kicadprojignore"

var (
	// ErrLibraryNotFound aborts a run whose library root does not exist.
	ErrLibraryNotFound = errors.New("library submodule not found")
	// ErrNoProjects aborts a run that found nothing to update.
	ErrNoProjects = errors.New("no KiCad projects found")
)

// Options configures a run. Zero values fall back to the package defaults.
type Options struct {
	RepoRoot     string // defaults to "."
	LibSubmodule string // library root, relative to RepoRoot unless absolute; overrides the manifest
	// DefaultLibSubmodule is used when neither LibSubmodule nor the manifest
	// names a library; empty means the package default.
	DefaultLibSubmodule string
	ManifestPath        string // optional; disables discovery when set
	IgnoreFile          string // relative to RepoRoot
	DryRun              bool
	Jobs                int    // projects processed concurrently; <= 1 means sequential
	Version             string // tool version checked against a manifest's requires
	Log                 *zap.Logger
	Writer              *Writer // optional; built from DryRun when nil
}

// TableResult is the outcome for one table file of one project.
type TableResult struct {
	Kind    libtable.Kind
	Outcome Outcome
	Backup  string
}

// ProjectResult collects the table outcomes of one project.
type ProjectResult struct {
	Project project.Project
	RelLib  string // library root as seen from the project, slash-separated
	Tables  []TableResult
}

// Report summarizes a run. Projects keep discovery (or manifest) order.
type Report struct {
	RepoRoot string
	LibRoot  string
	DryRun   bool
	Projects []ProjectResult
}

// Count returns how many tables ended with the given outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, p := range r.Projects {
		for _, t := range p.Tables {
			if t.Outcome == o {
				n++
			}
		}
	}
	return n
}

// Run regenerates the library tables of every selected project. The library
// root and the project set are checked before any file is written; a write
// failure aborts the remaining work.
func Run(ctx context.Context, opts Options) (*Report, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	repoRoot := opts.RepoRoot
	if repoRoot == "" {
		repoRoot = "."
	}
	repoRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}

	var manifest *project.Manifest
	if opts.ManifestPath != "" {
		manifest, err = project.LoadManifest(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		if err := manifest.CheckRequires(opts.Version); err != nil {
			return nil, err
		}
	}

	libRoot, err := resolveLibRoot(repoRoot, opts, manifest)
	if err != nil {
		return nil, err
	}

	projects, err := selectProjects(repoRoot, opts, manifest, log)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}

	lib, err := libtable.Scan(libRoot)
	if err != nil {
		return nil, err
	}
	log.Debug("scanned library",
		zap.String("root", libRoot),
		zap.Int("symbols", len(lib.Symbols)),
		zap.Int("footprints", len(lib.Footprints)))

	w := opts.Writer
	if w == nil {
		w = &Writer{DryRun: opts.DryRun, Log: log}
	}

	report := &Report{
		RepoRoot: repoRoot,
		LibRoot:  libRoot,
		DryRun:   w.DryRun,
		Projects: make([]ProjectResult, len(projects)),
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, p := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := syncProject(p, libRoot, lib, w, log)
			if err != nil {
				return err
			}
			report.Projects[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// resolveLibRoot picks the library location (explicit option, then manifest,
// then the configured default, then the package default) and verifies it
// exists.
func resolveLibRoot(repoRoot string, opts Options, manifest *project.Manifest) (string, error) {
	sub := opts.LibSubmodule
	if sub == "" && manifest != nil {
		sub = manifest.LibSubmodule
	}
	if sub == "" {
		sub = opts.DefaultLibSubmodule
	}
	if sub == "" {
		sub = DefaultLibSubmodule
	}

	libRoot := sub
	if !filepath.IsAbs(libRoot) {
		libRoot = filepath.Join(repoRoot, filepath.FromSlash(platform.ToSlash(sub)))
	}

	info, err := os.Stat(libRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w at: %s", ErrLibraryNotFound, libRoot)
	}
	return libRoot, nil
}

func selectProjects(repoRoot string, opts Options, manifest *project.Manifest, log *zap.Logger) ([]project.Project, error) {
	if manifest != nil {
		return manifest.Resolve(repoRoot, log), nil
	}

	ignoreFile := opts.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = DefaultIgnoreFile
	}
	rules, err := project.LoadIgnoreRules(repoRoot, ignoreFile)
	if err != nil {
		return nil, err
	}
	if rules.Len() > 0 {
		log.Debug("loaded ignore rules", zap.Strings("patterns", rules.Patterns()))
	}
	return project.Discover(repoRoot, rules)
}

func syncProject(p project.Project, libRoot string, lib *libtable.Library, w *Writer, log *zap.Logger) (*ProjectResult, error) {
	rel, err := platform.RelSlash(p.Dir, libRoot)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", p.Rel, err)
	}

	res := &ProjectResult{Project: p, RelLib: rel}
	for _, kind := range libtable.Kinds {
		content := libtable.Render(kind, rel, lib)
		wr, err := w.Write(filepath.Join(p.Dir, kind.FileName()), []byte(content))
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", p.Rel, err)
		}
		log.Debug("table processed",
			zap.String("project", p.Rel),
			zap.String("table", kind.FileName()),
			zap.String("outcome", string(wr.Outcome)))
		res.Tables = append(res.Tables, TableResult{Kind: kind, Outcome: wr.Outcome, Backup: wr.Backup})
	}
	return res, nil
}
