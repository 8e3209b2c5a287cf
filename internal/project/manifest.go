package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/platform"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// ErrRequiresUnsatisfied is returned when the running tool version does not
// satisfy a manifest's requires constraint.
var ErrRequiresUnsatisfied = errors.New("tool version does not satisfy manifest requirement")

// Manifest lists the projects a sync run should touch.
type Manifest struct {
	Projects     []string `yaml:"projects" json:"projects"`
	Requires     string   `yaml:"requires,omitempty" json:"requires,omitempty"`
	LibSubmodule string   `yaml:"lib_submodule,omitempty" json:"lib_submodule,omitempty"`
}

// LoadManifest reads, validates and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	result, err := ValidateManifest(data)
	if err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("manifest %s is invalid: %s", path, result.Summary())
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// Resolve turns the manifest entries into projects. Relative entries are
// joined with repoRoot; absolute ones are used as they are. Entries that do not resolve to an existing directory are dropped and logged at
// debug level; duplicates are dropped too. Manifest order is preserved.
func (m *Manifest) Resolve(repoRoot string, log *zap.Logger) []Project {
	if log == nil {
		log = zap.NewNop()
	}

	root, err := filepath.Abs(repoRoot)
	if err != nil {
		root = repoRoot
	}

	seen := make(map[string]bool)
	var result []Project
	for _, entry := range m.Projects {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		dir := filepath.FromSlash(platform.ToSlash(entry))
		if filepath.IsAbs(dir) {
			dir = filepath.Clean(dir)
		} else {
			dir = filepath.Join(root, dir)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Debug("skipping manifest entry", zap.String("entry", entry), zap.String("path", dir))
			continue
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true

		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = entry
		}
		result = append(result, Project{Dir: dir, Rel: platform.ToSlash(rel)})
	}
	return result
}

// CheckRequires verifies that version satisfies the manifest's requires
// constraint. An empty constraint and development builds ("dev", "") always
// pass.
func (m *Manifest) CheckRequires(version string) error {
	return CheckRequires(m.Requires, version)
}

// CheckRequires verifies that version satisfies constraint. A leading "v" on
// the version is tolerated.
func CheckRequires(constraint, version string) error {
	if strings.TrimSpace(constraint) == "" {
		return nil
	}
	if version == "" || version == "dev" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parsing requires constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return fmt.Errorf("parsing tool version %q: %w", version, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: version %s, requires %s", ErrRequiresUnsatisfied, version, constraint)
	}
	return nil
}
