package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/platform"
)

// DescriptorExt marks a directory as a KiCad project root.
const DescriptorExt = ".kicad_pro"

// skippedDirs are never descended into during discovery.
var skippedDirs = map[string]bool{
	".git": true,
}

// Project is a directory holding a KiCad project descriptor.
type Project struct {
	Dir string // absolute path
	Rel string // slash-separated path relative to the repository root
}

// Discover walks repoRoot and returns every directory that contains a
// *.kicad_pro file not excluded by rules. Rules are tested against both the
// descriptor path and its directory, relative to repoRoot. The result is
// deduplicated and sorted by path.
func Discover(repoRoot string, rules *IgnoreRules) ([]Project, error) {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root %s: %w", repoRoot, err)
	}

	seen := make(map[string]bool)
	var result []Project

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), DescriptorExt) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = platform.ToSlash(rel)
		relDir := platform.ToSlash(filepath.Dir(rel))

		if rules.Match(rel) || rules.Match(relDir) {
			return nil
		}

		dir := filepath.Dir(path)
		if seen[dir] {
			return nil
		}
		seen[dir] = true
		result = append(result, Project{Dir: dir, Rel: relDir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Dir < result[j].Dir
	})
	return result, nil
}
