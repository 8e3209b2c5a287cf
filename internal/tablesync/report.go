package tablesync

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/disiqueira/gotree/v3"
)

// Print writes the human-readable report: one tree node per project with its
// tables underneath, followed by a one-line summary.
func Print(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Repo root: %s\n", r.RepoRoot)
	fmt.Fprintf(w, "Library submodule: %s\n", r.LibRoot)
	if r.DryRun {
		fmt.Fprintln(w, "Dry run: no files will be written")
	}
	fmt.Fprintln(w)

	tree := gotree.New(filepath.Base(r.RepoRoot))
	for _, p := range r.Projects {
		node := tree.Add(fmt.Sprintf("%s (lib: %s)", p.Project.Rel, p.RelLib))
		for _, t := range p.Tables {
			line := fmt.Sprintf("%s: %s", t.Kind.FileName(), t.Outcome)
			if t.Backup != "" {
				line += fmt.Sprintf(" (backup: %s)", filepath.Base(t.Backup))
			}
			node.Add(line)
		}
	}
	fmt.Fprint(w, tree.Print())

	tables := 0
	for _, p := range r.Projects {
		tables += len(p.Tables)
	}
	fmt.Fprintf(w, "\nDone. %d project(s), %d table(s): %d updated, %d unchanged, %d would write.\n",
		len(r.Projects), tables, r.Count(Updated), r.Count(Unchanged), r.Count(WouldWrite))
}
