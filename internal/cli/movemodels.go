package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/libtable"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/modelmove"
	"github.com/spf13/cobra"
)

var (
	moveFootprints string
	moveOldRoot    string
	moveNewRoot    string
	moveOldPrefix  string
	moveNewPrefix  string
	moveDryRun     bool
)

func init() {
	moveModelsCmd.Flags().StringVar(&moveFootprints, "footprints", libtable.FootprintsDir, "Directory searched recursively for .kicad_mod files")
	moveModelsCmd.Flags().StringVar(&moveOldRoot, "old-root", "3D", "Directory the old prefix points at")
	moveModelsCmd.Flags().StringVar(&moveNewRoot, "new-root", libtable.ModelsDir, "Directory the new prefix points at")
	moveModelsCmd.Flags().StringVar(&moveOldPrefix, "old-prefix", modelmove.DefaultOldPrefix, "Model reference prefix to replace")
	moveModelsCmd.Flags().StringVar(&moveNewPrefix, "new-prefix", modelmove.DefaultNewPrefix, "Model reference prefix to write")
	moveModelsCmd.Flags().BoolVar(&moveDryRun, "dry-run", false, "Report the changes without touching any file")
	rootCmd.AddCommand(moveModelsCmd)
}

var moveModelsCmd = &cobra.Command{
	Use:   "move-models",
	Short: "Move 3D models to the flat 3dmodels/ folder and fix footprint references",
	Long: `Rewrite (model ...) references that start with the old prefix so they point
at the new prefix plus the model's file name, then move each referenced model
from the old root to the new root.

Models already present at the destination are left alone; references to
models that cannot be found are reported.

Example:
  kilib move-models --dry-run
  kilib move-models --old-root legacy/3D --new-root 3dmodels`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := modelmove.Run(modelmove.Options{
			FootprintDir: moveFootprints,
			OldRoot:      moveOldRoot,
			NewRoot:      moveNewRoot,
			OldPrefix:    moveOldPrefix,
			NewPrefix:    moveNewPrefix,
			DryRun:       moveDryRun,
			Log:          log,
		})
		if err != nil {
			return err
		}

		printMoveReport(cmd.OutOrStdout(), report, moveDryRun)
		return nil
	},
}

func printMoveReport(w io.Writer, r *modelmove.Report, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run: no footprint or model was changed.")
	}
	refs := 0
	for _, f := range r.Files {
		fmt.Fprintf(w, "%s\n", filepath.ToSlash(f.Path))
		for _, ref := range f.Refs {
			fmt.Fprintf(w, "  %s -> %s\n", ref.Old, ref.New)
		}
		for _, m := range f.Moves {
			fmt.Fprintf(w, "  [%s] %s\n", m.Status, filepath.ToSlash(m.From))
		}
		refs += len(f.Refs)
	}
	fmt.Fprintf(w, "\nDone. %d reference(s) in %d footprint(s): %d moved, %d already present, %d missing, %d would move.\n",
		refs, len(r.Files),
		r.Count(modelmove.Moved), r.Count(modelmove.Exists),
		r.Count(modelmove.Missing), r.Count(modelmove.Planned))
}
