package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/config"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/importer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	importLibrary string
	importLibRoot string
	importDryRun  bool
)

// errNoSelector is returned when footprints need a library choice but nobody
// can be asked.
var errNoSelector = errors.New("stdin is not a terminal; pass --library to choose the footprint library")

func init() {
	importCmd.Flags().StringVar(&importLibrary, "library", "", "Footprint library (.pretty) to import into, skipping the menu")
	importCmd.Flags().StringVar(&importLibRoot, "lib-root", ".", "Root of the EL-KiCad-Library checkout")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <folder|archive.zip>",
	Short: "Import vendor component archives into the library",
	Long: `Unpack component archives (as downloaded from SnapEDA, Ultra Librarian or a
manufacturer) into the library.

Footprints go into a footprint library chosen from footprints/*.pretty, with
their (model ...) reference pointed at the archive's 3D model. Symbols are
staged under symbols/to_sort/<library> for manual curation and 3D models are
copied to 3dmodels/.

Given a folder, every .zip in it is imported in name order.

Example:
  kilib import ~/Downloads/TSW-104.zip --library VIKING_Connectors
  kilib import ~/Downloads/parts --lib-root libs/EL-KiCad-Library`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := importer.Options{
			LibRoot:  importLibRoot,
			Select:   importSelector(cmd),
			ModelVar: config.Get(config.KeyModelVar),
			DryRun:   importDryRun,
			Log:      log,
		}

		target := args[0]
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("reading %s: %w", target, err)
		}

		var results []*importer.Result
		if info.IsDir() {
			results, err = importer.ImportDir(target, opts)
		} else {
			var res *importer.Result
			res, err = importer.Import(target, opts)
			if res != nil {
				results = append(results, res)
			}
		}

		if err != nil && len(results) == 0 {
			return err
		}
		printImportResults(cmd.OutOrStdout(), results, importDryRun)
		return err
	},
}

// importSelector picks how the footprint library is chosen: the --library
// flag, an interactive menu on a terminal, or an error otherwise.
func importSelector(cmd *cobra.Command) importer.SelectFunc {
	if importLibrary != "" {
		return importer.FixedSelector(importLibrary)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return importer.MenuSelector(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return func(string, []string) (int, error) {
		return 0, errNoSelector
	}
}

func printImportResults(w io.Writer, results []*importer.Result, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run: nothing was written.")
	}
	for _, r := range results {
		if r.Skipped {
			fmt.Fprintf(w, "%s: skipped\n", r.Archive)
		} else {
			fmt.Fprintf(w, "%s:\n", r.Archive)
		}
		if r.Library != "" {
			fmt.Fprintf(w, "  library: %s\n", r.Library)
		}
		printPaths(w, "footprint", r.Footprints)
		printPaths(w, "symbol", r.Symbols)
		printPaths(w, "3D model", r.Models)
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warning)
		}
	}
	fmt.Fprintf(w, "\nDone. %d archive(s) processed.\n", len(results))
}

func printPaths(w io.Writer, label string, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "  %s: %s\n", label, filepath.ToSlash(p))
	}
}
