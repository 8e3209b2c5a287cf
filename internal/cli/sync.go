package cli

import (
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/config"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/tablesync"
	"github.com/spf13/cobra"
)

var (
	syncRepoRoot     string
	syncLibSubmodule string
	syncManifest     string
	syncDryRun       bool
	syncJobs         int
)

func init() {
	syncCmd.Flags().StringVar(&syncRepoRoot, "repo-root", ".", "Path to the product repo root")
	syncCmd.Flags().StringVar(&syncLibSubmodule, "lib-submodule", "", "Path (from repo root) to the library submodule (default from config, libs/EL-KiCad-Library)")
	syncCmd.Flags().StringVar(&syncManifest, "manifest", "", "Optional YAML file listing the projects to update")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Preview changes only")
	syncCmd.Flags().IntVarP(&syncJobs, "jobs", "j", 1, "Number of projects to process concurrently")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate sym-lib-table and fp-lib-table for every project",
	Long: `Find the KiCad projects in a product repository and regenerate their
sym-lib-table and fp-lib-table so they reference the shared library through
${KIPRJMOD}-relative paths.

Projects are discovered by scanning for *.kicad_pro files, skipping anything
matched by the repo's .kicadprojignore, unless --manifest names them
explicitly. A table is only written when its content changes, and the previous
version is kept as <table>.bak.<timestamp>.

Example:
  kilib sync --repo-root ~/hw/fs-car
  kilib sync --manifest projects.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := tablesync.Run(cmd.Context(), tablesync.Options{
			RepoRoot:            syncRepoRoot,
			LibSubmodule:        syncLibSubmodule,
			DefaultLibSubmodule: config.Get(config.KeyLibSubmodule),
			ManifestPath:        syncManifest,
			IgnoreFile:          config.Get(config.KeyIgnoreFile),
			DryRun:              syncDryRun,
			Jobs:                syncJobs,
			Version:             buildVersion,
			Log:                 log,
		})
		if err != nil {
			return err
		}

		tablesync.Print(cmd.OutOrStdout(), report)
		return nil
	},
}
