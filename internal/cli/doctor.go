package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/config"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/libtable"
	"github.com/SDU-Vikings-Racing-Team/EL-KiCad-Library/internal/project"
	"github.com/spf13/cobra"
)

var (
	doctorRepoRoot     string
	doctorLibSubmodule string
	checkManifest      string
)

func init() {
	doctorCmd.Flags().StringVar(&doctorRepoRoot, "repo-root", ".", "Path to the product repo root")
	doctorCmd.Flags().StringVar(&doctorLibSubmodule, "lib-submodule", "", "Path (from repo root) to the library submodule")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a manifest file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the library checkout and project discovery",
	Long: `Run diagnostic checks on a product repository: the library submodule layout,
the projects that sync would update and, optionally, a project manifest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		libSubmodule := doctorLibSubmodule
		if libSubmodule == "" {
			libSubmodule = config.Get(config.KeyLibSubmodule)
		}
		libRoot := libSubmodule
		if !filepath.IsAbs(libRoot) {
			libRoot = filepath.Join(doctorRepoRoot, libSubmodule)
		}

		failed := !runLibraryCheck(w, libRoot)
		if !runDiscoveryCheck(w, doctorRepoRoot) {
			failed = true
		}
		if checkManifest != "" {
			if err := runManifestCheck(w, checkManifest); err != nil {
				return err
			}
		}
		if failed {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

// runLibraryCheck reports the library layout and returns false when the
// library cannot be used.
func runLibraryCheck(w io.Writer, libRoot string) bool {
	fmt.Fprintf(w, "Library check: %s\n", filepath.ToSlash(libRoot))

	lib, err := libtable.Scan(libRoot)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return false
	}

	for _, sub := range []string{libtable.SymbolsDir, libtable.FootprintsDir, libtable.ModelsDir} {
		if info, err := os.Stat(filepath.Join(libRoot, sub)); err != nil || !info.IsDir() {
			fmt.Fprintf(w, "  [WARN] %s/ missing\n", sub)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s/ present\n", sub)
	}
	fmt.Fprintf(w, "  [INFO] %d symbol file(s), %d footprint librar(ies)\n", len(lib.Symbols), len(lib.Footprints))
	return true
}

// runDiscoveryCheck reports how many projects sync would find.
func runDiscoveryCheck(w io.Writer, repoRoot string) bool {
	fmt.Fprintln(w, "Discovery check:")

	ignoreFile := config.Get(config.KeyIgnoreFile)
	rules, err := project.LoadIgnoreRules(repoRoot, ignoreFile)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return false
	}
	if rules.Len() > 0 {
		fmt.Fprintf(w, "  [INFO] %d pattern(s) in %s\n", rules.Len(), ignoreFile)
	}

	projects, err := project.Discover(repoRoot, rules)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return false
	}
	if len(projects) == 0 {
		fmt.Fprintf(w, "  [WARN] No %s files found\n", project.DescriptorExt)
		return true
	}
	fmt.Fprintf(w, "  [ OK ] %d project(s) found\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(w, "    - %s\n", p.Rel)
	}
	return true
}

func runManifestCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	result, err := project.ValidateManifest(data)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		m, err := project.LoadManifest(path)
		if err != nil {
			fmt.Fprintf(w, "  [ OK ] Valid manifest\n")
			return nil
		}
		fmt.Fprintf(w, "  [ OK ] Valid manifest: %d project(s)\n", len(m.Projects))
		if err := m.CheckRequires(buildVersion); err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return err
		}
		return nil
	}

	fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Path != "" {
			fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(w, "    - %s\n", issue.Message)
		}
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
