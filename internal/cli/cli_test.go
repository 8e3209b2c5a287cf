package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// execute runs the command tree with args and returns stdout. Flags are reset
// to their defaults first because the command tree is package state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	resetFlags(rootCmd)
	buildVersion, buildCommit, buildDate = "1.2.0", "abc1234", "2024-03-09"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// productRepo lays out a repository with one project two levels below the
// root and the library at libs/EL-KiCad-Library.
func productRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	lib := filepath.Join(root, "libs", "EL-KiCad-Library")
	writeFile(t, filepath.Join(lib, "symbols", "Conn.kicad_sym"), "(kicad_symbol_lib)\n")
	if err := os.MkdirAll(filepath.Join(lib, "footprints", "Viking.pretty"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "hw", "board", "board.kicad_pro"), "{}\n")
	return root
}

func TestSyncCommand(t *testing.T) {
	root := productRepo(t)

	out, err := execute(t, "sync", "--repo-root", root)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "hw/board") {
		t.Errorf("output does not name the project:\n%s", out)
	}
	if !strings.Contains(out, "2 updated") {
		t.Errorf("output missing summary:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(root, "hw", "board", "sym-lib-table"))
	if err != nil {
		t.Fatal(err)
	}
	want := `(uri "${KIPRJMOD}/../../libs/EL-KiCad-Library/symbols/Conn.kicad_sym")`
	if !strings.Contains(string(data), want) {
		t.Errorf("sym-lib-table missing %s:\n%s", want, data)
	}

	out, err = execute(t, "sync", "--repo-root", root)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !strings.Contains(out, "2 unchanged") {
		t.Errorf("second run should leave the project unchanged:\n%s", out)
	}
}

func TestSyncCommand_LibSubmoduleFromEnv(t *testing.T) {
	root := productRepo(t)
	if err := os.Rename(filepath.Join(root, "libs"), filepath.Join(root, "vendor")); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KILIB_LIB_SUBMODULE", "vendor/EL-KiCad-Library")

	if _, err := execute(t, "sync", "--repo-root", root); err != nil {
		t.Fatalf("sync: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "hw", "board", "fp-lib-table"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "${KIPRJMOD}/../../vendor/EL-KiCad-Library/footprints/Viking.pretty") {
		t.Errorf("fp-lib-table does not use the configured library:\n%s", data)
	}
}

func TestSyncCommand_MissingLibrary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "board", "board.kicad_pro"), "{}\n")

	_, err := execute(t, "sync", "--repo-root", root)
	if err == nil {
		t.Fatal("expected error for missing library")
	}
	if _, statErr := os.Stat(filepath.Join(root, "board", "sym-lib-table")); statErr == nil {
		t.Error("no table should be written when the library is missing")
	}
}

func TestSyncCommand_DryRun(t *testing.T) {
	root := productRepo(t)

	out, err := execute(t, "sync", "--repo-root", root, "--dry-run")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "would write") {
		t.Errorf("dry run output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "hw", "board", "sym-lib-table")); err == nil {
		t.Error("dry run wrote a table")
	}
}

func TestImportCommand(t *testing.T) {
	lib := t.TempDir()
	if err := os.MkdirAll(filepath.Join(lib, "footprints", "VIKING_Connectors.pretty"), 0755); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "TSW-104.zip")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"TSW-104/TSW-104.kicad_mod": "(footprint \"TSW-104\"\n  (layer \"F.Cu\")\n)\n",
		"TSW-104/TSW-104.stp":       "ISO-10303-21;\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := execute(t, "import", archive, "--lib-root", lib, "--library", "viking_connectors")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "library: VIKING_Connectors.pretty") {
		t.Errorf("output:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(lib, "footprints", "VIKING_Connectors.pretty", "TSW-104.kicad_mod"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `(model "${VIKINGS}/3dmodels/TSW-104.stp"`) {
		t.Errorf("footprint model not patched:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(lib, "3dmodels", "TSW-104.stp")); err != nil {
		t.Errorf("model not extracted: %v", err)
	}
}

func TestMoveModelsCommand(t *testing.T) {
	lib := t.TempDir()
	writeFile(t, filepath.Join(lib, "footprints", "Conn.pretty", "TSW-104.kicad_mod"),
		"(footprint \"TSW-104\"\n  (model ${VIKINGSX}/3D/Connectors/TSW-104.stp\n  )\n)\n")
	writeFile(t, filepath.Join(lib, "3D", "Connectors", "TSW-104.stp"), "ISO-10303-21;\n")

	out, err := execute(t, "move-models",
		"--footprints", filepath.Join(lib, "footprints"),
		"--old-root", filepath.Join(lib, "3D"),
		"--new-root", filepath.Join(lib, "3dmodels"))
	if err != nil {
		t.Fatalf("move-models: %v", err)
	}
	if !strings.Contains(out, "1 moved") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(lib, "3dmodels", "TSW-104.stp")); err != nil {
		t.Errorf("model not moved: %v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	root := productRepo(t)

	out, err := execute(t, "doctor", "--repo-root", root)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"[ OK ] symbols/ present", "[WARN] 3dmodels/ missing", "[ OK ] 1 project(s) found", "hw/board"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorCommand_InvalidManifest(t *testing.T) {
	root := productRepo(t)
	manifest := filepath.Join(root, "projects.yaml")
	writeFile(t, manifest, "projects: nope\n")

	out, err := execute(t, "doctor", "--repo-root", root, "--check-manifest", manifest)
	if err == nil {
		t.Fatal("expected error for invalid manifest")
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Errorf("output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("parsing %q: %v", out, err)
	}
	if info["version"] != "1.2.0" || info["commit"] != "abc1234" {
		t.Errorf("info = %v", info)
	}

	out, err = execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "1.2.0" {
		t.Errorf("short = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	if _, err := execute(t, "config", "set", "model_var", "${EL_LIB}"); err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	data, err := os.ReadFile(filepath.Join(home, ".kilib", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "${EL_LIB}") {
		t.Errorf("config file:\n%s", data)
	}
}
