//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// writeArchive builds a vendor-style zip with the given members.
func writeArchive(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(members[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestImportThenSync imports a folder of archives into the library and checks
// that a following sync picks up the new symbol staging area untouched while
// the footprint library stays listed.
func TestImportThenSync(t *testing.T) {
	env := setupTestEnv(t)
	ecu := env.addProject(t, "hardware/ecu")

	downloads := t.TempDir()
	writeArchive(t, filepath.Join(downloads, "TSW-104.zip"), map[string]string{
		"TSW-104/KiCad/TSW-104.kicad_mod": "(footprint \"TSW-104\"\n  (layer \"F.Cu\")\n  (model ${KISYS3DMOD}/old.wrl\n    (offset (xyz 0 0 0))\n  )\n)\n",
		"TSW-104/KiCad/TSW-104.kicad_sym": "(kicad_symbol_lib)\n",
		"TSW-104/3D/TSW-104.step":         "ISO-10303-21;\n",
	})
	writeArchive(t, filepath.Join(downloads, "README.ZIP"), map[string]string{
		"readme.txt": "nothing to see\n",
	})

	stdout, stderr, code := env.run(t, env.LibDir, "import", downloads, "--library", "VIKING_Connectors")
	if code != 0 {
		t.Fatalf("import exit %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "README.ZIP: skipped") {
		t.Errorf("archive without KiCad files should be skipped:\n%s", stdout)
	}
	if !strings.Contains(stdout, "2 archive(s) processed") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}

	fp := filepath.Join(env.LibDir, "footprints", "VIKING_Connectors.pretty", "TSW-104.kicad_mod")
	assertFileContains(t, fp, `(model "${VIKINGS}/3dmodels/TSW-104.step"`)
	assertFileExists(t, filepath.Join(env.LibDir, "3dmodels", "TSW-104.step"))
	assertFileExists(t, filepath.Join(env.LibDir, "symbols", "to_sort", "VIKING_Connectors", "TSW-104.kicad_sym"))

	if _, stderr, code := env.run(t, env.RepoDir, "sync"); code != 0 {
		t.Fatalf("sync exit %d\nstderr: %s", code, stderr)
	}
	assertFileContains(t, filepath.Join(ecu, "fp-lib-table"), `(name "VIKING_Connectors")`)
	data, err := os.ReadFile(filepath.Join(ecu, "sym-lib-table"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "TSW-104") {
		t.Errorf("staged symbols must not be listed until curated:\n%s", data)
	}
}

func TestImportWithoutLibraryOffTerminal(t *testing.T) {
	env := setupTestEnv(t)
	archive := filepath.Join(t.TempDir(), "R_0603.zip")
	writeArchive(t, archive, map[string]string{
		"R_0603.kicad_mod": "(footprint \"R_0603\"\n)\n",
	})

	_, stderr, code := env.run(t, env.LibDir, "import", archive)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(stderr, "--library") {
		t.Errorf("stderr should point at --library: %s", stderr)
	}
}

func TestMoveModels(t *testing.T) {
	env := setupTestEnv(t)
	fp := filepath.Join(env.LibDir, "footprints", "Viking.pretty", "TSW-104.kicad_mod")
	writeFile(t, fp, "(footprint \"TSW-104\"\n  (model \"${VIKINGSX}/3D/Connectors/TSW-104.stp\"\n    (offset (xyz 0 0 0))\n  )\n)\n")
	writeFile(t, filepath.Join(env.LibDir, "3D", "Connectors", "TSW-104.stp"), "ISO-10303-21;\n")

	// Dry run reports and leaves everything in place.
	stdout, stderr, code := env.run(t, env.LibDir, "move-models", "--dry-run")
	if code != 0 {
		t.Fatalf("dry run exit %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "1 would move") {
		t.Errorf("dry run output:\n%s", stdout)
	}
	assertFileContains(t, fp, "${VIKINGSX}/3D/Connectors/TSW-104.stp")
	assertFileNotExists(t, filepath.Join(env.LibDir, "3dmodels", "TSW-104.stp"))

	stdout, stderr, code = env.run(t, env.LibDir, "move-models")
	if code != 0 {
		t.Fatalf("move-models exit %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "1 moved") {
		t.Errorf("output:\n%s", stdout)
	}
	assertFileContains(t, fp, `(model "${VIKINGS}/3dmodels/TSW-104.stp"`)
	assertFileExists(t, filepath.Join(env.LibDir, "3dmodels", "TSW-104.stp"))
	assertFileNotExists(t, filepath.Join(env.LibDir, "3D", "Connectors", "TSW-104.stp"))
}

func TestDoctor(t *testing.T) {
	env := setupTestEnv(t)
	env.addProject(t, "hardware/ecu")

	stdout, stderr, code := env.run(t, env.RepoDir, "doctor")
	if code != 0 {
		t.Fatalf("doctor exit %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
	for _, want := range []string{"[ OK ] footprints/ present", "[ OK ] 1 project(s) found"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("doctor output missing %q:\n%s", want, stdout)
		}
	}
}
