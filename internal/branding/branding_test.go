package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "kilib" {
		t.Errorf("CLIName() = %q, want %q", got, "kilib")
	}
	if got := HomeDir(); got != ".kilib" {
		t.Errorf("HomeDir() = %q, want %q", got, ".kilib")
	}
}

func TestEnvVar(t *testing.T) {
	tests := []struct {
		suffix string
		want   string
	}{
		{"lib_submodule", "KILIB_LIB_SUBMODULE"},
		{"log.level", "KILIB_LOG.LEVEL"},
		{"HOME", "KILIB_HOME"},
	}
	for _, tt := range tests {
		if got := EnvVar(tt.suffix); got != tt.want {
			t.Errorf("EnvVar(%q) = %q, want %q", tt.suffix, got, tt.want)
		}
	}
}
