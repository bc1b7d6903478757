package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldVersion, oldDirty := Version, Dirty
	defer func() { Version, Dirty = oldVersion, oldDirty }()

	tests := []struct {
		version, dirty, want string
	}{
		{"1.2.0", "false", "1.2.0"},
		{"1.2.0", "true", "1.2.0-dirty"},
		{"dev", "", "dev"},
	}
	for _, tt := range tests {
		Version, Dirty = tt.version, tt.dirty
		if got := String(); got != tt.want {
			t.Errorf("String() with %q/%q = %q, want %q", tt.version, tt.dirty, got, tt.want)
		}
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.0.0", Commit: "abc123", Dirty: true, BuildDate: "2026-01-01T00:00:00Z", GoVersion: "go1.25.5", Platform: "linux/amd64"}
	out := info.String()
	for _, want := range []string{"regtidy 1.0.0-dirty", "abc123", "2026-01-01T00:00:00Z", "linux/amd64"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
