package cli

import (
	"path/filepath"
	"testing"
)

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	got := parseFormats("json,obj")
	if len(got) != 2 || got[0] != "json" || got[1] != "obj" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := parseSelection("")
	if err != nil || sel != nil {
		t.Errorf("empty selection = %v, %v; want nil, nil", sel, err)
	}

	sel, err = parseSelection("3,7")
	if err != nil {
		t.Fatalf("parseSelection: %v", err)
	}
	if sel.Row != 3 || sel.Col != 7 {
		t.Errorf("selection = %+v, want (3,7)", sel)
	}

	for _, bad := range []string{"3", "3;7", "a,b"} {
		if _, err := parseSelection(bad); err == nil {
			t.Errorf("parseSelection(%q) should fail", bad)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, fallback, want string
	}{
		{"", "lattice", "lattice"},
		{"out.svg", "lattice", "out"},
		{"out.obj", "lattice", "out"},
		{"out", "lattice", "out"},
		{"out.txt", "lattice", "out.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.fallback); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cache dir = %q, want a %q directory", dir, appName)
	}
}
