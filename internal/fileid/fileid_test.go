package fileid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestForPath(t *testing.T) {
	id := ForPath("/foo/bar.txt")
	if id != ForPath("/foo/bar.txt") {
		t.Error("same path should give same ID")
	}
	if !strings.HasPrefix(id, prefix) || len(id) != len(prefix)+idLen {
		t.Errorf("malformed ID %q", id)
	}
	if id == ForPath("/foo/baz.txt") {
		t.Error("different paths should give different IDs")
	}
}

func TestForPath_normalized(t *testing.T) {
	id := ForPath("/foo/bar")
	for _, p := range []string{"/foo/bar/", "/foo/./bar", "/foo/baz/../bar"} {
		if got := ForPath(p); got != id {
			t.Errorf("ForPath(%q) = %q, want %q", p, got, id)
		}
	}
}

func TestForPath_relative(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if ForPath("a/b.txt") != ForPath(filepath.Join(wd, "a", "b.txt")) {
		t.Error("relative path should resolve against the working directory")
	}
}

func TestForLine(t *testing.T) {
	if ForLine("stdin", 0) == ForLine("stdin", 1) {
		t.Error("lines should get distinct IDs")
	}
	if ForLine("stdin", 3) != ForLine("stdin", 3) {
		t.Error("ForLine should be deterministic")
	}
}
