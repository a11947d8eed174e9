package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/incdep/incdep/pkg/config"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	canonical, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(canonical, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = rel
	}
	return out
}

func TestScanDirFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.cpp", "b.h", "c.cc", "d.hpp", "e.cxx", "notes.txt", "build.py")

	files, err := New(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relAll(t, root, files)
	want := []string{"a.cpp", "b.h", "c.cc", "d.hpp", "e.cxx"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanDirSorted(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "z.cpp", "a.cpp", "m/inner.h")

	files, err := New(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("files not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestScanDirExcludesConfiguredDirs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/main.cpp", "build/gen.cpp", "node_modules/dep/x.h")

	files, err := New(config.DefaultConfig()).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relAll(t, root, files)
	if len(got) != 1 || got[0] != filepath.Join("src", "main.cpp") {
		t.Errorf("got %v, want only src/main.cpp", got)
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.cpp", "skip_gen.cpp")

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "skip_*.cpp")

	files, err := New(cfg).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relAll(t, root, files)
	if len(got) != 1 || got[0] != "keep.cpp" {
		t.Errorf("got %v, want only keep.cpp", got)
	}
}

func TestScanDirGitignore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "kept.cpp", "generated/out.cpp")
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := New(config.DefaultConfig()).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relAll(t, root, files)
	if len(got) != 1 || got[0] != "kept.cpp" {
		t.Errorf("got %v, want only kept.cpp", got)
	}
}

func TestScanDirSymlinkEscapeSkipped(t *testing.T) {
	outside := t.TempDir()
	writeFiles(t, outside, "escape.cpp")

	root := t.TempDir()
	writeFiles(t, root, "inside.cpp")
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := New(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relAll(t, root, files)
	if len(got) != 1 || got[0] != "inside.cpp" {
		t.Errorf("got %v, symlinks out of the root must be skipped", got)
	}
}

func TestIsSourceFile(t *testing.T) {
	for _, path := range []string{"x.c", "x.h", "x.CPP", "dir/y.hxx", "y.hh"} {
		if !IsSourceFile(path) {
			t.Errorf("IsSourceFile(%q) = false", path)
		}
	}
	for _, path := range []string{"x.go", "x.py", "x", "x.cs"} {
		if IsSourceFile(path) {
			t.Errorf("IsSourceFile(%q) = true", path)
		}
	}
}
