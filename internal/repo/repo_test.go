package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadCachesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(FilesystemSource{})
	first, err := r.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	// A later change on disk must not affect the cached view.
	if err := os.WriteFile(path, []byte("int y;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := r.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("cached read changed: %q then %q", first, second)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestReadRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.h")
	if err := os.WriteFile(path, []byte{'i', 'n', 't', 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(FilesystemSource{})
	if _, err := r.Read(path); !errors.Is(err, ErrBinary) {
		t.Errorf("Read() error = %v, want ErrBinary", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	r := New(FilesystemSource{})
	if _, err := r.Read(filepath.Join(t.TempDir(), "absent.cpp")); err == nil {
		t.Error("Read() of a missing file should fail")
	}
}

func TestDigestStableAndDistinct(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.h")
	if err := os.WriteFile(a, []byte("int a;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("int b;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(FilesystemSource{})
	if _, err := r.Read(a); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(b); err != nil {
		t.Fatal(err)
	}

	da := r.Digest(a)
	if da == "" {
		t.Fatal("Digest() empty after Read()")
	}
	if da != r.Digest(a) {
		t.Error("Digest() unstable across calls")
	}
	if da == r.Digest(b) {
		t.Error("distinct content produced equal digests")
	}
}
