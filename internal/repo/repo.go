// Package repo provides the run-scoped content repository. It replaces any
// ambient process-wide cache: one Repository is created per run, passed by
// reference, and discarded with the run.
package repo

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// ErrBinary marks content that is not scannable source text.
var ErrBinary = fmt.Errorf("binary content")

// sniffLen is how many leading bytes are inspected for binary detection.
const sniffLen = 8192

// Source provides file content. The default reads from the filesystem;
// tests substitute in-memory maps.
type Source interface {
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// Read implements Source.
func (FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Repository is a read-through content cache with blake3 digests.
// It is safe for concurrent use during the parallel scan phase.
type Repository struct {
	src Source

	mu      sync.RWMutex
	content map[string][]byte
	digest  map[string]string
}

// New creates a repository over the given source.
func New(src Source) *Repository {
	if src == nil {
		src = FilesystemSource{}
	}
	return &Repository{
		src:     src,
		content: make(map[string][]byte),
		digest:  make(map[string]string),
	}
}

// Read returns the content of path, caching it for later readers.
// Binary content (NUL byte in the leading bytes) fails with ErrBinary so
// the caller can record a scan warning and move on.
func (r *Repository) Read(path string) ([]byte, error) {
	r.mu.RLock()
	data, ok := r.content[path]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := r.src.Read(path)
	if err != nil {
		return nil, err
	}
	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBinary)
	}

	r.mu.Lock()
	r.content[path] = data
	r.digest[path] = hashBytes(data)
	r.mu.Unlock()
	return data, nil
}

// Digest returns the blake3 hex digest of a previously read file.
func (r *Repository) Digest(path string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.digest[path]
}

// Len returns the number of cached files.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.content)
}

func hashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
