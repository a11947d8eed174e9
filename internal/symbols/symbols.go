// Package symbols indexes which files provide which identifiers.
package symbols

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/incdep/incdep/pkg/models"
)

// Index maps identifier names to the files providing them. Built once per
// run; removal planning never changes what a file provides.
type Index struct {
	providers map[string][]models.FileID
}

// Build indexes the provided declarations and macros of every file.
func Build(files []*models.File) *Index {
	idx := &Index{providers: make(map[string][]models.FileID)}
	for _, f := range files {
		for _, name := range f.Provides {
			idx.providers[name] = append(idx.providers[name], f.ID)
		}
		for _, name := range f.Macros {
			idx.providers[name] = append(idx.providers[name], f.ID)
		}
	}
	for name, ids := range idx.providers {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		idx.providers[name] = dedup(ids)
	}
	return idx
}

func dedup(ids []models.FileID) []models.FileID {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

// Providers returns every file providing name, in id order.
func (idx *Index) Providers(name string) []models.FileID {
	return idx.providers[name]
}

// Provides reports whether file id provides name.
func (idx *Index) Provides(id models.FileID, name string) bool {
	for _, p := range idx.providers[name] {
		if p == id {
			return true
		}
		if p > id {
			break
		}
	}
	return false
}

// ReachableProviders counts the providers of name inside the reachable
// set. The count drives confidence scoring: one reachable provider means
// the reference binds unambiguously.
func (idx *Index) ReachableProviders(name string, reach *roaring.Bitmap) int {
	n := 0
	for _, p := range idx.providers[name] {
		if reach.Contains(uint32(p)) {
			n++
		}
	}
	return n
}
