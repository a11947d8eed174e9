package symbols

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/incdep/incdep/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildIndexesProvidesAndMacros(t *testing.T) {
	files := []*models.File{
		{ID: 0, Provides: []string{"foo", "bar"}},
		{ID: 1, Provides: []string{"foo"}, Macros: []string{"GUARD"}},
	}
	idx := Build(files)

	assert.Equal(t, []models.FileID{0, 1}, idx.Providers("foo"))
	assert.Equal(t, []models.FileID{0}, idx.Providers("bar"))
	assert.Equal(t, []models.FileID{1}, idx.Providers("GUARD"))
	assert.Empty(t, idx.Providers("absent"))
}

func TestBuildDeduplicatesMacroProviders(t *testing.T) {
	// Macro names appear in both Provides and Macros.
	files := []*models.File{
		{ID: 3, Provides: []string{"MAX"}, Macros: []string{"MAX"}},
	}
	idx := Build(files)
	assert.Equal(t, []models.FileID{3}, idx.Providers("MAX"))
}

func TestProvides(t *testing.T) {
	idx := Build([]*models.File{
		{ID: 0, Provides: []string{"alpha"}},
		{ID: 5, Provides: []string{"alpha"}},
	})
	assert.True(t, idx.Provides(0, "alpha"))
	assert.True(t, idx.Provides(5, "alpha"))
	assert.False(t, idx.Provides(3, "alpha"))
	assert.False(t, idx.Provides(0, "beta"))
}

func TestReachableProviders(t *testing.T) {
	idx := Build([]*models.File{
		{ID: 0, Provides: []string{"dup"}},
		{ID: 1, Provides: []string{"dup"}},
		{ID: 2, Provides: []string{"dup"}},
	})

	reach := roaring.New()
	reach.Add(1)
	reach.Add(2)
	assert.Equal(t, 2, idx.ReachableProviders("dup", reach))
	assert.Equal(t, 0, idx.ReachableProviders("dup", roaring.New()))
}
