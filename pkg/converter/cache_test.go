package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/tsxify/pkg/config"
)

func TestCacheKey(t *testing.T) {
	unit := SourceUnit{Name: "A.jsx", Text: "const a = 1;"}
	cfg := config.Default()

	assert.Equal(t, Key(unit, cfg), Key(unit, cfg))
	assert.NotEqual(t, Key(unit, cfg), Key(SourceUnit{Name: "B.jsx", Text: unit.Text}, cfg))
	assert.NotEqual(t, Key(unit, cfg), Key(SourceUnit{Name: unit.Name, Text: "const a = 2;"}, cfg))

	advanced := cfg
	advanced.Level = config.LevelAdvanced
	assert.NotEqual(t, Key(unit, cfg), Key(unit, advanced))
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(2, testLogger)
	for _, name := range []string{"a", "b", "c"} {
		cache.Put(ComputeContentHash([]byte(name)), &Result{Name: name})
	}

	_, ok := cache.Get(ComputeContentHash([]byte("a")))
	assert.False(t, ok)
	got, ok := cache.Get(ComputeContentHash([]byte("c")))
	assert.True(t, ok)
	assert.Equal(t, "c", got.Name)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}
