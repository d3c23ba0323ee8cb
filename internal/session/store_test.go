package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairsquare/internal/dataset"
)

func demoResult(days int) dataset.LoadResult {
	return dataset.LoadResult{
		Table:     dataset.DemoTable(dataset.DemoConfig{Days: days, Seed: 1}),
		Synthetic: true,
		Notice:    "using demo data",
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(nil)

	s := store.Create(demoResult(10))
	require.NotEmpty(t, s.ID)
	assert.True(t, s.Synthetic)
	assert.Equal(t, 10, s.Table.Len())

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	store := NewStore(nil)

	a := store.Create(demoResult(10))
	b := store.Create(demoResult(20))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 10, a.Table.Len())
	assert.Equal(t, 20, b.Table.Len())
	assert.Equal(t, 2, store.Len())
}

func TestStore_Replace(t *testing.T) {
	store := NewStore(nil)
	s := store.Create(demoResult(10))

	replaced, ok := store.Replace(s.ID, dataset.LoadResult{
		Table: dataset.DemoTable(dataset.DemoConfig{Days: 5, Seed: 2}),
	})
	require.True(t, ok)
	assert.Equal(t, s.ID, replaced.ID)
	assert.Equal(t, 5, replaced.Table.Len())
	assert.False(t, replaced.Synthetic)
	assert.Empty(t, replaced.Notice)

	_, ok = store.Replace("missing", demoResult(1))
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(nil)
	s := store.Create(demoResult(10))

	assert.True(t, store.Delete(s.ID))
	assert.False(t, store.Delete(s.ID))
	_, ok := store.Get(s.ID)
	assert.False(t, ok)
}

func TestSession_DailyRecomputes(t *testing.T) {
	store := NewStore(nil)
	s := store.Create(demoResult(10))

	before := s.Daily()
	assert.Len(t, before, 10)

	store.Replace(s.ID, demoResult(20))
	after := s.Daily()
	// Derived series always reflects the current table; nothing is cached
	// to go stale.
	assert.Len(t, after, 20)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := store.Create(demoResult(5))
			store.Get(s.ID)
			store.Delete(s.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, store.Len())
}
