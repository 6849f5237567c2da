package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/raine/balla/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name, itemType string) *analysis.Result {
	return &analysis.Result{ItemName: name, ItemType: itemType, Condition: analysis.ConditionGood}
}

func TestAdd_PrependsNewestFirst(t *testing.T) {
	h := New()
	_, ok := h.Latest()
	assert.False(t, ok)

	first := h.Add("basra", result("Sofa", "Furniture"))
	second := h.Add("baghdad", result("iPhone 13", "Electronics"))

	require.Equal(t, 2, h.Len())
	entries := h.Entries()
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.NotEqual(t, first.ID, second.ID)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "iPhone 13", latest.Result.ItemName)
}

func TestAdd_LeavesPriorEntriesUntouched(t *testing.T) {
	h := New()
	for i := 0; i < 5; i++ {
		before := h.Entries()
		added := h.Add("erbil", result(fmt.Sprintf("item %d", i), "Misc"))

		after := h.Entries()
		require.Len(t, after, len(before)+1)
		assert.Equal(t, added, after[0])
		assert.Equal(t, before, after[1:])
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	h := New()
	h.Add("basra", result("Sofa", "Furniture"))

	entries := h.Entries()
	entries[0].Region = "mosul"
	assert.Equal(t, "basra", string(h.Entries()[0].Region))
}

func TestSearch(t *testing.T) {
	h := New()
	h.Add("basra", result("Leather Sofa", "Furniture"))
	h.Add("baghdad", result("iPhone 13", "Electronics"))
	h.Add("najaf", result("Samsung TV", "electronics"))

	assert.Len(t, h.Search(""), 3)
	assert.Len(t, h.Search("ELECTRONICS"), 2)
	assert.Len(t, h.Search("sofa"), 1)
	assert.Empty(t, h.Search("bicycle"))

	hits := h.Search("electronics")
	assert.Equal(t, "Samsung TV", hits[0].Result.ItemName)
}

func TestAdd_Concurrent(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Add("kirkuk", result("Chair", "Furniture"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.Len())
}
