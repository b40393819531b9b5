package style

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAggregatorRender(t *testing.T) {
	agg := NewAggregator()
	assert.Equal(t, "", agg.Render())

	agg.Add("a {}")
	agg.Add("b {}")
	agg.Add("a {}")
	agg.Add("")

	assert.Equal(t, 3, agg.Len())
	assert.Equal(t, []string{"a {}", "b {}"}, agg.Entries())
	assert.Equal(t, "<style enhanced=\"✨\">\na {}\nb {}\n</style>", agg.Render())
}

func TestAggregatorAddFragments(t *testing.T) {
	agg := NewAggregator()
	agg.AddFragments(
		Fragment{Host: "x-a", Scoped: "x-a p {\n  color: red;\n}"},
		Fragment{Host: "x-a", Scoped: "x-a p {\n  color: red;\n}"},
	)

	assert.Len(t, agg.Entries(), 1)
}

func TestAggregatorReset(t *testing.T) {
	agg := NewAggregator()
	agg.Add("a {}")
	agg.Reset()

	assert.Equal(t, 0, agg.Len())
	assert.Empty(t, agg.Render())
}

func TestAggregatorConcurrentAdd(t *testing.T) {
	agg := NewAggregator()
	const writers, perWriter = 16, 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				agg.Add(fmt.Sprintf("entry-%d", i))
				agg.Add(fmt.Sprintf("writer-%d", w))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, writers*perWriter*2, agg.Len())
	assert.Len(t, agg.Entries(), perWriter+writers)
}

func TestBlock(t *testing.T) {
	assert.Equal(t, "", Block(nil))
	assert.Equal(t, "<style enhanced=\"✨\">\nx\n</style>", Block([]string{"x"}))
}

func TestDistinctProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		texts := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c", "d"})).Draw(t, "texts")

		agg := NewAggregator()
		for _, s := range texts {
			agg.Add(s)
		}
		got := agg.Entries()

		seen := map[string]bool{}
		var want []string
		for _, s := range texts {
			if !seen[s] {
				seen[s] = true
				want = append(want, s)
			}
		}

		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})
}
