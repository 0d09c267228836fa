package option

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fruit(id, category string) Option {
	return New(id, map[string]any{"label": id, "kind": category})
}

func TestGroupByKeepsFirstOccurrenceOrder(t *testing.T) {
	options := []Option{
		fruit("kiwi", "green"),
		fruit("cherry", "red"),
		fruit("lime", "green"),
		fruit("mystery", ""),
		fruit("apple", "red"),
	}
	view, err := Categorize(options, "kind", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"green", "red", FallbackCategory}, view.Categories())
	green, ok := view.Get("green")
	require.True(t, ok)
	require.Equal(t, []string{"kiwi", "lime"}, IDs(green))
	require.Equal(t, 5, view.Count())
	require.Equal(t, 2, view.Size("red"))
	require.Equal(t, []string{"kiwi", "lime", "cherry", "apple", "mystery"}, IDs(view.Flatten()))
}

func TestCategorizeWithoutKeyFails(t *testing.T) {
	_, err := Categorize([]Option{fruit("a", "x")}, " ", nil)
	require.True(t, errors.Is(err, ErrCategoryKeyMissing))
}

func TestCategorizeUsesHostFunction(t *testing.T) {
	fn := func(options []Option) *Categorized {
		view := NewCategorized()
		for _, o := range options {
			view.Append(string(o.ID[0]), o)
		}
		return view
	}
	view, err := Categorize([]Option{fruit("ab", ""), fruit("ba", ""), fruit("ac", "")}, "", fn)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, view.Categories())
}

func TestCategorizedRemoveSelectedDropsEmptyCategories(t *testing.T) {
	view := GroupBy([]Option{fruit("kiwi", "green"), fruit("cherry", "red"), fruit("lime", "green")}, "kind")
	out := view.RemoveSelected([]Option{fruit("cherry", "red"), fruit("kiwi", "green")})
	require.Equal(t, []string{"green"}, out.Categories())
	green, _ := out.Get("green")
	require.Equal(t, []string{"lime"}, IDs(green))
	require.Equal(t, 3, view.Count())
}

func TestCategorizedSortWorksOnCopy(t *testing.T) {
	view := GroupBy([]Option{fruit("lime", "green"), fruit("kiwi", "green")}, "kind")
	sorted := view.Sort(ByLabel("label"))
	got, _ := sorted.Get("green")
	require.Equal(t, []string{"kiwi", "lime"}, IDs(got))
	original, _ := view.Get("green")
	require.Equal(t, []string{"lime", "kiwi"}, IDs(original))
}

func TestCategorizedLocate(t *testing.T) {
	view := GroupBy([]Option{fruit("kiwi", "green"), fruit("cherry", "red"), fruit("apple", "red")}, "kind")
	category, idx, ok := view.Locate("apple")
	require.True(t, ok)
	require.Equal(t, "red", category)
	require.Equal(t, 1, idx)
	_, _, ok = view.Locate("pear")
	require.False(t, ok)
}
