package option

import (
	"errors"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FallbackCategory collects options without a category value.
const FallbackCategory = "Other"

// ErrCategoryKeyMissing reports categorization requested without a category
// key or categorize function.
var ErrCategoryKeyMissing = errors.New("option: categorization requires a category key or categorize function")

// CategorizeFunc groups options into a categorized view.
type CategorizeFunc func(options []Option) *Categorized

// Categorized maps category names to option lists. Category order follows
// first insertion, matching the top-to-bottom order of the source list.
type Categorized struct {
	groups *orderedmap.OrderedMap[string, []Option]
}

// NewCategorized returns an empty categorized view.
func NewCategorized() *Categorized {
	return &Categorized{groups: orderedmap.New[string, []Option]()}
}

// Append adds options to category, creating it at the end when new.
func (c *Categorized) Append(category string, options ...Option) {
	existing, _ := c.groups.Get(category)
	c.groups.Set(category, append(existing, options...))
}

// Set replaces the options of category, keeping its position when present.
func (c *Categorized) Set(category string, options []Option) {
	c.groups.Set(category, Clone(options))
}

// Get returns the options of category.
func (c *Categorized) Get(category string) ([]Option, bool) {
	if c == nil {
		return nil, false
	}
	return c.groups.Get(category)
}

// Delete removes category.
func (c *Categorized) Delete(category string) {
	c.groups.Delete(category)
}

// Categories lists category names in insertion order.
func (c *Categorized) Categories() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, c.groups.Len())
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Size returns the number of options in category.
func (c *Categorized) Size(category string) int {
	options, _ := c.Get(category)
	return len(options)
}

// Len returns the number of categories.
func (c *Categorized) Len() int {
	if c == nil {
		return 0
	}
	return c.groups.Len()
}

// Count returns the total number of options across categories.
func (c *Categorized) Count() int {
	if c == nil {
		return 0
	}
	total := 0
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		total += len(pair.Value)
	}
	return total
}

// Flatten concatenates the categories in order.
func (c *Categorized) Flatten() []Option {
	if c == nil {
		return nil
	}
	out := make([]Option, 0, c.Count())
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value...)
	}
	return out
}

// Clone copies the view and every category slice.
func (c *Categorized) Clone() *Categorized {
	dup := NewCategorized()
	if c == nil {
		return dup
	}
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		dup.groups.Set(pair.Key, Clone(pair.Value))
	}
	return dup
}

// Locate returns the category and index holding id.
func (c *Categorized) Locate(id string) (string, int, bool) {
	if c == nil {
		return "", -1, false
	}
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		if idx := IndexOf(pair.Value, id); idx >= 0 {
			return pair.Key, idx, true
		}
	}
	return "", -1, false
}

// RemoveSelected drops selected options from every category. Categories left
// empty are removed so navigation never lands on an empty group.
func (c *Categorized) RemoveSelected(selected []Option) *Categorized {
	out := NewCategorized()
	if c == nil {
		return out
	}
	ids := IDSet(selected)
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		kept := make([]Option, 0, len(pair.Value))
		for _, o := range pair.Value {
			if _, ok := ids[o.ID]; !ok {
				kept = append(kept, o)
			}
		}
		if len(kept) > 0 {
			out.groups.Set(pair.Key, kept)
		}
	}
	return out
}

// GroupBy buckets options by the text of key. Empty values fall back to
// FallbackCategory.
func GroupBy(options []Option, key string) *Categorized {
	out := NewCategorized()
	for _, o := range options {
		category := strings.TrimSpace(o.Text(key))
		if category == "" {
			category = FallbackCategory
		}
		out.Append(category, o)
	}
	return out
}

// Categorize groups options with fn when supplied, otherwise by key.
func Categorize(options []Option, key string, fn CategorizeFunc) (*Categorized, error) {
	if fn != nil {
		view := fn(options)
		if view == nil {
			view = NewCategorized()
		}
		return view, nil
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrCategoryKeyMissing
	}
	return GroupBy(options, key), nil
}
