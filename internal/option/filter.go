package option

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FilterFunc narrows options for an input query.
type FilterFunc func(options []Option, query string) []Option

// SortFunc orders two options, following the slices.SortFunc contract.
type SortFunc func(a, b Option) int

// FilterByLabel keeps options whose label contains the trimmed query,
// ignoring case. An empty query returns every option.
func FilterByLabel(options []Option, labelKey, query string) []Option {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return Clone(options)
	}
	filtered := make([]Option, 0, len(options))
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Label(labelKey)), trimmed) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FuzzyFilter returns a FilterFunc ranking labels with a normalized fuzzy
// match, falling back to substring matching on label and id.
func FuzzyFilter(labelKey string) FilterFunc {
	return func(options []Option, query string) []Option {
		trimmed := strings.TrimSpace(query)
		if trimmed == "" {
			return Clone(options)
		}
		labels := make([]string, len(options))
		for i, o := range options {
			labels[i] = o.Label(labelKey)
		}
		ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
		if len(ranks) > 0 {
			matches := make(map[int]struct{}, len(ranks))
			for _, rank := range ranks {
				matches[rank.OriginalIndex] = struct{}{}
			}
			filtered := make([]Option, 0, len(matches))
			for idx, o := range options {
				if _, ok := matches[idx]; ok {
					filtered = append(filtered, o)
				}
			}
			if len(filtered) > 0 {
				return filtered
			}
		}
		lower := strings.ToLower(trimmed)
		filtered := make([]Option, 0, len(options))
		for _, o := range options {
			if strings.Contains(strings.ToLower(o.Label(labelKey)), lower) ||
				strings.Contains(strings.ToLower(o.ID), lower) {
				filtered = append(filtered, o)
			}
		}
		return filtered
	}
}

// BestMatchIndex returns the best index for the query among options: exact
// label or id, then label prefix, id prefix, id substring, label substring,
// and finally the closest fuzzy rank.
func BestMatchIndex(options []Option, labelKey, query string) int {
	trimmed := strings.TrimSpace(query)
	if len(options) == 0 {
		return -1
	}
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, o := range options {
		if strings.EqualFold(o.Label(labelKey), trimmed) || strings.EqualFold(o.ID, trimmed) {
			return i
		}
	}
	for i, o := range options {
		if strings.HasPrefix(strings.ToLower(o.Label(labelKey)), lower) {
			return i
		}
	}
	for i, o := range options {
		if strings.HasPrefix(strings.ToLower(o.ID), lower) {
			return i
		}
	}
	for i, o := range options {
		if strings.Contains(strings.ToLower(o.ID), lower) {
			return i
		}
	}
	for i, o := range options {
		if strings.Contains(strings.ToLower(o.Label(labelKey)), lower) {
			return i
		}
	}
	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = o.Label(labelKey)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
			continue
		}
		if rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex {
			best = rank
		}
	}
	if best.OriginalIndex < 0 || best.OriginalIndex >= len(options) {
		return 0
	}
	return best.OriginalIndex
}

// Partition reveals the first page*perPage options. A non-positive perPage
// disables partitioning.
func Partition(options []Option, page, perPage int) []Option {
	if perPage <= 0 {
		return Clone(options)
	}
	if page < 1 {
		page = 1
	}
	end := page * perPage
	if end > len(options) {
		end = len(options)
	}
	return Clone(options[:end])
}

// RemoveSelected drops options present in selected.
func RemoveSelected(options, selected []Option) []Option {
	if len(selected) == 0 {
		return Clone(options)
	}
	ids := IDSet(selected)
	kept := make([]Option, 0, len(options))
	for _, o := range options {
		if _, ok := ids[o.ID]; !ok {
			kept = append(kept, o)
		}
	}
	return kept
}

// Sort returns a stably sorted copy of options.
func Sort(options []Option, fn SortFunc) []Option {
	dup := Clone(options)
	if fn != nil {
		slices.SortStableFunc(dup, fn)
	}
	return dup
}

// Sort returns a copy of the view with every category sorted by fn.
func (c *Categorized) Sort(fn SortFunc) *Categorized {
	dup := c.Clone()
	if fn == nil {
		return dup
	}
	for pair := dup.groups.Oldest(); pair != nil; pair = pair.Next() {
		slices.SortStableFunc(pair.Value, fn)
	}
	return dup
}

// AppendUnique appends incoming options whose id is not already known.
func AppendUnique(existing, incoming []Option) []Option {
	out := make([]Option, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	seen := IDSet(existing)
	for _, o := range incoming {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Dedupe collapses repeated ids: the last occurrence wins but keeps the
// position of the first.
func Dedupe(options []Option) []Option {
	index := make(map[string]int, len(options))
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if idx, ok := index[o.ID]; ok {
			out[idx] = o
			continue
		}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	return out
}

// ByLabel sorts options alphabetically by label, ignoring case.
func ByLabel(labelKey string) SortFunc {
	return func(a, b Option) int {
		return strings.Compare(strings.ToLower(a.Label(labelKey)), strings.ToLower(b.Label(labelKey)))
	}
}
