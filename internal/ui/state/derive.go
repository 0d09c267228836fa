package state

import "github.com/atomicstack/popup-select/internal/option"

// Displayed is the option set shown to the user. Exactly one of Flat and
// Groups is meaningful, chosen by Categorized.
type Displayed struct {
	Categorized bool
	Flat        []option.Option
	Groups      *option.Categorized
}

// Len is the number of displayed options across all categories.
func (d Displayed) Len() int {
	if d.Categorized {
		if d.Groups == nil {
			return 0
		}
		return d.Groups.Count()
	}
	return len(d.Flat)
}

// Options returns the displayed options in render order.
func (d Displayed) Options() []option.Option {
	if d.Categorized {
		if d.Groups == nil {
			return nil
		}
		return d.Groups.Flatten()
	}
	return d.Flat
}

// Find returns the displayed option with the given id.
func (d Displayed) Find(id string) (option.Option, bool) {
	for _, o := range d.Options() {
		if o.ID == id {
			return o, true
		}
	}
	return option.Option{}, false
}

// DeriveInput carries everything the displayed-options pipeline reads.
type DeriveInput struct {
	Options        []option.Option
	Value          []option.Option
	Page           int
	RecordsPerPage int
	HasFetcher     bool
	Categorized    bool
	CategoryKey    string
	Categorize     option.CategorizeFunc
	RemoveSelected bool
	Sort           option.SortFunc
}

// Derive runs partition, categorize, remove-selected and sort in that order.
// The only failure is a categorized view with neither a category key nor a
// categorize function.
func Derive(in DeriveInput) (Displayed, error) {
	list := in.Options
	if !in.HasFetcher && in.RecordsPerPage > 0 {
		list = option.Partition(list, in.Page, in.RecordsPerPage)
	}
	if in.Categorized {
		groups, err := option.Categorize(list, in.CategoryKey, in.Categorize)
		if err != nil {
			return Displayed{Categorized: true}, err
		}
		if in.RemoveSelected && len(in.Value) > 0 {
			groups = groups.RemoveSelected(in.Value)
		}
		if in.Sort != nil {
			groups = groups.Sort(in.Sort)
		}
		return Displayed{Categorized: true, Groups: groups}, nil
	}
	if in.RemoveSelected && len(in.Value) > 0 {
		list = option.RemoveSelected(list, in.Value)
	}
	if in.Sort != nil {
		list = option.Sort(list, in.Sort)
	}
	return Displayed{Flat: option.Clone(list)}, nil
}
