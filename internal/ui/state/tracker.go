package state

import (
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
)

// slot is one focusable option in render order.
type slot struct {
	id       string
	category string
	index    int
	row      int
}

// FocusTracker holds the focused option of the displayed list together with
// the viewport over the rendered rows. Category headers occupy a row each, so
// rows and option indexes differ in categorized mode.
type FocusTracker struct {
	Index    int
	Category string
	Offset   int
	Visible  int
	Fallback focus.Fallback

	view  Displayed
	slots []slot
	rows  map[string]int
	total int
}

// NewFocusTracker returns a tracker with nothing focused.
func NewFocusTracker(fallback focus.Fallback) *FocusTracker {
	return &FocusTracker{Index: focus.None, Fallback: fallback, rows: map[string]int{}}
}

// View returns the displayed options the tracker last reconciled against.
func (f *FocusTracker) View() Displayed { return f.view }

// TotalRows is the number of rendered rows, headers included.
func (f *FocusTracker) TotalRows() int { return f.total }

// Row returns the rendered row of the option with id.
func (f *FocusTracker) Row(id string) (int, bool) {
	row, ok := f.rows[id]
	return row, ok
}

// Position returns the focus as a categorized position.
func (f *FocusTracker) Position() focus.Position {
	if f.Index < 0 {
		return focus.NoPosition
	}
	return focus.Position{Category: f.Category, Index: f.Index}
}

// Focused returns the focused option.
func (f *FocusTracker) Focused() (option.Option, bool) {
	if f.Index < 0 {
		return option.Option{}, false
	}
	if f.view.Categorized {
		if f.view.Groups == nil {
			return option.Option{}, false
		}
		list, ok := f.view.Groups.Get(f.Category)
		if !ok || f.Index >= len(list) {
			return option.Option{}, false
		}
		return list[f.Index], true
	}
	if f.Index >= len(f.view.Flat) {
		return option.Option{}, false
	}
	return f.view.Flat[f.Index], true
}

// FocusedID returns the id of the focused option or "".
func (f *FocusTracker) FocusedID() string {
	if o, ok := f.Focused(); ok {
		return o.ID
	}
	return ""
}

// Clear unsets focus.
func (f *FocusTracker) Clear() {
	f.Index = focus.None
	f.Category = ""
}

// Reconcile adopts a new displayed list. Focus moves to the option with keep
// when it is still displayed, otherwise to the first option. An empty list
// clears focus.
func (f *FocusTracker) Reconcile(view Displayed, keep string) {
	f.view = view
	f.rebuild()
	if len(f.slots) == 0 {
		f.Clear()
		f.Offset = 0
		return
	}
	if keep != "" && f.FocusID(keep) {
		return
	}
	f.focusSlot(0)
}

// Reset moves focus to the first option and scrolls to the top.
func (f *FocusTracker) Reset() {
	f.Offset = 0
	if len(f.slots) == 0 {
		f.Clear()
		return
	}
	f.focusSlot(0)
}

// FocusID focuses the option with id, scrolling it into view.
func (f *FocusTracker) FocusID(id string) bool {
	for i, s := range f.slots {
		if s.id == id {
			f.focusSlot(i)
			return true
		}
	}
	return false
}

// Hover focuses the option under the pointer. Returns whether focus changed.
func (f *FocusTracker) Hover(id string) bool {
	if id == f.FocusedID() {
		return false
	}
	return f.FocusID(id)
}

// Move steps focus in dir using the tracker's fallback policy.
func (f *FocusTracker) Move(dir focus.Direction) bool {
	before := f.Position()
	var next focus.Position
	if f.view.Categorized {
		if f.view.Groups == nil {
			return false
		}
		next = focus.StepCategorized(f.view.Groups, before, focus.Request{Direction: dir, Fallback: f.Fallback})
	} else {
		next = focus.Position{Index: focus.Step(len(f.view.Flat), f.Index, dir, f.Fallback)}
	}
	if !next.Valid() {
		f.Clear()
		return before.Valid()
	}
	f.Index = next.Index
	f.Category = next.Category
	f.scrollToFocus()
	events.Focus.Move(dir.String(), f.Category, f.Index)
	return next != before
}

// MoveHome focuses the first option.
func (f *FocusTracker) MoveHome() bool {
	return f.moveToSlot(0)
}

// MoveEnd focuses the last option.
func (f *FocusTracker) MoveEnd() bool {
	return f.moveToSlot(len(f.slots) - 1)
}

// MovePage moves focus by a page of visible rows without wrapping.
func (f *FocusTracker) MovePage(dir focus.Direction) bool {
	if len(f.slots) == 0 {
		return false
	}
	size := f.Visible
	if size <= 0 || size > len(f.slots) {
		size = len(f.slots)
	}
	current := f.slotIndex()
	if current < 0 {
		current = 0
	}
	if dir == focus.Previous {
		size = -size
	}
	target := current + size
	if target < 0 {
		target = 0
	}
	if target >= len(f.slots) {
		target = len(f.slots) - 1
	}
	return f.moveToSlot(target)
}

// TargetAfterSelect returns the id focus should land on once the option with
// id is toggled. It is computed against the list shown before the toggle so
// the caller can reconcile onto it afterwards.
func (f *FocusTracker) TargetAfterSelect(id string, becameSelected, removeSelected bool) string {
	dir := focus.AfterSelect(becameSelected, removeSelected)
	if f.view.Categorized {
		if f.view.Groups == nil {
			return ""
		}
		category, index, ok := f.view.Groups.Locate(id)
		if !ok {
			return ""
		}
		next := focus.StepCategorized(f.view.Groups, focus.Position{Category: category, Index: index}, focus.Request{
			Direction:       dir,
			Fallback:        f.Fallback,
			CheckInCategory: true,
		})
		if !next.Valid() {
			return ""
		}
		list, _ := f.view.Groups.Get(next.Category)
		if next.Index >= len(list) {
			return ""
		}
		return list[next.Index].ID
	}
	index := option.IndexOf(f.view.Flat, id)
	if index < 0 {
		return ""
	}
	next := focus.Step(len(f.view.Flat), index, dir, f.Fallback)
	if next < 0 {
		return ""
	}
	return f.view.Flat[next].ID
}

// SetViewport records how many rows fit and keeps focus visible.
func (f *FocusTracker) SetViewport(visible int) {
	if visible < 0 {
		visible = 0
	}
	f.Visible = visible
	f.scrollToFocus()
}

// ScrollBy shifts the viewport by delta rows without moving focus.
func (f *FocusTracker) ScrollBy(delta int) bool {
	maxOffset := f.total - f.Visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	next := f.Offset + delta
	if next > maxOffset {
		next = maxOffset
	}
	if next < 0 {
		next = 0
	}
	if next == f.Offset {
		return false
	}
	f.Offset = next
	return true
}

// AtBottom reports whether the last row is inside the viewport.
func (f *FocusTracker) AtBottom() bool {
	if f.Visible <= 0 {
		return true
	}
	return f.Offset+f.Visible >= f.total
}

// OptionAtRow returns the id of the option rendered at row.
func (f *FocusTracker) OptionAtRow(row int) (string, bool) {
	for _, s := range f.slots {
		if s.row == row {
			return s.id, true
		}
	}
	return "", false
}

func (f *FocusTracker) moveToSlot(i int) bool {
	if i < 0 || i >= len(f.slots) {
		return false
	}
	before := f.slotIndex()
	f.focusSlot(i)
	return before != i
}

func (f *FocusTracker) focusSlot(i int) {
	s := f.slots[i]
	f.Index = s.index
	f.Category = s.category
	f.scrollToFocus()
}

func (f *FocusTracker) slotIndex() int {
	if f.Index < 0 {
		return -1
	}
	for i, s := range f.slots {
		if s.category == f.Category && s.index == f.Index {
			return i
		}
	}
	return -1
}

func (f *FocusTracker) scrollToFocus() {
	row := -1
	if id := f.FocusedID(); id != "" {
		if r, ok := f.rows[id]; ok {
			row = r
		}
	}
	offset, scrolled := focus.EnsureVisible(row, f.Offset, f.Visible, f.total)
	if scrolled {
		events.Focus.Scroll(row, offset)
	}
	f.Offset = offset
}

func (f *FocusTracker) rebuild() {
	f.slots = f.slots[:0]
	f.rows = make(map[string]int, f.view.Len())
	row := 0
	if f.view.Categorized {
		if f.view.Groups != nil {
			for _, category := range f.view.Groups.Categories() {
				list, _ := f.view.Groups.Get(category)
				if len(list) == 0 {
					continue
				}
				row++
				for i, o := range list {
					f.slots = append(f.slots, slot{id: o.ID, category: category, index: i, row: row})
					f.rows[o.ID] = row
					row++
				}
			}
		}
	} else {
		for i, o := range f.view.Flat {
			f.slots = append(f.slots, slot{id: o.ID, index: i, row: row})
			f.rows[o.ID] = row
			row++
		}
	}
	f.total = row
}
