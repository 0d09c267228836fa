package focus

// CategoryView exposes the shape of a categorized option list.
type CategoryView interface {
	Categories() []string
	Size(category string) int
}

// Position addresses an option within a categorized list.
type Position struct {
	Category string
	Index    int
}

// NoPosition is the unset focus.
var NoPosition = Position{Index: None}

// Valid reports whether p points anywhere.
func (p Position) Valid() bool {
	return p.Index >= 0
}

// Request describes a categorized focus move.
type Request struct {
	Direction Direction
	Fallback  Fallback
	// CheckInCategory retries inside the current category with the fallback
	// direction before leaving it. Used right after a selection empties the
	// tail of a category.
	CheckInCategory bool
}

// StepCategorized returns the position focused after applying req from
// current. Moves stay inside the current category when possible, then cross
// to the adjacent category, then optionally retry in-category, and finally
// apply the fallback policy across categories.
func StepCategorized(view CategoryView, current Position, req Request) Position {
	categories := nonEmpty(view)
	if len(categories) == 0 {
		return NoPosition
	}
	ci := indexOf(categories, current.Category)
	if ci < 0 {
		return Position{Category: categories[0], Index: 0}
	}
	size := view.Size(current.Category)
	if current.Index < 0 || current.Index >= size {
		return Position{Category: current.Category, Index: 0}
	}

	if candidate := current.Index + req.Direction.delta(); candidate >= 0 && candidate < size {
		return Position{Category: current.Category, Index: candidate}
	}

	if pos, ok := adjacent(view, categories, ci, req.Direction); ok {
		return pos
	}

	fallbackDir := req.Fallback.direction(req.Direction)
	if req.CheckInCategory {
		if candidate := current.Index + fallbackDir.delta(); candidate >= 0 && candidate < size {
			return Position{Category: current.Category, Index: candidate}
		}
	}

	if req.Fallback == FallbackOpposite {
		if req.Direction == Next {
			return Position{Category: categories[0], Index: 0}
		}
		last := categories[len(categories)-1]
		return Position{Category: last, Index: view.Size(last) - 1}
	}
	if pos, ok := adjacent(view, categories, ci, fallbackDir); ok {
		return pos
	}
	return current
}

// adjacent lands on the boundary option of the category next to ci in dir:
// the first option when moving forward, the last when moving backward.
func adjacent(view CategoryView, categories []string, ci int, dir Direction) (Position, bool) {
	target := ci + dir.delta()
	if target < 0 || target >= len(categories) {
		return NoPosition, false
	}
	name := categories[target]
	if dir == Next {
		return Position{Category: name, Index: 0}, true
	}
	return Position{Category: name, Index: view.Size(name) - 1}, true
}

func nonEmpty(view CategoryView) []string {
	if view == nil {
		return nil
	}
	all := view.Categories()
	out := make([]string, 0, len(all))
	for _, name := range all {
		if view.Size(name) > 0 {
			out = append(out, name)
		}
	}
	return out
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
