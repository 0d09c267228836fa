// Package focus computes keyboard focus transitions across flat and
// categorized option lists. Every function is pure: callers pass the
// displayed options (or their shape) and the current position in.
package focus

// None marks an unset focus index.
const None = -1

// Direction is the direction of a focus move.
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == Next {
		return Previous
	}
	return Next
}

func (d Direction) delta() int {
	if d == Previous {
		return -1
	}
	return 1
}

// Fallback selects what happens when a move runs off the list.
type Fallback int

const (
	// FallbackOpposite wraps to the other end of the list.
	FallbackOpposite Fallback = iota
	// FallbackNext retries the move towards the next option.
	FallbackNext
	// FallbackPrevious retries the move towards the previous option.
	FallbackPrevious
)

func (f Fallback) String() string {
	switch f {
	case FallbackNext:
		return "next"
	case FallbackPrevious:
		return "previous"
	default:
		return "opposite"
	}
}

// ParseFallback maps a configuration string to a Fallback.
func ParseFallback(value string) (Fallback, bool) {
	switch value {
	case "", "opposite":
		return FallbackOpposite, true
	case "next":
		return FallbackNext, true
	case "previous":
		return FallbackPrevious, true
	}
	return FallbackOpposite, false
}

// direction resolves a non-opposite fallback into a direction. For
// FallbackOpposite it returns the reverse of dir.
func (f Fallback) direction(dir Direction) Direction {
	switch f {
	case FallbackNext:
		return Next
	case FallbackPrevious:
		return Previous
	default:
		return dir.Opposite()
	}
}

// Step returns the index focused after moving from current in dir over a
// list of length options. Invalid or unset focus re-enters at 0 and an empty
// list yields None.
func Step(length, current int, dir Direction, fallback Fallback) int {
	if length <= 0 {
		return None
	}
	if current < 0 || current >= length {
		return 0
	}
	if candidate := current + dir.delta(); candidate >= 0 && candidate < length {
		return candidate
	}
	if fallback == FallbackOpposite {
		if dir == Next {
			return 0
		}
		return length - 1
	}
	if candidate := current + fallback.direction(dir).delta(); candidate >= 0 && candidate < length {
		return candidate
	}
	return current
}

// AfterSelect picks the direction focus advances in after an option was
// toggled. An option that became selected and stays visible keeps the cursor
// stable by moving back; otherwise focus moves forward.
func AfterSelect(becameSelected, removeSelected bool) Direction {
	if becameSelected && !removeSelected {
		return Previous
	}
	return Next
}

// EnsureVisible returns the viewport offset that keeps row visible within a
// window of visible rows over total rows. The offset only changes when row
// lies outside the current window; scrolled reports whether it did.
func EnsureVisible(row, offset, visible, total int) (int, bool) {
	if total <= 0 || visible <= 0 {
		return 0, offset != 0
	}
	maxOffset := total - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	next := offset
	if next > maxOffset {
		next = maxOffset
	}
	if next < 0 {
		next = 0
	}
	if row < 0 {
		return next, next != offset
	}
	if row >= total {
		row = total - 1
	}
	if row < next {
		next = row
	}
	if upper := next + visible - 1; row > upper {
		next = row - visible + 1
		if next > maxOffset {
			next = maxOffset
		}
		if next < 0 {
			next = 0
		}
	}
	return next, next != offset
}
