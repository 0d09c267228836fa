package state

import "unicode"

// Input is the editable search text and its caret, measured in runes.
type Input struct {
	Text  string
	Caret int
}

// NewInput places the caret at the end of text.
func NewInput(text string) Input {
	return Input{Text: text, Caret: len([]rune(text))}
}

// CaretPos returns the caret clamped to the text.
func (in Input) CaretPos() int {
	n := len([]rune(in.Text))
	if in.Caret < 0 {
		return 0
	}
	if in.Caret > n {
		return n
	}
	return in.Caret
}

// Sync replaces the text while keeping the caret inside it. Used when the
// text was changed outside the editor, for example cleared on select.
func (in *Input) Sync(text string) {
	if in.Text == text {
		return
	}
	in.Text = text
	in.Caret = in.CaretPos()
}

// Insert adds text at the caret.
func (in *Input) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(in.Text)
	pos := in.CaretPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	in.Text = string(updated)
	in.Caret = pos + len(insert)
	return true
}

// DeleteRuneBackward removes the rune before the caret.
func (in *Input) DeleteRuneBackward() bool {
	runes := []rune(in.Text)
	pos := in.CaretPos()
	if pos == 0 {
		return false
	}
	in.Text = string(append(runes[:pos-1], runes[pos:]...))
	in.Caret = pos - 1
	return true
}

// DeleteRuneForward removes the rune under the caret.
func (in *Input) DeleteRuneForward() bool {
	runes := []rune(in.Text)
	pos := in.CaretPos()
	if pos >= len(runes) {
		return false
	}
	in.Text = string(append(runes[:pos], runes[pos+1:]...))
	in.Caret = pos
	return true
}

// DeleteWordBackward removes the word before the caret along with any
// whitespace between it and the caret.
func (in *Input) DeleteWordBackward() bool {
	runes := []rune(in.Text)
	pos := in.CaretPos()
	if pos == 0 {
		return false
	}
	i := wordStart(runes, pos)
	in.Text = string(append(runes[:i], runes[pos:]...))
	in.Caret = i
	return true
}

// DeleteToStart removes everything before the caret.
func (in *Input) DeleteToStart() bool {
	runes := []rune(in.Text)
	pos := in.CaretPos()
	if pos == 0 {
		return false
	}
	in.Text = string(runes[pos:])
	in.Caret = 0
	return true
}

func (in *Input) MoveStart() bool {
	if in.CaretPos() == 0 {
		return false
	}
	in.Caret = 0
	return true
}

func (in *Input) MoveEnd() bool {
	end := len([]rune(in.Text))
	if in.CaretPos() == end {
		return false
	}
	in.Caret = end
	return true
}

func (in *Input) MoveRuneBackward() bool {
	pos := in.CaretPos()
	if pos == 0 {
		return false
	}
	in.Caret = pos - 1
	return true
}

func (in *Input) MoveRuneForward() bool {
	pos := in.CaretPos()
	if pos >= len([]rune(in.Text)) {
		return false
	}
	in.Caret = pos + 1
	return true
}

func (in *Input) MoveWordBackward() bool {
	pos := in.CaretPos()
	i := wordStart([]rune(in.Text), pos)
	if i == pos {
		return false
	}
	in.Caret = i
	return true
}

func (in *Input) MoveWordForward() bool {
	runes := []rune(in.Text)
	pos := in.CaretPos()
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i == pos {
		return false
	}
	in.Caret = i
	return true
}

func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}
