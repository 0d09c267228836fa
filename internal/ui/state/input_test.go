package state

import "testing"

func TestInputInsertAndDelete(t *testing.T) {
	var in Input
	if !in.Insert("ab") {
		t.Fatal("expected insert to succeed")
	}
	if in.Text != "ab" || in.Caret != 2 {
		t.Fatalf("unexpected input state %q/%d", in.Text, in.Caret)
	}
	in.Caret = 1
	in.Insert("z")
	if in.Text != "azb" || in.Caret != 2 {
		t.Fatalf("expected insert into middle, got %q/%d", in.Text, in.Caret)
	}
	if !in.DeleteRuneBackward() || in.Text != "ab" || in.Caret != 1 {
		t.Fatalf("unexpected state after backspace %q/%d", in.Text, in.Caret)
	}
	if !in.DeleteRuneForward() || in.Text != "a" {
		t.Fatalf("unexpected state after delete %q", in.Text)
	}
	in.Caret = 0
	if in.DeleteRuneBackward() {
		t.Fatal("expected backspace at start to fail")
	}
	if in.Insert("") {
		t.Fatal("expected empty insert to fail")
	}
}

func TestInputWordEditing(t *testing.T) {
	in := NewInput("alpha beta  gamma")
	if !in.DeleteWordBackward() || in.Text != "alpha beta  " {
		t.Fatalf("unexpected text after word delete %q", in.Text)
	}
	if !in.DeleteWordBackward() || in.Text != "alpha " {
		t.Fatalf("expected whitespace and word removed, got %q", in.Text)
	}
	in = NewInput("one two three")
	in.MoveStart()
	if !in.MoveWordForward() || in.Caret != 4 {
		t.Fatalf("expected caret at 4, got %d", in.Caret)
	}
	in.MoveEnd()
	if !in.MoveWordBackward() || in.Caret != 8 {
		t.Fatalf("expected caret at 8, got %d", in.Caret)
	}
	if !in.DeleteToStart() || in.Text != "three" || in.Caret != 0 {
		t.Fatalf("unexpected state %q/%d", in.Text, in.Caret)
	}
}

func TestInputRuneMovesAndSync(t *testing.T) {
	in := NewInput("héllo")
	if in.Caret != 5 {
		t.Fatalf("expected caret counted in runes, got %d", in.Caret)
	}
	if in.MoveRuneForward() {
		t.Fatal("expected move past end to fail")
	}
	in.MoveRuneBackward()
	in.MoveRuneBackward()
	if in.Caret != 3 {
		t.Fatalf("expected caret 3, got %d", in.Caret)
	}
	in.Sync("")
	if in.Text != "" || in.CaretPos() != 0 {
		t.Fatalf("expected caret clamped after sync, got %q/%d", in.Text, in.CaretPos())
	}
}
