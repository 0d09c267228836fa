package state

import (
	"testing"

	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/option"
)

func flatView(ids ...string) Displayed {
	list := make([]option.Option, len(ids))
	for i, id := range ids {
		list[i] = testOption(id)
	}
	return Displayed{Flat: list}
}

func groupedView(t *testing.T) Displayed {
	t.Helper()
	view := option.NewCategorized()
	view.Append("A", testOption("a0"), testOption("a1"))
	view.Append("B", testOption("b0"), testOption("b1"))
	return Displayed{Categorized: true, Groups: view}
}

func TestTrackerFlatMoveWraps(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.Reconcile(flatView("a", "b", "c"), "")
	if tr.FocusedID() != "a" {
		t.Fatalf("expected first option focused, got %q", tr.FocusedID())
	}
	tr.Move(focus.Previous)
	if tr.FocusedID() != "c" {
		t.Fatalf("expected wrap to last, got %q", tr.FocusedID())
	}
	tr.Move(focus.Next)
	if tr.FocusedID() != "a" {
		t.Fatalf("expected wrap to first, got %q", tr.FocusedID())
	}
}

func TestTrackerReconcilePreservesOrResets(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.Reconcile(flatView("a", "b", "c"), "")
	tr.FocusID("c")
	tr.Reconcile(flatView("x", "c"), tr.FocusedID())
	if tr.FocusedID() != "c" || tr.Index != 1 {
		t.Fatalf("expected focus preserved on c, got %q/%d", tr.FocusedID(), tr.Index)
	}
	tr.Reconcile(flatView("y", "z"), tr.FocusedID())
	if tr.FocusedID() != "y" {
		t.Fatalf("expected reset to first, got %q", tr.FocusedID())
	}
	tr.Reconcile(flatView(), "y")
	if tr.Index != focus.None {
		t.Fatalf("expected focus cleared on empty list, got %d", tr.Index)
	}
	if _, ok := tr.Focused(); ok {
		t.Fatal("expected nothing focused")
	}
}

func TestTrackerScrollsOnlyWhenOutsideViewport(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.SetViewport(3)
	tr.Reconcile(flatView("a", "b", "c", "d", "e", "f"), "")
	tr.Move(focus.Next)
	tr.Move(focus.Next)
	if tr.Offset != 0 {
		t.Fatalf("expected no scroll inside the viewport, got %d", tr.Offset)
	}
	tr.Move(focus.Next)
	if tr.Offset != 1 {
		t.Fatalf("expected scroll by one row, got %d", tr.Offset)
	}
	tr.Move(focus.Previous)
	if tr.Offset != 1 {
		t.Fatalf("expected offset kept while visible, got %d", tr.Offset)
	}
	if tr.AtBottom() {
		t.Fatal("expected more rows below")
	}
	tr.MoveEnd()
	if tr.Offset != 3 || !tr.AtBottom() {
		t.Fatalf("expected bottom offset 3, got %d", tr.Offset)
	}
}

func TestTrackerPageMoves(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.SetViewport(2)
	tr.Reconcile(flatView("a", "b", "c", "d", "e"), "")
	tr.MovePage(focus.Next)
	if tr.FocusedID() != "c" {
		t.Fatalf("expected c, got %q", tr.FocusedID())
	}
	tr.MovePage(focus.Next)
	tr.MovePage(focus.Next)
	if tr.FocusedID() != "e" {
		t.Fatalf("expected clamp at e, got %q", tr.FocusedID())
	}
	tr.MoveHome()
	if tr.FocusedID() != "a" {
		t.Fatalf("expected home at a, got %q", tr.FocusedID())
	}
}

func TestTrackerCategorizedRows(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.Reconcile(groupedView(t), "")
	if pos := tr.Position(); pos.Category != "A" || pos.Index != 0 {
		t.Fatalf("expected A[0], got %+v", pos)
	}
	if tr.TotalRows() != 6 {
		t.Fatalf("expected 6 rows with headers, got %d", tr.TotalRows())
	}
	if row, _ := tr.Row("b0"); row != 4 {
		t.Fatalf("expected b0 on row 4, got %d", row)
	}
	if id, ok := tr.OptionAtRow(3); ok {
		t.Fatalf("expected header row, got %q", id)
	}
	tr.Move(focus.Next)
	tr.Move(focus.Next)
	if pos := tr.Position(); pos.Category != "B" || pos.Index != 0 {
		t.Fatalf("expected B[0], got %+v", pos)
	}
	tr.MoveEnd()
	tr.Move(focus.Next)
	if pos := tr.Position(); pos.Category != "A" || pos.Index != 0 {
		t.Fatalf("expected wrap to A[0], got %+v", pos)
	}
}

func TestTrackerHover(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.Reconcile(flatView("a", "b"), "")
	if !tr.Hover("b") {
		t.Fatal("expected hover to move focus")
	}
	if tr.Hover("b") {
		t.Fatal("expected hovering the focused option to be a no-op")
	}
	if tr.Hover("missing") {
		t.Fatal("expected unknown id to be ignored")
	}
}

func TestTrackerTargetAfterSelect(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.Reconcile(flatView("a", "b", "c"), "")
	if got := tr.TargetAfterSelect("b", true, true); got != "c" {
		t.Fatalf("expected next option when removed, got %q", got)
	}
	if got := tr.TargetAfterSelect("b", true, false); got != "a" {
		t.Fatalf("expected previous option when kept visible, got %q", got)
	}

	tr.Reconcile(groupedView(t), "")
	if got := tr.TargetAfterSelect("a1", true, true); got != "b0" {
		t.Fatalf("expected b0, got %q", got)
	}
	if got := tr.TargetAfterSelect("missing", true, true); got != "" {
		t.Fatalf("expected no target, got %q", got)
	}
}

func TestTrackerScrollBy(t *testing.T) {
	tr := NewFocusTracker(focus.FallbackOpposite)
	tr.SetViewport(2)
	tr.Reconcile(flatView("a", "b", "c", "d"), "")
	if !tr.ScrollBy(5) || tr.Offset != 2 {
		t.Fatalf("expected offset clamped to 2, got %d", tr.Offset)
	}
	if tr.ScrollBy(1) {
		t.Fatal("expected no scroll past the end")
	}
	tr.Reset()
	if tr.Offset != 0 || tr.FocusedID() != "a" {
		t.Fatalf("expected reset to top, got %d/%q", tr.Offset, tr.FocusedID())
	}
}
