package state

import "github.com/atomicstack/popup-select/internal/option"

// State is the canonical selection state record. Values are never mutated in
// place: Reduce returns a fresh pointer for every change so consumers can
// detect updates by comparing pointers.
type State struct {
	Value         []option.Option
	SelectOptions []option.Option
	IsOpen        bool
	InputValue    string
	Page          int
}

// NewState returns the mount-time state seeded with options.
func NewState(options []option.Option) *State {
	return &State{SelectOptions: option.Clone(options), Page: 1}
}

// ActionKind enumerates reducer transitions.
type ActionKind int

const (
	ActionOpen ActionKind = iota
	ActionClose
	ActionToggleVisibility
	ActionSetInput
	ActionClearInput
	ActionSelectValue
	ActionClearValue
	ActionClearAllValues
	ActionSetOptions
	ActionAddOptions
	ActionSetPage
	ActionGoToNextPage
	ActionResetPage
)

var actionNames = map[ActionKind]string{
	ActionOpen:             "open",
	ActionClose:            "close",
	ActionToggleVisibility: "toggle-visibility",
	ActionSetInput:         "set-input",
	ActionClearInput:       "clear-input",
	ActionSelectValue:      "select-value",
	ActionClearValue:       "clear-value",
	ActionClearAllValues:   "clear-all-values",
	ActionSetOptions:       "set-options",
	ActionAddOptions:       "add-options",
	ActionSetPage:          "set-page",
	ActionGoToNextPage:     "next-page",
	ActionResetPage:        "reset-page",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is a reducer input. Only the payload fields relevant to Kind are
// read.
type Action struct {
	Kind    ActionKind
	Text    string
	ID      string
	Options []option.Option
	Page    int
	Multi   bool
}

func Open() Action                { return Action{Kind: ActionOpen} }
func Close() Action               { return Action{Kind: ActionClose} }
func ToggleVisibility() Action    { return Action{Kind: ActionToggleVisibility} }
func SetInput(text string) Action { return Action{Kind: ActionSetInput, Text: text} }
func ClearInput() Action          { return Action{Kind: ActionClearInput} }
func ClearValue(id string) Action { return Action{Kind: ActionClearValue, ID: id} }
func ClearAllValues() Action      { return Action{Kind: ActionClearAllValues} }
func SetPage(page int) Action     { return Action{Kind: ActionSetPage, Page: page} }
func GoToNextPage() Action        { return Action{Kind: ActionGoToNextPage} }
func ResetPage() Action           { return Action{Kind: ActionResetPage} }
func SetOptions(list []option.Option) Action {
	return Action{Kind: ActionSetOptions, Options: list}
}
func AddOptions(list []option.Option) Action {
	return Action{Kind: ActionAddOptions, Options: list}
}

// SelectValue appends o in multi-value mode and replaces the value otherwise.
// Selecting an id already present in multi-value mode is a no-op.
func SelectValue(o option.Option, multi bool) Action {
	return Action{Kind: ActionSelectValue, Options: []option.Option{o}, Multi: multi}
}

// Reduce applies a to s. When the action changes nothing the same pointer is
// returned.
func Reduce(s *State, a Action) *State {
	if s == nil {
		s = NewState(nil)
	}
	next := *s
	switch a.Kind {
	case ActionOpen:
		if s.IsOpen {
			return s
		}
		next.IsOpen = true
	case ActionClose:
		if !s.IsOpen {
			return s
		}
		next.IsOpen = false
	case ActionToggleVisibility:
		next.IsOpen = !s.IsOpen
	case ActionSetInput:
		if s.InputValue == a.Text {
			return s
		}
		next.InputValue = a.Text
	case ActionClearInput:
		if s.InputValue == "" {
			return s
		}
		next.InputValue = ""
	case ActionSelectValue:
		if len(a.Options) == 0 {
			return s
		}
		if a.Multi && option.Contains(s.Value, a.Options[0].ID) {
			return s
		}
		next.Value = applySelect(s.Value, a.Options[0], a.Multi)
	case ActionClearValue:
		if !option.Contains(s.Value, a.ID) {
			return s
		}
		next.Value = option.Without(s.Value, a.ID)
	case ActionClearAllValues:
		if len(s.Value) == 0 {
			return s
		}
		next.Value = nil
	case ActionSetOptions:
		if len(s.SelectOptions) == 0 && len(a.Options) == 0 {
			return s
		}
		next.SelectOptions = option.Clone(a.Options)
	case ActionAddOptions:
		if len(a.Options) == 0 {
			return s
		}
		merged := make([]option.Option, 0, len(s.SelectOptions)+len(a.Options))
		merged = append(merged, s.SelectOptions...)
		next.SelectOptions = append(merged, a.Options...)
	case ActionSetPage:
		page := a.Page
		if page < 1 {
			page = 1
		}
		if s.Page == page {
			return s
		}
		next.Page = page
	case ActionGoToNextPage:
		next.Page = currentPage(s.Page) + 1
	case ActionResetPage:
		if s.Page == 1 {
			return s
		}
		next.Page = 1
	default:
		return s
	}
	return &next
}

// applySelect returns the value after selecting o: appended in multi-value
// mode, replacing the value otherwise.
func applySelect(value []option.Option, o option.Option, multi bool) []option.Option {
	if !multi {
		return []option.Option{o}
	}
	out := make([]option.Option, 0, len(value)+1)
	out = append(out, value...)
	return append(out, o)
}

func currentPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
