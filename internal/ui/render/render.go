// Package render assembles the props handed to each visual slot of the
// widget and resolves which renderer draws it: the default or a host
// replacement registered for that slot.
package render

import (
	"github.com/atomicstack/popup-select/internal/option"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Slot names a replaceable part of the widget.
type Slot string

const (
	SlotOption            Slot = "option"
	SlotSingleValue       Slot = "single-value"
	SlotMultiValue        Slot = "multi-value"
	SlotInput             Slot = "input"
	SlotDropdownIndicator Slot = "dropdown-indicator"
	SlotClearIndicator    Slot = "clear-indicator"
	SlotList              Slot = "list"
	SlotCategoryHeader    Slot = "category-header"
)

// Slots lists every slot in render order.
var Slots = []Slot{
	SlotInput,
	SlotSingleValue,
	SlotMultiValue,
	SlotClearIndicator,
	SlotDropdownIndicator,
	SlotList,
	SlotCategoryHeader,
	SlotOption,
}

// InnerProps is the minimal binding a replacement renderer must keep so the
// widget can route interaction back to the slot.
type InnerProps struct {
	Key        string
	Style      *lipgloss.Style
	Ref        int
	Data       map[string]string
	OnActivate func() tea.Cmd
}

type OptionProps struct {
	Option   option.Option
	Label    string
	Query    string
	Category string
	Focused  bool
	Selected bool
	Disabled bool
	Multi    bool
	Width    int
	Inner    InnerProps
}

type SingleValueProps struct {
	Option option.Option
	Label  string
	Width  int
	Inner  InnerProps
}

type MultiValueProps struct {
	Option option.Option
	Label  string
	Index  int
	Inner  InnerProps
}

type InputProps struct {
	Text        string
	Caret       int
	CaretView   string
	Placeholder string
	Prompt      string
	Active      bool
	Width       int
	Inner       InnerProps
}

type DropdownIndicatorProps struct {
	IsOpen  bool
	Loading bool
	Inner   InnerProps
}

type ClearIndicatorProps struct {
	HasValue bool
	Inner    InnerProps
}

// ListProps describes the visible window of rendered rows.
type ListProps struct {
	Rows    []string
	Empty   string
	Loading bool
	Width   int
	Height  int
	Offset  int
	Total   int
	Inner   InnerProps
}

type CategoryHeaderProps struct {
	Category string
	Count    int
	Width    int
	Inner    InnerProps
}

type OptionRenderer interface {
	RenderOption(OptionProps) string
}

type SingleValueRenderer interface {
	RenderSingleValue(SingleValueProps) string
}

type MultiValueRenderer interface {
	RenderMultiValue(MultiValueProps) string
}

type InputRenderer interface {
	RenderInput(InputProps) string
}

type DropdownIndicatorRenderer interface {
	RenderDropdownIndicator(DropdownIndicatorProps) string
}

type ClearIndicatorRenderer interface {
	RenderClearIndicator(ClearIndicatorProps) string
}

type ListRenderer interface {
	RenderList(ListProps) string
}

type CategoryHeaderRenderer interface {
	RenderCategoryHeader(CategoryHeaderProps) string
}

// Function adapters so hosts can register plain functions.
type (
	OptionFunc            func(OptionProps) string
	SingleValueFunc       func(SingleValueProps) string
	MultiValueFunc        func(MultiValueProps) string
	InputFunc             func(InputProps) string
	DropdownIndicatorFunc func(DropdownIndicatorProps) string
	ClearIndicatorFunc    func(ClearIndicatorProps) string
	ListFunc              func(ListProps) string
	CategoryHeaderFunc    func(CategoryHeaderProps) string
)

func (f OptionFunc) RenderOption(p OptionProps) string {
	return f(p)
}

func (f SingleValueFunc) RenderSingleValue(p SingleValueProps) string {
	return f(p)
}

func (f MultiValueFunc) RenderMultiValue(p MultiValueProps) string {
	return f(p)
}

func (f InputFunc) RenderInput(p InputProps) string {
	return f(p)
}

func (f DropdownIndicatorFunc) RenderDropdownIndicator(p DropdownIndicatorProps) string {
	return f(p)
}

func (f ClearIndicatorFunc) RenderClearIndicator(p ClearIndicatorProps) string {
	return f(p)
}

func (f ListFunc) RenderList(p ListProps) string {
	return f(p)
}

func (f CategoryHeaderFunc) RenderCategoryHeader(p CategoryHeaderProps) string {
	return f(p)
}

// Registry maps each slot to its renderer. Hosts install a replacement by
// setting the slot's field; a nil field means the default is used.
type Registry struct {
	Option            OptionRenderer
	SingleValue       SingleValueRenderer
	MultiValue        MultiValueRenderer
	Input             InputRenderer
	DropdownIndicator DropdownIndicatorRenderer
	ClearIndicator    ClearIndicatorRenderer
	List              ListRenderer
	CategoryHeader    CategoryHeaderRenderer
}

// Registered reports the slots with a renderer installed.
func (reg *Registry) Registered() []Slot {
	var out []Slot
	for _, slot := range Slots {
		if reg.has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

func (reg *Registry) has(slot Slot) bool {
	switch slot {
	case SlotOption:
		return reg.Option != nil
	case SlotSingleValue:
		return reg.SingleValue != nil
	case SlotMultiValue:
		return reg.MultiValue != nil
	case SlotInput:
		return reg.Input != nil
	case SlotDropdownIndicator:
		return reg.DropdownIndicator != nil
	case SlotClearIndicator:
		return reg.ClearIndicator != nil
	case SlotList:
		return reg.List != nil
	case SlotCategoryHeader:
		return reg.CategoryHeader != nil
	}
	return false
}

// Resolve returns base with every slot registered in custom replaced.
func Resolve(base Registry, custom *Registry) Registry {
	if custom == nil {
		return base
	}
	out := base
	if custom.Option != nil {
		out.Option = custom.Option
	}
	if custom.SingleValue != nil {
		out.SingleValue = custom.SingleValue
	}
	if custom.MultiValue != nil {
		out.MultiValue = custom.MultiValue
	}
	if custom.Input != nil {
		out.Input = custom.Input
	}
	if custom.DropdownIndicator != nil {
		out.DropdownIndicator = custom.DropdownIndicator
	}
	if custom.ClearIndicator != nil {
		out.ClearIndicator = custom.ClearIndicator
	}
	if custom.List != nil {
		out.List = custom.List
	}
	if custom.CategoryHeader != nil {
		out.CategoryHeader = custom.CategoryHeader
	}
	return out
}
