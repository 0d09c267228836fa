// Package option holds the option record used by the select widget together
// with the pure list transformations (filter, partition, categorize, sort,
// merge) that derive the displayed option set.
package option

import (
	"fmt"
	"strings"
)

// IDKey addresses the option identifier through Text and Label.
const IDKey = "id"

// Option represents a selectable entry. Fields carries arbitrary metadata
// such as label or category values and is never mutated after construction.
type Option struct {
	ID     string
	Fields map[string]any
}

// New constructs an option, copying the supplied fields.
func New(id string, fields map[string]any) Option {
	dup := make(map[string]any, len(fields))
	for k, v := range fields {
		dup[k] = v
	}
	return Option{ID: id, Fields: dup}
}

// Value returns the raw field stored under key.
func (o Option) Value(key string) (any, bool) {
	if key == IDKey {
		return o.ID, true
	}
	if o.Fields == nil {
		return nil, false
	}
	v, ok := o.Fields[key]
	return v, ok
}

// Text renders the field stored under key as a string.
func (o Option) Text(key string) string {
	v, ok := o.Value(key)
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// Label returns the display label, falling back to the identifier.
func (o Option) Label(labelKey string) string {
	if labelKey != "" {
		if label := strings.TrimSpace(o.Text(labelKey)); label != "" {
			return label
		}
	}
	return o.ID
}

// Clone produces a shallow copy of the provided options.
func Clone(options []Option) []Option {
	dup := make([]Option, len(options))
	copy(dup, options)
	return dup
}

// IDs returns the identifiers of options in order.
func IDs(options []Option) []string {
	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID
	}
	return ids
}

// IndexOf returns the index for a given identifier, or -1.
func IndexOf(options []Option, id string) int {
	for i, o := range options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether an option with id is present.
func Contains(options []Option, id string) bool {
	return IndexOf(options, id) >= 0
}

// Without returns a copy of options minus the entry with id.
func Without(options []Option, id string) []Option {
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

// IDSet indexes identifiers for membership checks.
func IDSet(options []Option) map[string]struct{} {
	set := make(map[string]struct{}, len(options))
	for _, o := range options {
		set[o.ID] = struct{}{}
	}
	return set
}
