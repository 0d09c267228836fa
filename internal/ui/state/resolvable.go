package state

// Controlled is a host-owned binding for one state slice. A nil Value means
// the slice is read from the internal reducer; a nil Set means writes are
// dispatched to the reducer.
type Controlled[T any] struct {
	Value *T
	Set   func(T)
}

// IsValueControlled reports whether reads come from the host.
func (c Controlled[T]) IsValueControlled() bool { return c.Value != nil }

// IsSetterControlled reports whether writes go to the host.
func (c Controlled[T]) IsSetterControlled() bool { return c.Set != nil }

// Field resolves a state slice to either the host binding or the reducer.
type Field[T any] struct {
	name     string
	host     Controlled[T]
	read     func() T
	dispatch func(T)
}

func newField[T any](name string, host Controlled[T], read func() T, dispatch func(T)) Field[T] {
	return Field[T]{name: name, host: host, read: read, dispatch: dispatch}
}

// Get returns the host value when one is bound, else the internal value.
func (f Field[T]) Get() T {
	if f.host.Value != nil {
		return *f.host.Value
	}
	return f.read()
}

// Set forwards v to the host setter when one is bound, else to the reducer.
func (f Field[T]) Set(v T) {
	if f.host.Set != nil {
		f.host.Set(v)
		return
	}
	if f.dispatch != nil {
		f.dispatch(v)
	}
}

// Name is the slice name used in traces.
func (f Field[T]) Name() string { return f.name }

// Controlled reports whether either side of the field is host owned.
func (f Field[T]) Controlled() bool {
	return f.host.Value != nil || f.host.Set != nil
}
