package sexp

import "fmt"

// Handler consumes the argument list of a tagged value and produces a
// result. Extra leading arguments supplied at dispatch time are prepended
// to the value's own arguments.
type Handler func(args []*Value) (*Value, error)

// DispatchError reports a tagged value whose tag has no registered
// handler, or a value that is not in tagged-tuple shape at all.
type DispatchError struct {
	Value *Value
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("sexp: no dispatch for %s", e.Value)
}

// Dispatcher routes tagged values to handlers by their head symbol.
// Interpreters over open instruction sets build one from a handler table;
// closed variant sets are better served by a plain switch.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher returns a dispatcher over the given handler table. The
// table is not copied; callers must not mutate it afterwards.
func NewDispatcher(handlers map[string]Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Dispatch invokes the handler registered for v's tag, passing extra
// followed by v's own arguments. Returns *DispatchError if v is not a
// tagged tuple or its tag is unregistered.
func (d *Dispatcher) Dispatch(v *Value, extra ...*Value) (*Value, error) {
	tag, args, ok := v.Tagged()
	if !ok {
		return nil, &DispatchError{Value: v}
	}
	handler, ok := d.handlers[tag]
	if !ok {
		return nil, &DispatchError{Value: v}
	}
	if len(extra) > 0 {
		combined := make([]*Value, 0, len(extra)+len(args))
		combined = append(combined, extra...)
		combined = append(combined, args...)
		args = combined
	}
	return handler(args)
}
