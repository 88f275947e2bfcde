package value

// Exception wraps a Go error implementing the runtime's exception taxonomy
// (internal/rterror) as a first-class Value, so it can sit on the operand
// stack, be bound by a `catch e` clause, and be tested with `isa`. The
// concrete taxonomy types live in internal/rterror, which depends on this
// package (for fields like DomainError's offending value); to avoid an
// import cycle, Value only needs the `error` interface here.
type Exception struct {
	Err error
}

func ExceptionValue(err error) Value {
	return Value{Kind: KindException, Data: Exception{Err: err}}
}

func AsException(v Value) error {
	e, _ := v.Data.(Exception)
	return e.Err
}
