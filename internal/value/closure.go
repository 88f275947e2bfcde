package value

// Callable is implemented by internal/vm's closure type. Value stores it
// as an interface rather than a concrete struct so that this package,
// which internal/bytecode and internal/vm both depend on, never needs to
// import either of them back.
type Callable interface {
	Call(args []Value) (Value, error)
}

func ClosureValue(c Callable) Value { return Value{Kind: KindClosure, Data: c} }

func AsCallable(v Value) Callable { c, _ := v.Data.(Callable); return c }
