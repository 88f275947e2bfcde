package vm

import "github.com/vela-lang/vela/internal/value"

// execMakeRange builds a `lo:hi` Range from the two operands a RangeExpr
// compiles to, lo pushed first.
func (vm *VM) execMakeRange(frame *Frame) error {
	hi := frame.Pop()
	lo := frame.Pop()
	frame.Push(value.RangeValue(value.AsInt64(lo), value.AsInt64(hi)))
	return nil
}

// execIterInit replaces whatever's being looped over with a fresh Iterator
// over it, the first step of both a `for` statement and a generator
// comprehension.
func (vm *VM) execIterInit(frame *Frame) error {
	v := frame.Pop()
	frame.Push(value.IteratorValue(value.NewIterator(v)))
	return nil
}

// execIterNext pops an Iterator and, if it still has elements, pushes the
// next element followed by `true`; at exhaustion it pushes just `false`, so
// the compiled loop's OpJumpIfFalse can test the top of stack directly and
// the element (when present) is left for the loop body to store.
func (vm *VM) execIterNext(frame *Frame) error {
	it := value.AsIterator(frame.Pop())
	v, ok := it.Next()
	if !ok {
		frame.Push(value.Bool(false))
		return nil
	}
	frame.Push(v)
	frame.Push(value.Bool(true))
	return nil
}

// execGenNew pushes a fresh empty Generator, the accumulator a comprehension
// appends into as its body runs.
func (vm *VM) execGenNew(frame *Frame) error {
	frame.Push(value.GeneratorValue(value.NewGenerator()))
	return nil
}

// execGenAppend pops a body value then a Generator, appends in place, and
// pushes the Generator back (its accumulator is a pointer, so the append is
// already visible through the local slot holding it; the push-back just
// keeps this opcode's stack effect symmetric with the others).
func (vm *VM) execGenAppend(frame *Frame) error {
	v := frame.Pop()
	g := value.AsGenerator(frame.Pop())
	g.Append(v)
	frame.Push(value.GeneratorValue(g))
	return nil
}
