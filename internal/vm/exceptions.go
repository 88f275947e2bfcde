package vm

import (
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/value"
)

// errorFromExceptionValue converts a thrown Value back into a Go error:
// a value.KindException unwraps to the error it carries (so rethrow
// preserves the original type and stack trace so far); anything else
// thrown directly (`throw("boom")`) becomes a generic ErrorException, per
// §7's "any value can be thrown" rule with user code typically throwing
// constructed exception values rather than raw strings.
func errorFromExceptionValue(v value.Value) error {
	if v.Kind == value.KindException {
		return value.AsException(v)
	}
	return &rterror.ErrorException{Message: v.String()}
}

// unwind searches for a handler for exc starting at the current (topmost)
// frame and working outward, stopping once the frame stack would drop
// below baseDepth (the exception is not ours to handle; propagate it to
// our caller). It returns handled=true once it has relocated execution
// into a matching catch body, having trimmed the operand stack and pushed
// the exception value for the catch clause to bind.
func (vm *VM) unwind(exc rterror.Exception, baseDepth int) (bool, error) {
	trace := exc.StackTrace()
	for len(vm.frames) >= baseDepth {
		frame := vm.top()
		trace = append(trace, frame.frameForStackTrace())

		if len(frame.Handlers) > 0 {
			h := frame.Handlers[len(frame.Handlers)-1]
			frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]

			frame.Operands = frame.Operands[:h.stackDepth]
			frame.Push(value.ExceptionValue(exc.WithStackTrace(trace)))
			frame.IP = h.handler.CatchTarget
			return true, nil
		}

		vm.popFrame()
	}
	return false, exc.WithStackTrace(trace)
}
