package builtins

import (
	"fmt"
	"io"
	"time"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

// RegisterIO wires the output builtins against cfg.Output (the same sink
// the CLI points at stdout) plus the monotonic clock the timing macros
// expand through. The wider filesystem/path surface stays an external
// collaborator (§2); nothing here touches the disk.
func RegisterIO(mt *dispatch.MethodTable, r *typelattice.Registry, cfg *vm.Config) {
	out := func() io.Writer {
		if cfg.Output != nil {
			return cfg.Output
		}
		return io.Discard
	}

	method(mt, "print", []typelattice.ID{r.Any}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		for _, v := range a {
			fmt.Fprint(out(), value.Display(v))
		}
		return value.Nothing(), nil
	})
	method(mt, "println", []typelattice.ID{r.Any}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		for _, v := range a {
			fmt.Fprint(out(), value.Display(v))
		}
		fmt.Fprintln(out())
		return value.Nothing(), nil
	})

	// time_ns backs @time/@elapsed/@timed; wallclock per §5.
	method(mt, "time_ns", nil, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(time.Now().UnixNano()), nil
	})
}
