package vm

import (
	"io"
	"math/big"
)

// Config holds process-wide VM settings that the spec's ambient stack
// names but that have no per-call surface of their own: BigFloat's default
// precision/rounding (read by the `setprecision`/`setrounding` builtins)
// and the module search paths an embedder configures before loading a
// program. DEPOT_PATH/LOAD_PATH have no filesystem-resolution behavior
// wired up yet (internal/asm's loader only ever reads the single source
// string pkg/vela.LoadProgram is given) — they're carried here so that
// embedders and builtins have a single place to read them from once a
// multi-file loader exists.
type Config struct {
	BigFloatPrecision uint
	BigFloatRounding  big.RoundingMode

	DepotPath []string
	LoadPath  []string

	// Output receives program output (`print`, `println`, `@info`); nil
	// means discard, the CLI wires os.Stdout.
	Output io.Writer

	// Trace, if non-nil, receives one disassembled line per executed
	// instruction (the `--trace` CLI flag's sink).
	Trace io.Writer
}

// DefaultConfig matches math/big's own zero-value defaults (precision 0
// means "infer from the first operand", ToNearestEven rounding) so that a
// freshly constructed VM behaves like plain math/big until an embedder
// calls setprecision/setrounding.
func DefaultConfig() *Config {
	return &Config{
		BigFloatPrecision: 0,
		BigFloatRounding:  big.ToNearestEven,
	}
}
