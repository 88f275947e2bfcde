package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/pkg/vela"
)

var disasmEvalExpr string

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Compile a program and dump its bytecode",
	Long: `Load a program the same way run does, then print the lowered
Chunk's disassembly (§4.1's opcode stream, one instruction per line)
instead of executing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: disasmProgram,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().StringVarP(&disasmEvalExpr, "eval", "e", "", "disassemble inline code instead of reading from file")
}

func disasmProgram(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(disasmEvalExpr, args)
	if err != nil {
		return err
	}

	e := vela.New()
	prog, err := e.LoadProgram(source)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	fmt.Fprint(os.Stdout, bytecode.Disassemble(prog.Chunk()))
	return nil
}
