package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/pkg/vela"
)

var (
	evalExpr string
	trace    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Vela program and print its final value",
	Long: `Execute a program from a file or inline expression, printing the
last top-level expression's value (§3.3's Interpreter contract).

Examples:
  vela run program.vela
  vela run -e "1 + 2 * 3;"
  vela run --trace program.vela`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&trace, "trace", false, "log every executed instruction to stderr")
}

func runScript(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	opts := []vela.Option{vela.WithOutput(os.Stdout)}
	if trace {
		opts = append(opts, vela.WithTrace(os.Stderr))
	}
	e := vela.New(opts...)

	result, err := e.Eval(source)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if !result.IsNothing() {
		fmt.Println(value.Display(result))
	}
	return nil
}

func readSource(eval string, args []string) (source, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
