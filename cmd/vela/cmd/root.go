// Package cmd implements the vela CLI's cobra subcommand tree, the
// teacher's cmd/dwscript/cmd structure (root.go/run.go/version.go) with
// the DWScript-specific parse/lex/fmt subcommands dropped since no
// surface parser is specified beyond internal/asm's stand-in (see
// SPEC_FULL.md FULL-AMBIENT).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vela",
	Short: "Vela core execution engine",
	Long: `vela runs programs against the core execution engine of a
subset runtime for a dynamically-typed, multiple-dispatch numeric
language: a tagged value representation, a type lattice, a multi-dispatch
method table, and a stack-based bytecode interpreter.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
