// Command vela is the CLI front end for the core execution engine: run a
// program, inspect its compiled bytecode, or print version information.
package main

import (
	"fmt"
	"os"

	"github.com/vela-lang/vela/cmd/vela/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
