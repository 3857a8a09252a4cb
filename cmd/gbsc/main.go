// Command gbsc is the CLI front end for the Gobstones bytecode compiler:
// compile an AST document to Code, disassemble it, recompile on save, or
// run the live diagnostics dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gbsc",
		Short: "Gobstones bytecode compiler",
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
