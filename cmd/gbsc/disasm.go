package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

func newDisasmCmd() *cobra.Command {
	var symtabPath string

	cmd := &cobra.Command{
		Use:   "disasm <ast.json>",
		Short: "Compile and print the disassembly, without validation or timing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeCatalog, err := openCatalog(symtabPath)
			if err != nil {
				return fmt.Errorf("opening symbol catalog: %w", err)
			}
			defer closeCatalog()

			c, err := compileFileWithCatalog(args[0], st)
			if err != nil {
				printError(err)
				return err
			}
			return code.Disassemble(os.Stdout, c)
		},
	}

	cmd.Flags().StringVar(&symtabPath, "symtab", "", "path to a SQLite symbol catalog (defaults to an empty in-memory table)")
	return cmd
}
