package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

func newCompileCmd() *cobra.Command {
	var outPath string
	var symtabPath string

	cmd := &cobra.Command{
		Use:   "compile <ast.json>",
		Short: "Compile an AST document to a disassembly listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo(fmt.Sprintf("Compiling %s", args[0]))
			start := time.Now()

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
			if err := c.Validate(); err != nil {
				printError(err)
				return err
			}

			elapsed := time.Since(start)

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			if err := code.Disassemble(out, c); err != nil {
				return err
			}

			printSuccess(fmt.Sprintf("%d instructions emitted", c.Len()))
			printDuration(elapsed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write disassembly to this file instead of stdout")
	cmd.Flags().StringVar(&symtabPath, "symtab", "", "path to a SQLite symbol catalog (defaults to an empty in-memory table)")
	return cmd
}
