package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alanrodas/gobstones-compiler/pkg/code"
	"github.com/alanrodas/gobstones-compiler/pkg/logging"
	"github.com/alanrodas/gobstones-compiler/pkg/watch"
)

func newWatchCmd() *cobra.Command {
	var symtabPath string

	cmd := &cobra.Command{
		Use:   "watch <ast.json>",
		Short: "Recompile and redisassemble on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log := logging.Default()

			st, closeCatalog, err := openCatalog(symtabPath)
			if err != nil {
				return fmt.Errorf("opening symbol catalog: %w", err)
			}
			defer closeCatalog()

			recompile := func() {
				c, err := compileFileWithCatalog(path, st)
				if err != nil {
					printError(err)
					return
				}
				printInfo(fmt.Sprintf("recompiled: %d instructions", c.Len()))
				code.Disassemble(os.Stdout, c)
			}

			recompile()
			printInfo(fmt.Sprintf("watching %s for changes (ctrl-c to stop)", path))

			stop := make(chan struct{})
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sig
				close(stop)
			}()

			return watch.File(path, stop, recompile, log)
		},
	}

	cmd.Flags().StringVar(&symtabPath, "symtab", "", "path to a SQLite symbol catalog (defaults to an empty in-memory table)")
	return cmd
}
