package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alanrodas/gobstones-compiler/pkg/cache"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
	"github.com/alanrodas/gobstones-compiler/pkg/config"
	"github.com/alanrodas/gobstones-compiler/pkg/diag"
	"github.com/alanrodas/gobstones-compiler/pkg/logging"
	"github.com/alanrodas/gobstones-compiler/pkg/metrics"
	"github.com/alanrodas/gobstones-compiler/pkg/store"
	"github.com/alanrodas/gobstones-compiler/pkg/symtab"
	"github.com/alanrodas/gobstones-compiler/pkg/tracing"
	"github.com/alanrodas/gobstones-compiler/pkg/watch"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var watchPath string
	var symtabPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live diagnostics dashboard and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			log := logging.New(os.Stdout, logging.Info, logging.TextFormat)
			m := metrics.New("gobstones_compiler")
			hub := diag.NewHub()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			provider, err := tracing.Init(ctx, *cfg)
			if err != nil {
				return fmt.Errorf("serve: initializing tracing: %w", err)
			}
			defer provider.Shutdown(ctx)

			var rcache *cache.Cache
			if cfg.Cache.Address != "" {
				ttl, _ := time.ParseDuration(cfg.Cache.TTL)
				rcache = cache.New(cfg.Cache.Address, ttl)
				defer rcache.Close()
				if err := rcache.Ping(ctx); err != nil {
					log.Warn("distributed cache unreachable, continuing without it", map[string]interface{}{"error": err.Error()})
					rcache = nil
				}
			}

			var artifacts *store.ArtifactStore
			if cfg.Store.DSN != "" {
				var err error
				if cfg.Store.Driver == config.StoreMySQL {
					artifacts, err = store.OpenMySQL(cfg.Store.DSN)
				} else {
					artifacts, err = store.OpenPostgres(cfg.Store.DSN)
				}
				if err != nil {
					log.Warn("artifact store unreachable, continuing without it", map[string]interface{}{"error": err.Error()})
					artifacts = nil
				} else {
					defer artifacts.Close()
				}
			}

			var asts *store.ASTStore
			if cfg.ASTStore.URI != "" {
				asts, err = store.NewASTStore(ctx, cfg.ASTStore.URI, cfg.ASTStore.Database)
				if err != nil {
					log.Warn("AST store unreachable, continuing without it", map[string]interface{}{"error": err.Error()})
					asts = nil
				} else {
					defer asts.Close(ctx)
				}
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			mux.HandleFunc("/ws", hub.ServeHTTP)

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			srv := &http.Server{Addr: addr, Handler: mux}

			if watchPath != "" {
				st, closeCatalog, err := openCatalog(symtabPath)
				if err != nil {
					return fmt.Errorf("opening symbol catalog: %w", err)
				}
				defer closeCatalog()

				stop := make(chan struct{})
				go func() {
					watch.File(watchPath, stop, func() {
						recompileAndBroadcast(ctx, watchPath, st, provider, m, hub, log, rcache, artifacts, asts)
					}, log)
				}()
				defer close(stop)
			}

			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				<-sig
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				srv.Shutdown(shutdownCtx)
			}()

			printInfo(fmt.Sprintf("serving dashboard on %s", addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			printSuccess("server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&watchPath, "watch", "", "AST document to recompile on save and broadcast to dashboards")
	cmd.Flags().StringVar(&symtabPath, "symtab", "", "path to a SQLite symbol catalog (defaults to an empty in-memory table)")
	return cmd
}

// recompileAndBroadcast runs one compile of path, consulting the
// distributed cache first and recording the result in the artifact and
// AST stores when they are configured. Any store or cache left nil by
// newServeCmd is skipped.
func recompileAndBroadcast(
	ctx context.Context,
	path string,
	st symtab.SymbolTable,
	provider *tracing.Provider,
	m *metrics.Metrics,
	hub *diag.Hub,
	log *logging.Logger,
	rcache *cache.Cache,
	artifacts *store.ArtifactStore,
	asts *store.ASTStore,
) {
	runID := logging.NewRunID()
	start := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		log.Error("reading source failed", map[string]interface{}{"run_id": runID, "error": err.Error()})
		return
	}
	hash := sourceHash(source)

	if rcache != nil {
		if cached, hit, err := rcache.Get(ctx, hash); err == nil && hit {
			m.ObserveCacheHit()
			hub.Broadcast(diag.Update{RunID: runID, Disassembly: cached, At: time.Now()})
			log.Info("recompiled from cache", map[string]interface{}{"run_id": runID, "hash": hash})
			return
		}
		m.ObserveCacheMiss()
	}

	_, span := provider.StartCompile(ctx, hash)
	c, err := compileFileWithCatalog(path, st)
	tracing.RecordResult(span, instructionCountOrZero(c), err)

	if err != nil {
		m.ObserveCompile("error", time.Since(start).Seconds(), 0)
		hub.Broadcast(diag.Update{RunID: runID, Err: err.Error(), At: time.Now()})
		log.Error("compile failed", map[string]interface{}{"run_id": runID, "error": err.Error()})
		return
	}

	m.ObserveCompile("ok", time.Since(start).Seconds(), c.Len())

	text, derr := disassembleToString(c)
	if derr != nil {
		log.Error("disassembly failed", map[string]interface{}{"run_id": runID, "error": derr.Error()})
		return
	}

	if rcache != nil {
		if err := rcache.Set(ctx, hash, text); err != nil {
			log.Warn("caching result failed", map[string]interface{}{"run_id": runID, "error": err.Error()})
		}
	}
	if artifacts != nil {
		if err := artifacts.Put(ctx, hash, strings.NewReader(text), c.Len()); err != nil {
			log.Warn("recording artifact failed", map[string]interface{}{"run_id": runID, "error": err.Error()})
		}
	}
	if asts != nil {
		doc := store.ASTDocument{Hash: hash, Source: string(source)}
		if err := asts.Put(ctx, doc); err != nil {
			log.Warn("recording AST document failed", map[string]interface{}{"run_id": runID, "error": err.Error()})
		}
	}

	hub.Broadcast(diag.Update{RunID: runID, Disassembly: text, At: time.Now()})
	log.Info("recompiled", map[string]interface{}{"run_id": runID, "instructions": c.Len()})
}

func sourceHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

func instructionCountOrZero(c *code.Code) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

func disassembleToString(c *code.Code) (string, error) {
	var sb strings.Builder
	if err := code.Disassemble(&sb, c); err != nil {
		return "", err
	}
	return sb.String(), nil
}
