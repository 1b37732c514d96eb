// Command mcp serves the synthesis engine over the Model Context Protocol (stdio).
//
// Logs go to a file only: stdout carries the protocol.
package main

import (
	"fmt"
	"os"

	"source-intel-be/internal/config"
	"source-intel-be/internal/mcptools"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/memory"
	"source-intel-be/pkg/synthesis"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer func() { _ = log.Sync() }()

	catalog := synthesis.DefaultCatalog()
	if path := cfg.Synthesis.SourceCatalogPath; path != "" {
		loaded, err := synthesis.LoadCatalog(path)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		catalog = loaded
	}
	registry, err := synthesis.NewRegistry(catalog...)
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}

	opts := cfg.Synthesis.Options()
	engine, err := synthesis.NewEngine(opts, registry, memory.NewSessionRepository(opts.SessionTTL), log)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	log.Info("MCP", "Serving synthesis tools over stdio", map[string]interface{}{"sources": registry.Snapshot().Len()})
	return server.ServeStdio(mcptools.NewServer(engine))
}
