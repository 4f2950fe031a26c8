package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ghosh9691/mmelParser/internal/config"
	"github.com/ghosh9691/mmelParser/internal/scanner"
)

var version = "0.1.0"

// env is the configuration shared by every subcommand.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	parser *scanner.Parser
}

func main() {
	var familiesFile string

	rootCmd := &cobra.Command{
		Use:   "mmel",
		Short: "Parse Master Minimum Equipment List documents",
		Long: `mmel reconstructs structured equipment-list entries from MMEL
documents (PDF, DOCX, HTML, Markdown, CSV or plain text).

Example:
  mmel parse a320.pdf --family A320 --format csv --out a320.csv
  mmel batch docs/*.pdf --family B737 --out-dir out/`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&familiesFile, "families-file", "", "YAML family table (overrides MMEL_FAMILIES_FILE)")

	load := func() (*env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if familiesFile != "" {
			cfg.FamiliesFile = familiesFile
		}
		// Quieter, human-readable logs unless the environment asks otherwise.
		if os.Getenv("MMEL_LOG_FORMAT") == "" {
			cfg.LogFormat = "text"
		}
		if os.Getenv("MMEL_LOG_LEVEL") == "" {
			cfg.LogLevel = "warn"
		}
		log := cfg.Logger(os.Stderr)

		registry := scanner.DefaultRegistry()
		if cfg.FamiliesFile != "" {
			registry, err = scanner.LoadRegistry(cfg.FamiliesFile)
			if err != nil {
				return nil, err
			}
		}
		return &env{cfg: cfg, log: log, parser: scanner.New(registry, log)}, nil
	}

	rootCmd.AddCommand(parseCmd(load))
	rootCmd.AddCommand(batchCmd(load))
	rootCmd.AddCommand(familiesCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(summaryCmd(load))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
