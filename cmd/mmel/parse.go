package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghosh9691/mmelParser/internal/config"
	"github.com/ghosh9691/mmelParser/internal/export"
	"github.com/ghosh9691/mmelParser/internal/mmel"
	"github.com/ghosh9691/mmelParser/internal/pipeline"
	"github.com/ghosh9691/mmelParser/internal/source"
	"github.com/ghosh9691/mmelParser/internal/store"
)

type loader func() (*env, error)

func parseCmd(load loader) *cobra.Command {
	var (
		family string
		out    string
		format string
		save   bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse one document and write its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			lines, err := readLines(path, data, e.cfg)
			if err != nil {
				return err
			}
			res, err := e.parser.Parse(lines, family)
			if err != nil {
				return err
			}

			if err := writeEntries(out, f, res.Entries, cmd.OutOrStdout()); err != nil {
				return err
			}
			q := res.Quality
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d entries (%s dialect), %d without category, %d without title, %d without quantities\n",
				filepath.Base(path), q.Entries, res.Dialect, q.MissingCategory, q.MissingTitle, q.MissingQuantity)

			if !save {
				return nil
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, e)
			if err != nil {
				return err
			}
			defer st.Close()

			hash := pipeline.DocumentHash(family, lines)
			if !force {
				existing, err := st.FindByHash(ctx, hash)
				if err == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "already stored as %s (use --force to store again)\n", existing.ID)
					return nil
				}
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}
			doc := &store.Document{
				Family:      res.Family,
				Dialect:     res.Dialect,
				Filename:    filepath.Base(path),
				ContentHash: hash,
				Quality:     store.QualityJSON(res.Quality),
			}
			if err := st.SaveDocument(ctx, doc, res.Entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "stored document %s\n", doc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "document family, e.g. A320 (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, csv or xlsx")
	cmd.Flags().BoolVar(&save, "save", false, "store the parsed document in MMEL_DATABASE_URL")
	cmd.Flags().BoolVar(&force, "force", false, "store even if an identical document is already stored")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

func batchCmd(load loader) *cobra.Command {
	var (
		family      string
		outDir      string
		format      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Parse many documents in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			if concurrency <= 0 {
				concurrency = e.cfg.BatchConcurrency
			}

			docs := make([]pipeline.BatchDocument, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				docs = append(docs, pipeline.BatchDocument{Name: path, Family: family, Data: data})
			}

			b := &pipeline.Batch{
				Parser:      e.parser,
				Sources:     source.Options{FallbackPdftotext: e.cfg.PDFFallbackPdftotext},
				Concurrency: concurrency,
				Stats:       pipeline.NewParseStats(e.cfg.StatsWindow),
				Log:         e.log,
			}
			results, err := b.Run(cmd.Context(), docs)
			if err != nil {
				return err
			}

			failed := 0
			w := cmd.OutOrStdout()
			for _, r := range results {
				if r.Error != "" {
					failed++
					fmt.Fprintf(w, "FAIL  %s: %s\n", r.Name, r.Error)
					continue
				}
				base := strings.TrimSuffix(filepath.Base(r.Name), filepath.Ext(r.Name))
				target := filepath.Join(outDir, base+"."+string(f))
				if err := writeEntries(target, f, r.Result.Entries, w); err != nil {
					return err
				}
				fmt.Fprintf(w, "OK    %s: %d entries -> %s\n", r.Name, len(r.Result.Entries), target)
			}

			snap := b.Stats.Snapshot()
			fmt.Fprintf(w, "\n%d documents, %d failed, %d entries, p95 %.0fms\n",
				len(results), failed, snap.Quality.Entries, snap.P95Ms)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "document family for every file (required)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for per-document output")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, csv or xlsx")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "documents parsed at once (default MMEL_BATCH_CONCURRENCY)")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

func readLines(path string, data []byte, cfg config.Config) ([]string, error) {
	src, err := source.ForFile(path, source.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	lines, err := src.Lines(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return lines, nil
}

// writeEntries writes to path, or to stdout when path is empty.
func writeEntries(path string, f export.Format, entries []mmel.Entry, stdout io.Writer) error {
	if path == "" {
		return export.Write(stdout, f, entries)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(file, f, entries); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func openStore(ctx context.Context, e *env) (*store.Store, error) {
	st, err := store.Open(ctx, e.cfg.DatabaseURL, e.log)
	if err != nil {
		return nil, err
	}
	if err := st.MigrateUp(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
