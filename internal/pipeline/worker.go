package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ghosh9691/mmelParser/internal/mmel"
	"github.com/ghosh9691/mmelParser/internal/scanner"
	"github.com/ghosh9691/mmelParser/internal/source"
	"github.com/ghosh9691/mmelParser/internal/store"
)

// DocumentStore persists parsed documents. *store.Store implements it.
type DocumentStore interface {
	FindByHash(ctx context.Context, hash string) (*store.Document, error)
	SaveDocument(ctx context.Context, doc *store.Document, entries []mmel.Entry) error
}

// Worker processes a single document job.
type Worker struct {
	parser  *scanner.Parser
	store   DocumentStore
	stats   *ParseStats
	sources source.Options
	log     *slog.Logger
}

// NewWorker returns a worker. A nil store parses without persisting.
func NewWorker(parser *scanner.Parser, st DocumentStore, stats *ParseStats, sources source.Options, log *slog.Logger) *Worker {
	return &Worker{
		parser:  parser,
		store:   st,
		stats:   stats,
		sources: sources,
		log:     log,
	}
}

// Process runs the full parse pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "family", job.Family)
	defer job.releaseFileData()

	// Phase 1: Extract lines
	job.SetStatus(StatusExtracting, "extracting")
	lines, err := extractLines(job.Filename, job.FileData(), w.sources)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		w.stats.RecordFailure()
		return
	}
	job.SetLines(len(lines))
	job.SetContentHash(DocumentHash(job.Family, lines))

	// Phase 1.5: Dedup check
	if !job.Force && w.store != nil {
		existing, err := w.store.FindByHash(ctx, job.ContentHash)
		switch {
		case err == nil:
			log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
			job.SetDocID(existing.ID)
			job.SetResult(existing.Dialect, existing.EntryCount, mmel.Quality(existing.Quality))
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	start := time.Now()
	res, err := w.parser.Parse(lines, job.Family)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		w.stats.RecordFailure()
		return
	}
	w.stats.Record(time.Since(start), res.Quality)
	job.SetResult(res.Dialect, len(res.Entries), res.Quality)

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	doc := &store.Document{
		ID:          job.DocID,
		Family:      res.Family,
		Dialect:     res.Dialect,
		Filename:    job.Filename,
		ContentHash: job.ContentHash,
		Quality:     store.QualityJSON(res.Quality),
	}
	err = withRetry(ctx, log, "save document", func() error {
		return w.store.SaveDocument(ctx, doc, res.Entries)
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	log.Info("document stored", "entries", len(res.Entries), "dialect", res.Dialect)
	job.SetStatus(StatusCompleted, "done")
}

// extractLines reads the line sequence of one uploaded file.
func extractLines(filename string, data []byte, opts source.Options) ([]string, error) {
	src, err := source.ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	lines, err := src.Lines(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return lines, nil
}

// DocumentHash identifies a document by its family and extracted text, so
// the same file reparsed under another family is not a duplicate.
func DocumentHash(family string, lines []string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(family)))
	for _, l := range lines {
		b.WriteByte('\n')
		b.WriteString(l)
	}
	return ContentHashHex([]byte(b.String()))
}
