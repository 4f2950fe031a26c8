package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ghosh9691/mmelParser/internal/scanner"
	"github.com/ghosh9691/mmelParser/internal/source"
)

// BatchDocument is one input to a batch parse. Lines, when set, are used
// as-is; otherwise Data is extracted according to Name's extension.
type BatchDocument struct {
	Name   string
	Family string
	Lines  []string
	Data   []byte
}

// BatchResult is the outcome for one BatchDocument.
type BatchResult struct {
	Name   string          `json:"name"`
	Result *scanner.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Batch parses many documents concurrently with the same parser.
type Batch struct {
	Parser      *scanner.Parser
	Sources     source.Options
	Concurrency int
	Stats       *ParseStats
	Log         *slog.Logger
}

// Run parses docs with at most Concurrency in flight. Results are in input
// order. A failing document records its error and does not stop the
// others; only cancellation of ctx returns an error.
func (b *Batch) Run(ctx context.Context, docs []BatchDocument) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))
	limit := b.Concurrency
	if limit <= 0 {
		limit = 1
	}
	log := b.Log
	if log == nil {
		log = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.parseOne(doc, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Batch) parseOne(doc BatchDocument, log *slog.Logger) BatchResult {
	out := BatchResult{Name: doc.Name}
	lines := doc.Lines
	if lines == nil {
		var err error
		lines, err = extractLines(doc.Name, doc.Data, b.Sources)
		if err != nil {
			log.Warn("batch extract failed", "name", doc.Name, "error", err)
			out.Error = err.Error()
			b.Stats.RecordFailure()
			return out
		}
	}

	start := time.Now()
	res, err := b.Parser.Parse(lines, doc.Family)
	if err != nil {
		log.Warn("batch parse failed", "name", doc.Name, "error", err)
		out.Error = err.Error()
		b.Stats.RecordFailure()
		return out
	}
	b.Stats.Record(time.Since(start), res.Quality)
	out.Result = res
	return out
}
