// Package batch is the batch file-I/O and worker-pool collaborator
// spec.md §5 describes by interface only ("a batch processor may fan
// queries out across a worker pool and collect results in input
// order"). It reads one URL per line, classifies each concurrently
// through a bounded pool, and returns results in the original line
// order regardless of completion order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edgecomet/ruleengine/internal/metrics"
	"github.com/edgecomet/ruleengine/internal/ruleengine"
	"github.com/edgecomet/ruleengine/internal/ruleindex"
	"github.com/edgecomet/ruleengine/internal/urlparse"
)

const (
	resultNoMatch    = "NO_MATCH"
	resultInvalidURL = "INVALID_URL"
)

// Line is one classified URL, in original input order.
type Line struct {
	URL    string
	Result string
}

// ReadURLs reads one URL per line from path, skipping blank lines.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("batch: opening URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("batch: reading URL file: %w", err)
	}
	return urls, nil
}

// Run classifies every URL in urls against engine, fanning the work out
// across a pool bounded to workers concurrent goroutines
// (golang.org/x/sync/errgroup.Group.SetLimit), and returns one Line per
// URL in the same order urls was given in. Each goroutine acquires its
// own *ruleindex.QueryContext from a pool so query state is never shared
// across concurrent evaluations.
func Run(ctx context.Context, engine *ruleengine.Engine, collector *metrics.Collector, urls []string, workers int, logger *zap.Logger) ([]Line, error) {
	runID := uuid.NewString()
	start := time.Now()

	ctxPool := sync.Pool{New: func() any { return engine.NewQueryContext() }}

	results := make([]Line, len(urls))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rawURL := range urls {
		i, rawURL := i, rawURL
		g.Go(func() error {
			qctx := ctxPool.Get().(*ruleindex.QueryContext)
			defer ctxPool.Put(qctx)

			queryStart := time.Now()
			result, outcome := classify(engine, qctx, rawURL)
			if collector != nil {
				collector.RecordQuery(outcome, time.Since(queryStart))
			}

			results[i] = Line{URL: rawURL, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: run %s: %w", runID, err)
	}

	logger.Info("batch run complete",
		zap.String("run_id", runID),
		zap.Int("url_count", len(urls)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

func classify(engine *ruleengine.Engine, qctx *ruleindex.QueryContext, rawURL string) (string, metrics.Outcome) {
	parsed, ok := urlparse.Parse(rawURL)
	if !ok {
		return resultInvalidURL, metrics.OutcomeInvalidURL
	}

	result, matched := engine.Evaluate(qctx, parsed)
	if !matched {
		return resultNoMatch, metrics.OutcomeNoMatch
	}
	return result, metrics.OutcomeMatch
}
