package core

// batch.go loads a set of files into a Session.
//
// Reads and validation run on a bounded group of worker goroutines. Results
// are funneled back to the goroutine that called LoadBatch, which is the only
// one touching the Session, so datasets are added in completion order. One
// file failing never stops its siblings.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultReadConcurrency is how many files of one batch are read at once.
const DefaultReadConcurrency = 4

// BatchOptions bounds the work done for one batch.
type BatchOptions struct {
	MaxFileSize int64 // per-file read limit in bytes
	Concurrency int   // parallel reads
}

// LoadedFile describes one file that became (or replaced) a dataset.
type LoadedFile struct {
	Filename  string `json:"filename"`
	DatasetID int    `json:"dataset_id"`
	Rows      int    `json:"rows"`
	Replaced  bool   `json:"replaced"`
}

// BatchResult is the settled outcome of a batch.
type BatchResult struct {
	ID     uuid.UUID    `json:"id"`
	Loaded []LoadedFile `json:"loaded"`
	Failed []*FileError `json:"-"`
}

// Summary returns the aggregate success/error line shown after a batch.
func (r BatchResult) Summary() string {
	switch {
	case len(r.Failed) == 0:
		return fmt.Sprintf("%d file(s) loaded", len(r.Loaded))
	case len(r.Loaded) == 0:
		return fmt.Sprintf("%d file(s) failed", len(r.Failed))
	}
	return fmt.Sprintf("%d file(s) loaded, %d failed", len(r.Loaded), len(r.Failed))
}

// readOutcome is what a worker hands back for one source.
type readOutcome struct {
	index  int
	name   string
	parsed *ParsedFile
	err    error
}

// LoadBatch reads, validates and adds every source to s, returning once all
// reads have settled. Cancelling ctx stops waiting: files still pending are
// reported as failed with the context error, but reads already started run
// to completion and their results are discarded.
func LoadBatch(ctx context.Context, s *Session, sources []FileSource, opts BatchOptions) BatchResult {
	result := BatchResult{ID: uuid.New()}
	logger := slog.Default().With("batch_id", result.ID.String())

	if len(sources) == 0 {
		return result
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultReadConcurrency
	}

	logger.Info("batch started", "files", len(sources), "concurrency", opts.Concurrency)

	outcomes := make(chan readOutcome, len(sources))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	go func() {
		for i, src := range sources {
			g.Go(func() error {
				outcomes <- readAndParse(i, src, opts.MaxFileSize)
				return nil
			})
		}
		g.Wait()
		close(outcomes)
	}()

	settled := make([]bool, len(sources))
	for {
		select {
		case o, ok := <-outcomes:
			if !ok {
				logger.Info("batch settled",
					"loaded", len(result.Loaded),
					"failed", len(result.Failed),
				)
				return result
			}
			settled[o.index] = true
			if o.err != nil {
				logger.Warn("file rejected", "file", o.name, "error", o.err)
				result.Failed = append(result.Failed, &FileError{Filename: o.name, Err: o.err})
				continue
			}
			ds, replaced := s.Add(o.parsed)
			logger.Debug("file loaded",
				"file", o.name,
				"dataset_id", ds.ID,
				"rows", len(ds.Rows),
				"replaced", replaced,
			)
			result.Loaded = append(result.Loaded, LoadedFile{
				Filename:  o.name,
				DatasetID: ds.ID,
				Rows:      len(ds.Rows),
				Replaced:  replaced,
			})

		case <-ctx.Done():
			for i, done := range settled {
				if !done {
					result.Failed = append(result.Failed, &FileError{Filename: sources[i].Name(), Err: ctx.Err()})
				}
			}
			logger.Warn("batch abandoned", "error", ctx.Err(), "loaded", len(result.Loaded))
			return result
		}
	}
}

func readAndParse(index int, src FileSource, maxBytes int64) readOutcome {
	o := readOutcome{index: index, name: src.Name()}

	content, err := ReadSource(src, maxBytes)
	if err != nil {
		o.err = err
		return o
	}
	o.parsed, o.err = Parse(content, o.name)
	return o
}
