package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken
	ErrQueueFull = errors.New("preview queue full")
	// ErrClosed is returned by Submit after Close
	ErrClosed = errors.New("preview pipeline closed")
)

// DerivedStore records pipeline output against a document
type DerivedStore interface {
	StoreDerived(ctx context.Context, id string, derived *models.DerivedFields) error
}

// Localizer makes a stored file readable from the local filesystem.
// cleanup releases any temporary copy and is never nil on success.
type Localizer interface {
	Localize(ctx context.Context, ref string) (path string, cleanup func(), err error)
}

type job struct {
	documentID string
	ref        string
}

// Pipeline processes files in the background with a bounded number of
// workers. Submit never blocks the caller.
type Pipeline struct {
	processor *Processor
	store     DerivedStore
	files     Localizer // nil = refs are local paths
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// PipelineOptions sizes a Pipeline
type PipelineOptions struct {
	Workers   int
	QueueSize int
}

// NewPipeline starts the workers. They run until Close, using ctx for
// storage calls.
func NewPipeline(ctx context.Context, processor *Processor, store DerivedStore, files Localizer, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	p := &Pipeline{
		processor: processor,
		store:     store,
		files:     files,
		logger:    logger,
		jobs:      make(chan job, opts.QueueSize),
		done:      make(chan struct{}),
	}
	go p.run(ctx, opts.Workers)
	return p
}

// Submit queues a file for processing. A full queue drops the job.
func (p *Pipeline) Submit(documentID, ref string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobs <- job{documentID: documentID, ref: ref}:
		return nil
	default:
		p.logger.Warn("preview job dropped", "document_id", documentID, "file", ref)
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish
func (p *Pipeline) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	<-p.done
}

func (p *Pipeline) run(ctx context.Context, workers int) {
	defer close(p.done)

	var g errgroup.Group
	g.SetLimit(workers)
	for j := range p.jobs {
		g.Go(func() error {
			p.handle(ctx, j)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) handle(ctx context.Context, j job) {
	localPath := j.ref
	if p.files != nil {
		path, cleanup, err := p.files.Localize(ctx, j.ref)
		if err != nil {
			p.logger.Warn("preview source unavailable", "document_id", j.documentID, "file", j.ref, "error", err)
		} else {
			defer cleanup()
			localPath = path
		}
	}

	result := p.processor.process(ctx, localPath, j.ref)

	err := p.store.StoreDerived(ctx, j.documentID, result.DerivedFields())
	switch {
	case err == nil:
		p.logger.Debug("preview stored", "document_id", j.documentID, "preview", result.PreviewPath)
	case errors.Is(err, domain.ErrNotFound):
		// Deleted while the job was queued
		p.logger.Debug("preview discarded", "document_id", j.documentID)
	default:
		p.logger.Error("failed to store preview", "document_id", j.documentID, "error", err)
	}
}
