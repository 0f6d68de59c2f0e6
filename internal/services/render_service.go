package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"whiteboard/internal/render"
	"whiteboard/internal/shape"
)

/*
LEARNING: RENDER WORKER POOL PATTERN

Rasterising a board is CPU bound and a single PNG export of a busy board can
take tens of milliseconds. The HTTP handler never renders inline; it submits
a job and waits for the reply:

1. **Bounded queue**: a buffered channel caps the pending exports
2. **Fixed workers**: each owns no state between jobs; a fresh Canvas per job
3. **Reply channel**: every job carries its own result channel (size 1) so
   a worker never blocks on a caller that gave up
4. **Graceful Shutdown**: close the queue, cancel the context, wait

A caller whose context ends before the worker picks the job up gets
ctx.Err(); the worker notices the cancelled job context and skips it.
*/

// ErrRenderQueueClosed is returned by Render after Shutdown.
var ErrRenderQueueClosed = errors.New("render queue is closed")

// RenderJob is one snapshot waiting to be rasterised.
type RenderJob struct {
	Shapes shape.List
	ctx    context.Context
	reply  chan renderResult
}

type renderResult struct {
	png []byte
	err error
}

// RenderOptions sizes the snapshot canvas.
type RenderOptions struct {
	Width      int
	Height     int
	Background string
}

// RenderService turns shape lists into PNG images with a worker pool.
type RenderService struct {
	opts RenderOptions

	jobs    chan RenderJob
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewRenderService creates the pool. It does not start the workers.
func NewRenderService(opts RenderOptions, numWorkers, queueSize int) *RenderService {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RenderService{
		opts:    opts,
		jobs:    make(chan RenderJob, queueSize),
		workers: numWorkers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start spawns the workers.
func (s *RenderService) Start() {
	log.Printf("🔧 Starting render worker pool with %d workers", s.workers)
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	log.Println("✓ Render worker pool started")
}

func (s *RenderService) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			if err := job.ctx.Err(); err != nil {
				job.reply <- renderResult{err: err}
				continue
			}
			png, err := s.rasterise(job.Shapes)
			if err != nil {
				log.Printf("  Render worker %d error: %v", id, err)
			}
			job.reply <- renderResult{png: png, err: err}
		}
	}
}

// Render queues list and waits for the PNG bytes. It blocks while the queue
// is full.
func (s *RenderService) Render(ctx context.Context, list shape.List) ([]byte, error) {
	job := RenderJob{Shapes: list.Clone(), ctx: ctx, reply: make(chan renderResult, 1)}
	if err := s.submit(ctx, job); err != nil {
		return nil, err
	}

	select {
	case res := <-job.reply:
		return res.png, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		return nil, ErrRenderQueueClosed
	}
}

func (s *RenderService) submit(ctx context.Context, job RenderJob) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrRenderQueueClosed
	}
	select {
	case s.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrRenderQueueClosed
	}
}

func (s *RenderService) rasterise(list shape.List) ([]byte, error) {
	canvas, err := render.NewCanvas(s.opts.Width, s.opts.Height, s.opts.Background)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}
	defer canvas.Close()

	render.Repaint(canvas, list)

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Shutdown stops accepting jobs and waits for the workers.
func (s *RenderService) Shutdown() {
	// Cancel first so a submit blocked on a full queue lets go of the lock.
	s.cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	log.Println("🛑 Shutting down render service...")
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("✓ Render service shutdown complete")
}

// GetQueueLength returns the number of pending jobs.
func (s *RenderService) GetQueueLength() int {
	return len(s.jobs)
}
