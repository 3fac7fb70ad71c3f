package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AndrewPopesku/aive/internal/template"
	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Mode selects how Run processes the queue.
type Mode string

const (
	ModeSequential     Mode = "sequential"
	ModeParallelThread Mode = "parallel_thread"

	// ModeParallelProcess is accepted as an alias of ModeParallelThread.
	// Workers already run CPU-parallel on OS threads, so a separate process
	// pool buys nothing; the alias is logged, never silently remapped.
	ModeParallelProcess Mode = "parallel_process"
)

// ParseMode validates a mode string from configuration or the API.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeParallelThread, ModeParallelProcess:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unsupported queue mode %q", s)
}

var (
	// ErrQueueRunning is returned by Run when a run is already in progress.
	ErrQueueRunning = errors.New("queue is already running")
	// ErrNoRenderer is returned when a submission names no renderer and the
	// queue has no default.
	ErrNoRenderer = errors.New("no renderer provided and no default renderer set")
)

// Journal receives every accepted job and every state transition, typically
// backed by the sqlite store. Journal errors are logged, never fatal.
type Journal interface {
	RecordJob(snap Snapshot) error
}

// ProgressFunc is invoked outside the queue lock when a job starts, completes
// or fails.
type ProgressFunc func(Snapshot)

// QueueConfig wires a queue's collaborators. Every field is optional except
// that jobs without a renderer need DefaultRenderer set.
type QueueConfig struct {
	DefaultRenderer Renderer
	Progress        ProgressFunc
	Journal         Journal
	Logger          *slog.Logger
}

// Queue holds render jobs in submission order and processes them on demand.
// All methods are safe for concurrent use.
type Queue struct {
	cfg QueueConfig

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    map[string]*Job
	order   []string // submission order
	running bool
	stopped bool
}

func NewQueue(cfg QueueConfig) *Queue {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	q := &Queue{
		cfg:  cfg,
		jobs: make(map[string]*Job),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Submission describes a job to enqueue.
type Submission struct {
	Timeline   *timeline.Timeline
	OutputPath string
	Renderer   Renderer // nil uses the queue default
	Options    Options  // zero value uses DefaultOptions
	JobID      string   // empty generates a UUID
	Metadata   map[string]any
}

// Add enqueues a render job and returns its id. The renderer and options are
// validated here so a bad submission never sits in the queue. Caller-supplied
// ids must be unique.
func (q *Queue) Add(sub Submission) (string, error) {
	renderer := sub.Renderer
	if renderer == nil {
		renderer = q.cfg.DefaultRenderer
	}
	if renderer == nil {
		return "", ErrNoRenderer
	}
	if sub.Options == (Options{}) {
		sub.Options = DefaultOptions()
	}
	if err := sub.Options.Validate(); err != nil {
		return "", err
	}

	id := sub.JobID
	if id == "" {
		id = uuid.NewString()
	}

	var meta map[string]any
	if len(sub.Metadata) > 0 {
		meta = make(map[string]any, len(sub.Metadata))
		for k, v := range sub.Metadata {
			meta[k] = v
		}
	}

	job := &Job{
		ID:         id,
		Timeline:   sub.Timeline,
		OutputPath: sub.OutputPath,
		Renderer:   renderer,
		Options:    sub.Options,
		Metadata:   meta,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	q.mu.Lock()
	if _, dup := q.jobs[id]; dup {
		q.mu.Unlock()
		return "", fmt.Errorf("job id %q already exists", id)
	}
	q.jobs[id] = job
	q.order = append(q.order, id)
	snap := job.snapshot()
	q.mu.Unlock()

	q.cfg.Logger.Info("job queued", "job_id", id, "output", sub.OutputPath)
	q.record(snap)
	return id, nil
}

// AddTemplate fills the template and enqueues the resulting timeline. Fill
// validation errors propagate and nothing is queued. The template name and
// fill data are stamped into the job metadata.
func (q *Queue) AddTemplate(tmpl *template.VideoTemplate, data map[string]any, sub Submission) (string, error) {
	tl, err := tmpl.Fill(data)
	if err != nil {
		return "", err
	}

	meta := make(map[string]any, len(sub.Metadata)+2)
	for k, v := range sub.Metadata {
		meta[k] = v
	}
	meta["template_name"] = tmpl.Info.Name
	meta["template_data"] = data

	sub.Timeline = tl
	sub.Metadata = meta
	return q.Add(sub)
}

// Remove deletes a job, reporting whether it existed. A running job is
// cancelled cooperatively first; its worker's eventual outcome is discarded.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return false
	}

	var cancel context.CancelFunc
	if job.Status == StatusRunning {
		job.Status = StatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		cancel = job.cancel
		job.cancel = nil
	}
	delete(q.jobs, id)
	for i, jid := range q.order {
		if jid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	snap := job.snapshot()
	q.cond.Broadcast()
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	q.cfg.Logger.Info("job removed", "job_id", id, "status", snap.Status)
	q.record(snap)
	return true
}

// ClearCompleted removes every terminal job and returns how many were
// dropped. Pending and running jobs are untouched.
func (q *Queue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.order[:0]
	removed := 0
	for _, id := range q.order {
		job, ok := q.jobs[id]
		if !ok {
			continue
		}
		if job.Status.Terminal() {
			delete(q.jobs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	q.order = kept
	return removed
}

// Get returns a snapshot of the job with the given id.
func (q *Queue) Get(id string) (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return job.snapshot(), true
}

// List returns job snapshots in submission order, optionally filtered by
// status ("" means all).
func (q *Queue) List(status Status) []Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Snapshot, 0, len(q.order))
	for _, id := range q.order {
		job, ok := q.jobs[id]
		if !ok {
			continue
		}
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, job.snapshot())
	}
	return out
}

// Len returns the number of jobs currently held, in any state.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Stats summarizes the queue, including the average duration of completed
// jobs.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Stats{TotalJobs: len(q.jobs), QueueRunning: q.running}
	var total float64
	var counted int
	for _, job := range q.jobs {
		switch job.Status {
		case StatusPending:
			s.Pending++
		case StatusRunning:
			s.Running++
		case StatusCompleted:
			s.Completed++
			if d := job.duration(); d != nil {
				total += *d
				counted++
			}
		case StatusFailed:
			s.Failed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	if counted > 0 {
		avg := total / float64(counted)
		s.AvgDuration = &avg
	}
	return s
}

// Run processes pending jobs until none remain, Stop is called, or ctx is
// cancelled. Only one run may be active at a time. Jobs added mid-run are
// picked up as long as the dispatch loop is still going.
func (q *Queue) Run(ctx context.Context, mode Mode, workers int) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return ErrQueueRunning
	}
	q.running = true
	q.stopped = false
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.running = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}()

	switch mode {
	case ModeSequential:
		q.runSequential(ctx)
	case ModeParallelThread:
		q.runParallel(ctx, workers)
	case ModeParallelProcess:
		q.cfg.Logger.Info("process-parallel mode runs on the shared worker pool", "workers", workers)
		q.runParallel(ctx, workers)
	default:
		return fmt.Errorf("unsupported queue mode %q", mode)
	}
	return nil
}

// Stop halts dispatch of further jobs. In-flight renders finish naturally;
// use Remove to cancel a specific running job.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
	q.cfg.Logger.Info("queue stop requested")
}

// WaitForCompletion blocks until no job is pending or running, the queue is
// no longer processing, or the timeout elapses. A non-positive timeout waits
// indefinitely. Returns false only on timeout.
func (q *Queue) WaitForCompletion(timeout time.Duration) bool {
	timedOut := false
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			q.mu.Lock()
			timedOut = true
			q.mu.Unlock()
			q.cond.Broadcast()
		})
		defer timer.Stop()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.activeLocked() == 0 || !q.running {
			return true
		}
		if timedOut {
			return false
		}
		q.cond.Wait()
	}
}

func (q *Queue) activeLocked() int {
	n := 0
	for _, job := range q.jobs {
		if job.Status == StatusPending || job.Status == StatusRunning {
			n++
		}
	}
	return n
}

func (q *Queue) runSequential(ctx context.Context) {
	for ctx.Err() == nil {
		job, jctx := q.claimNext(ctx)
		if job == nil {
			return
		}
		q.process(jctx, job)
	}
}

func (q *Queue) runParallel(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for ctx.Err() == nil {
		// Go blocks while all workers are busy, so dispatch stays FIFO.
		job, jctx := q.claimNext(ctx)
		if job == nil {
			break
		}
		g.Go(func() error {
			q.process(jctx, job)
			return nil
		})
	}
	g.Wait()
}

// claimNext atomically moves the first pending job to running and returns it
// with its cancellable context, or nil when nothing is dispatchable.
func (q *Queue) claimNext(parent context.Context) (*Job, context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, nil
	}
	for _, id := range q.order {
		job, ok := q.jobs[id]
		if !ok || job.Status != StatusPending {
			continue
		}
		now := time.Now()
		job.Status = StatusRunning
		job.StartedAt = &now
		jctx, cancel := context.WithCancel(parent)
		job.cancel = cancel
		return job, jctx
	}
	return nil, nil
}

func (q *Queue) process(ctx context.Context, job *Job) {
	q.mu.Lock()
	snap := job.snapshot()
	q.mu.Unlock()

	q.cfg.Logger.Info("render started",
		"job_id", job.ID,
		"renderer", job.Renderer.Name(),
		"output", job.OutputPath,
	)
	q.notify(snap)
	q.record(snap)

	q.finish(job, q.renderJob(ctx, job))
}

// renderJob isolates renderer panics so one bad job cannot take down the
// dispatch loop.
func (q *Queue) renderJob(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return job.Renderer.Render(ctx, job.Timeline, job.OutputPath, job.Options)
}

func (q *Queue) finish(job *Job, renderErr error) {
	q.mu.Lock()
	if job.Status.Terminal() {
		// Cancelled while running; the worker's outcome is discarded.
		q.cond.Broadcast()
		q.mu.Unlock()
		return
	}
	now := time.Now()
	job.CompletedAt = &now
	job.cancel = nil
	if renderErr != nil {
		job.Status = StatusFailed
		job.Error = renderErr.Error()
	} else {
		job.Status = StatusCompleted
		job.Progress = 100
	}
	snap := job.snapshot()
	q.cond.Broadcast()
	q.mu.Unlock()

	if renderErr != nil {
		q.cfg.Logger.Warn("render failed", "job_id", job.ID, "error", renderErr)
	} else {
		q.cfg.Logger.Info("render completed", "job_id", job.ID, "duration_s", snap.Duration)
	}
	q.notify(snap)
	q.record(snap)
}

func (q *Queue) notify(snap Snapshot) {
	if q.cfg.Progress != nil {
		q.cfg.Progress(snap)
	}
}

func (q *Queue) record(snap Snapshot) {
	if q.cfg.Journal == nil {
		return
	}
	if err := q.cfg.Journal.RecordJob(snap); err != nil {
		q.cfg.Logger.Warn("journal write failed", "job_id", snap.ID, "error", err)
	}
}
