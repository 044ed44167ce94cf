package core

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// MaxWorkers caps the pool size so a huge batch cannot exhaust file handles
// or memory.
const MaxWorkers = 32

// Batch is a fully expanded run: independent tasks plus the wording and
// post-processing that belong to the job kind.
type Batch struct {
	Kind    string // "icons" or "convert", for logging
	Tasks   []Task
	Verb    string // completion status prefix, e.g. "Generating icons"
	Summary string // terminal status text on total success
	// Post runs after every task has succeeded (manifest write for icon
	// jobs).  A Post failure surfaces as the run's Error even though all
	// image tasks succeeded.
	Post func(ctx context.Context) error
}

// Executor fans a batch of independent tasks out across a bounded worker
// pool, aggregates completions in whichever order they land, and reports a
// single terminal outcome.  It is safe for concurrent use; each Run gets its
// own pool and event stream.
type Executor struct {
	workers int
	log     Logger
}

// NewExecutor creates an Executor.  workers <= 0 resolves to NumCPU; the
// value is always capped at MaxWorkers.
func NewExecutor(workers int) *Executor {
	return &Executor{workers: workers, log: nopLogger{}}
}

// SetLogger attaches a structured logger.
func (e *Executor) SetLogger(l Logger) {
	if l != nil {
		e.log = l
	}
}

// Run executes the batch.  The returned stream carries Progress/Status events
// in task COMPLETION order and is terminated by exactly one of {Error,
// Finished}, after which it is closed.  The channel is buffered to the full
// event count so an abandoned consumer can never wedge the pool.
func (e *Executor) Run(ctx context.Context, b Batch) <-chan Event {
	events := make(chan Event, 2*len(b.Tasks)+8)
	go e.run(ctx, b, events)
	return events
}

// Failed returns a terminated stream carrying a single Error event.  Used for
// precondition failures where no tasks are ever started.
func Failed(err error) <-chan Event {
	events := make(chan Event, 1)
	events <- Event{Kind: EventError, Err: err, Text: err.Error()}
	close(events)
	return events
}

type taskResult struct {
	name string
	err  error
}

func (e *Executor) run(ctx context.Context, b Batch, events chan<- Event) {
	defer close(events)

	runID := uuid.New().String()
	total := len(b.Tasks)
	workers := e.poolSize(total)
	start := time.Now()

	e.log.Info("batch.start", "run_id", runID, "kind", b.Kind, "tasks", total, "workers", workers)

	tasks := make(chan Task)
	results := make(chan taskResult, total) // sized so workers never block after an abort
	abort := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func() {
			for t := range tasks {
				results <- taskResult{name: t.Name, err: t.Run(ctx)}
			}
		}()
	}

	// The feeder stops handing out queued tasks once the batch aborts;
	// tasks a worker already picked up run to completion in the background
	// and their results are discarded.
	go func() {
		defer close(tasks)
		for _, t := range b.Tasks {
			select {
			case tasks <- t:
			case <-abort:
				return
			}
		}
	}()

	completed := 0
	for completed < total {
		res := <-results
		if res.err != nil {
			close(abort)
			e.log.Error("batch.task.failed", "run_id", runID, "task", res.name, "error", res.err.Error())
			events <- Event{Kind: EventError, Err: res.err, Text: res.err.Error()}
			return
		}
		completed++
		events <- Event{Kind: EventProgress, Percent: percent(completed, total), Processed: completed}
		events <- Event{Kind: EventStatus, Text: fmt.Sprintf("%s: %d/%d", b.Verb, completed, total)}
	}
	close(abort)

	if b.Post != nil {
		if err := b.Post(ctx); err != nil {
			e.log.Error("batch.post.failed", "run_id", runID, "error", err.Error())
			events <- Event{Kind: EventError, Err: err, Text: err.Error()}
			return
		}
	}

	e.log.Info("batch.done", "run_id", runID, "kind", b.Kind, "tasks", total,
		"duration_ms", time.Since(start).Milliseconds())

	events <- Event{Kind: EventProgress, Percent: 100, Processed: total}
	events <- Event{Kind: EventStatus, Text: b.Summary}
	events <- Event{Kind: EventFinished, Processed: total}
}

func (e *Executor) poolSize(tasks int) int {
	n := e.workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n > tasks {
		n = tasks
	}
	if n < 1 {
		n = 1
	}
	return n
}

// percent reports completion as a rounded percentage, clamped to 99 while the
// run is still in flight: 100 is reserved for the single Progress event that
// precedes Finished, so a consumer can treat it as a success signal.
func percent(completed, total int) int {
	p := int(math.Round(float64(completed) / float64(total) * 100))
	if p > 99 {
		p = 99
	}
	return p
}

// Collect drains an event stream and folds it into the run's aggregate
// outcome.  Useful for callers that do not render incremental progress.
func Collect(events <-chan Event) BatchResult {
	var res BatchResult
	for ev := range events {
		switch ev.Kind {
		case EventProgress, EventFinished:
			if ev.Processed > res.Processed {
				res.Processed = ev.Processed
			}
		case EventError:
			res.Err = ev.Err
		}
	}
	return res
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
