// Package workqueue runs named jobs on a pool of workers, starting each job
// only after every job blocking it has finished.
package workqueue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/zerr"
)

// Action is the work a job performs. A returned error is recorded by the queue
// and the job still counts as finished.
type Action func(ctx context.Context) error

type job struct {
	name     string
	action   Action
	blocking int
	waiting  []string
	inserted bool
	done     bool
}

// Queue is a dependency-ordered job scheduler.
// All jobs must be inserted before workers start calling ProcessJob.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	jobs      map[string]*job
	ready     []*job
	running   int
	completed int
	stopped   bool

	errs      []error
	cancelled error
}

// New creates an empty Queue.
func New() *Queue {
	q := &Queue{jobs: make(map[string]*job)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Insert registers a job that may only start once every job named in blocking has finished.
// Blockers may be inserted later; until then they exist as placeholders.
// Inserting a name twice fails with ErrDuplicateJob.
func (q *Queue) Insert(name string, action Action, blocking ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[name]
	if ok && j.inserted {
		return zerr.With(domain.ErrDuplicateJob, "job", name)
	}
	if !ok {
		j = &job{name: name}
		q.jobs[name] = j
	}
	if action == nil {
		action = func(context.Context) error { return nil }
	}
	j.inserted = true
	j.action = action

	for _, b := range blocking {
		bj, ok := q.jobs[b]
		if !ok {
			bj = &job{name: b}
			q.jobs[b] = bj
		}
		if bj.done {
			continue
		}
		bj.waiting = append(bj.waiting, name)
		j.blocking++
	}

	if j.blocking == 0 {
		q.ready = append(q.ready, j)
		q.cond.Broadcast()
	}
	return nil
}

// ProcessJob runs one ready job and reports true, or reports false once every
// registered job has finished. While jobs remain but none is ready, it blocks
// until a running job finishes.
//
// If ctx is done, ready jobs are drained without running their actions.
func (q *Queue) ProcessJob(ctx context.Context) bool {
	q.mu.Lock()
	for {
		if q.stopped || q.completed == len(q.jobs) {
			q.mu.Unlock()
			return false
		}
		if len(q.ready) > 0 {
			break
		}
		if q.running == 0 {
			q.stall()
			q.mu.Unlock()
			return false
		}
		q.cond.Wait()
	}

	j := q.ready[len(q.ready)-1]
	q.ready = q.ready[:len(q.ready)-1]
	q.running++
	q.mu.Unlock()

	err := q.run(ctx, j)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.running--
	j.done = true
	q.completed++
	if err != nil {
		q.errs = append(q.errs, err)
	}
	for _, name := range j.waiting {
		w := q.jobs[name]
		w.blocking--
		if w.blocking == 0 {
			q.ready = append(q.ready, w)
		}
	}
	q.cond.Broadcast()
	return true
}

func (q *Queue) run(ctx context.Context, j *job) (err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		q.mu.Lock()
		if q.cancelled == nil {
			q.cancelled = ctxErr
		}
		q.mu.Unlock()
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.With(domain.ErrJobPanicked, "job", j.name), "panic", fmt.Sprint(r))
		}
	}()
	return j.action(ctx)
}

// stall is called with the lock held when unfinished jobs can never become ready.
func (q *Queue) stall() {
	var pending []string
	for name, j := range q.jobs {
		if !j.done {
			pending = append(pending, name)
		}
	}
	slices.Sort(pending)
	q.errs = append(q.errs, zerr.With(domain.ErrQueueStalled, "pending", strings.Join(pending, ", ")))
	q.stopped = true
	q.cond.Broadcast()
}

// Flush wakes every worker blocked in ProcessJob.
func (q *Queue) Flush() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Validate reports blockers that were never inserted and blocking cycles.
// It must be called before workers start.
func (q *Queue) Validate() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	names := make([]string, 0, len(q.jobs))
	for name := range q.jobs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		j := q.jobs[name]
		if !j.inserted {
			err := zerr.With(domain.ErrUnknownJob, "job", name)
			return zerr.With(err, "blocked", strings.Join(j.waiting, ", "))
		}
	}

	blocking := make(map[string]int, len(q.jobs))
	var frontier []string
	for _, name := range names {
		blocking[name] = q.jobs[name].blocking
		if q.jobs[name].blocking == 0 {
			frontier = append(frontier, name)
		}
	}
	reached := 0
	for len(frontier) > 0 {
		name := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		reached++
		for _, w := range q.jobs[name].waiting {
			blocking[w]--
			if blocking[w] == 0 {
				frontier = append(frontier, w)
			}
		}
	}
	if reached == len(q.jobs) {
		return nil
	}

	var cyclic []string
	for _, name := range names {
		if blocking[name] > 0 {
			cyclic = append(cyclic, name)
		}
	}
	return zerr.With(domain.ErrCycleDetected, "jobs", strings.Join(cyclic, ", "))
}

// Run drives the queue with the given number of workers until it drains.
// It returns the joined errors of every failed job.
func (q *Queue) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for q.ProcessJob(ctx) {
			}
		})
	}
	wg.Wait()
	q.Flush()
	return q.Err()
}

// Err returns the joined errors recorded so far, including a context error
// if jobs were skipped because of cancellation.
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	errs := slices.Clone(q.errs)
	if q.cancelled != nil {
		errs = append(errs, q.cancelled)
	}
	return errors.Join(errs...)
}

// Completed returns the number of finished jobs.
func (q *Queue) Completed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// Len returns the number of registered jobs, placeholders included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
