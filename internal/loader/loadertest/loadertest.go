// Package loadertest provides deterministic stand-ins for the loader's
// control thread, background executor and store.
package loadertest

import (
	"context"
	"sync"

	"github.com/i474232898/sunshine/internal/query"
)

// Poster queues posted funcs until Flush runs them.
type Poster struct {
	mu    sync.Mutex
	queue []func()
}

// Post queues fn.
func (p *Poster) Post(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, fn)
	return true
}

// Len returns the number of queued funcs.
func (p *Poster) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Flush runs queued funcs, including ones posted while flushing.
func (p *Poster) Flush() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		fn()
	}
}

// Executor holds background jobs until the test runs them, so tests choose
// the order in which queries complete.
type Executor struct {
	mu   sync.Mutex
	jobs []func()
}

// Go queues fn.
func (e *Executor) Go(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, fn)
}

// Len returns the number of jobs not yet run.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

// RunLast runs the most recently queued job.
func (e *Executor) RunLast() {
	e.mu.Lock()
	if len(e.jobs) == 0 {
		e.mu.Unlock()
		return
	}
	fn := e.jobs[len(e.jobs)-1]
	e.jobs = e.jobs[:len(e.jobs)-1]
	e.mu.Unlock()
	fn()
}

// RunAll runs every queued job in issuance order.
func (e *Executor) RunAll() {
	for {
		e.mu.Lock()
		if len(e.jobs) == 0 {
			e.mu.Unlock()
			return
		}
		fn := e.jobs[0]
		e.jobs = e.jobs[1:]
		e.mu.Unlock()
		fn()
	}
}

// Result is one scripted query outcome.
type Result struct {
	Rows [][]any
	Err  error
}

// Querier answers queries from a script and records what it was asked.
type Querier struct {
	mu        sync.Mutex
	respond   func(d query.Descriptor) Result
	issued    []query.Descriptor
	returned  []*query.SliceResultSet
	observers map[int]func()
	nextID    int
}

// NewQuerier returns a querier that answers with respond.
func NewQuerier(respond func(d query.Descriptor) Result) *Querier {
	return &Querier{respond: respond, observers: make(map[int]func())}
}

// Query implements loader.Querier.
func (q *Querier) Query(_ context.Context, d query.Descriptor) (query.ResultSet, error) {
	q.mu.Lock()
	respond := q.respond
	q.issued = append(q.issued, d)
	q.mu.Unlock()

	res := respond(d)
	if res.Err != nil {
		return nil, res.Err
	}
	rs := query.NewSliceResultSet(res.Rows)

	q.mu.Lock()
	q.returned = append(q.returned, rs)
	q.mu.Unlock()
	return rs, nil
}

// SetResponder replaces the script.
func (q *Querier) SetResponder(respond func(d query.Descriptor) Result) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.respond = respond
}

// Issued returns every descriptor queried so far.
func (q *Querier) Issued() []query.Descriptor {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]query.Descriptor(nil), q.issued...)
}

// Returned returns every result set handed out so far.
func (q *Querier) Returned() []*query.SliceResultSet {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*query.SliceResultSet(nil), q.returned...)
}

// Subscribe implements loader.Observable.
func (q *Querier) Subscribe(fn func()) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	q.observers[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.observers, id)
	}
}

// Observers returns the number of live subscriptions.
func (q *Querier) Observers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.observers)
}

// NotifyChanged calls every subscriber.
func (q *Querier) NotifyChanged() {
	q.mu.Lock()
	fns := make([]func(), 0, len(q.observers))
	for _, fn := range q.observers {
		fns = append(fns, fn)
	}
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Rows is a convenience responder that always returns rows.
func Rows(rows ...[]any) func(query.Descriptor) Result {
	return func(query.Descriptor) Result {
		return Result{Rows: rows}
	}
}
