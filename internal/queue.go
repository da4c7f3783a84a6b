package internal

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Invoker performs one logical model request. *Retrier implements it.
type Invoker interface {
	Invoke(ctx context.Context, req InsightsRequest) (string, error)
}

// Result is what a Task's Done callback receives
type Result struct {
	Response string
	Err      error
}

// Task is one queued request. Done is called exactly once.
type Task struct {
	Request InsightsRequest
	Done    func(Result)
}

// RequestQueue runs tasks one at a time in submission order
type RequestQueue struct {
	ctx     context.Context
	invoker Invoker

	mu         sync.Mutex
	idle       *sync.Cond
	pending    []Task
	processing bool
}

// NewRequestQueue creates a queue whose tasks run with ctx
func NewRequestQueue(ctx context.Context, invoker Invoker) *RequestQueue {
	q := &RequestQueue{ctx: ctx, invoker: invoker}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends task and starts draining if no drain is running. It never
// blocks on task execution.
func (q *RequestQueue) Enqueue(task Task) {
	q.mu.Lock()
	q.pending = append(q.pending, task)
	if q.processing {
		q.mu.Unlock()
		return
	}
	q.processing = true
	q.mu.Unlock()

	go q.drain()
}

// Len returns the number of tasks waiting to run
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Processing reports whether a task is running
func (q *RequestQueue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

// Wait blocks until the queue is empty and nothing is running
func (q *RequestQueue) Wait() {
	q.mu.Lock()
	for q.processing || len(q.pending) > 0 {
		q.idle.Wait()
	}
	q.mu.Unlock()
}

// drain is the only code that sets processing back to false
func (q *RequestQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.processing = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending[0] = Task{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(task)
	}
}

func (q *RequestQueue) run(task Task) {
	result := q.invoke(task.Request)
	if result.Err != nil {
		LogError("Error in model request after retries: %v", result.Err)
	}
	if task.Done == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			LogError("task callback panic: %v\n%s", r, debug.Stack())
		}
	}()
	task.Done(result)
}

func (q *RequestQueue) invoke(req InsightsRequest) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			LogError("task panic: %v\n%s", r, debug.Stack())
			result = Result{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()
	response, err := q.invoker.Invoke(q.ctx, req)
	return Result{Response: response, Err: err}
}
