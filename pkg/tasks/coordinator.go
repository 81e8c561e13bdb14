// Package tasks runs long-latency operations off the interactive loop and
// routes exactly one terminal outcome back per task.
package tasks

import (
	"fmt"
	"sync"
)

// Kind identifies what a dispatched task is doing.
type Kind int

const (
	KindFetchModels Kind = iota
	KindGenerate
)

func (k Kind) String() string {
	switch k {
	case KindFetchModels:
		return "fetch-models"
	case KindGenerate:
		return "generate"
	default:
		return "unknown"
	}
}

// Result is the success payload of a task. Which field is populated
// depends on the task kind.
type Result struct {
	Models []string
	Text   string
}

// Outcome is the single terminal state of a task: either Result or Err.
type Outcome struct {
	Kind   Kind
	Result Result
	Err    error
}

// Handle tracks one dispatched task. Done is closed after the outcome is
// available, giving callers a guaranteed-finally signal independent of
// success or failure.
type Handle struct {
	kind    Kind
	outcome chan Outcome
	done    chan struct{}

	waitOnce    sync.Once
	deliverOnce sync.Once
	final       Outcome
}

func (h *Handle) Kind() Kind { return h.kind }

// Done is closed once the task has reached its terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the task finishes and returns its outcome. Repeated
// calls return the same outcome.
func (h *Handle) Wait() Outcome {
	h.waitOnce.Do(func() {
		h.final = <-h.outcome
	})
	return h.final
}

// Deliver waits for the outcome and invokes exactly one of onSuccess or
// onError, always followed by onFinished. Calls after the first are
// no-ops, so a task can never report twice.
func (h *Handle) Deliver(onSuccess func(Result), onError func(error), onFinished func()) {
	h.deliverOnce.Do(func() {
		out := h.Wait()
		if out.Err != nil {
			if onError != nil {
				onError(out.Err)
			}
		} else if onSuccess != nil {
			onSuccess(out.Result)
		}
		if onFinished != nil {
			onFinished()
		}
	})
}

// Coordinator dispatches operations onto background goroutines. It does
// not deduplicate in-flight tasks, retry, or cancel; each dispatch is a
// single independent attempt.
type Coordinator struct {
	wg sync.WaitGroup
}

func New() *Coordinator {
	return &Coordinator{}
}

// Dispatch schedules op on a new goroutine and returns immediately. The
// caller is never blocked; it observes the task through the handle.
func (c *Coordinator) Dispatch(kind Kind, op func() (Result, error)) *Handle {
	h := &Handle{
		kind:    kind,
		outcome: make(chan Outcome, 1),
		done:    make(chan struct{}),
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := runSafely(op)
		h.outcome <- Outcome{Kind: kind, Result: res, Err: err}
		close(h.done)
	}()

	return h
}

// WaitIdle blocks until every dispatched task has reached its terminal
// state. Intended for shutdown and tests.
func (c *Coordinator) WaitIdle() {
	c.wg.Wait()
}

// runSafely converts a panicking operation into a failed outcome so a
// broken task body cannot take down the program or swallow its terminal
// callback.
func runSafely(op func() (Result, error)) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return op()
}
