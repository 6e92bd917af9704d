package core

import (
	"context"
	"sync"

	"github.com/muurk/onvifctl/internal/soap"
)

// Callback receives the outcome of a request. err is nil on success.
type Callback func(err error, result *soap.Result)

// Future is the deferred outcome of one request. It settles exactly once.
type Future struct {
	once   sync.Once
	done   chan struct{}
	result *soap.Result
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Rejected returns a Future already settled with err
func Rejected(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

// Resolved returns a Future already settled with result
func Resolved(result *soap.Result) *Future {
	f := newFuture()
	f.settle(result, nil)
	return f
}

// settle records the outcome; later calls are ignored
func (f *Future) settle(result *soap.Result, err error) {
	f.once.Do(func() {
		f.result, f.err = result, err
		close(f.done)
	})
}

// Done is closed once the Future has settled
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx ends. A ctx that ends first
// abandons the wait only; the request itself is bounded by the dispatcher
// timeout.
func (f *Future) Await(ctx context.Context) (*soap.Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then calls cb exactly once, from another goroutine, after the Future settles
func (f *Future) Then(cb Callback) {
	go func() {
		<-f.done
		cb(f.err, f.result)
	}()
}
