package rstream

import (
	"context"
	"sync"
	"time"
)

// DefaultConcurrency is the default "at most N in-flight items" bound a
// stage uses when the caller does not override it.
const DefaultConcurrency = 10

// DefaultBatchTimeout is how long Batch waits to fill a batch before
// flushing a partial one.
const DefaultBatchTimeout = 100 * time.Millisecond

// MapUnordered applies fn to each item of in with at most concurrency
// in-flight calls, using pool to schedule the work. Output order is not
// guaranteed to match input order — only the chunker stage in this kernel
// is order-preserving (see MapOrderedFlat). Dropping ctx (cancellation)
// stops issuing new work and drains what's in flight.
func MapUnordered[I, O any](ctx context.Context, pool Pool, in <-chan Result[I], concurrency int, fn func(context.Context, I) (O, error)) <-chan Result[O] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	out := make(chan Result[O])
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				wg.Wait()
				return
			case item, ok := <-in:
				if !ok {
					wg.Wait()
					return
				}
				if item.IsErr() {
					select {
					case out <- Err[O](item.Err):
					case <-ctx.Done():
						return
					}
					continue
				}

				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					wg.Wait()
					return
				}

				wg.Add(1)
				v := item.Value
				pool.Go(func() {
					defer wg.Done()
					defer func() { <-sem }()
					o, err := fn(ctx, v)
					var r Result[O]
					if err != nil {
						r = Err[O](err)
					} else {
						r = Ok(o)
					}
					select {
					case out <- r:
					case <-ctx.Done():
					}
				})
			}
		}
	}()

	return out
}

// MapOrderedFlat applies fn to each input item sequentially (preserving
// input order) where fn may expand one item into many outputs — the shape
// the order-preserving chunker stage needs. Each call to fn fully drains
// before the next begins.
func MapOrderedFlat[I, O any](ctx context.Context, in <-chan Result[I], fn func(context.Context, I) ([]O, error)) <-chan Result[O] {
	out := make(chan Result[O])

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-in:
				if !ok {
					return
				}
				if item.IsErr() {
					select {
					case out <- Err[O](item.Err):
					case <-ctx.Done():
						return
					}
					continue
				}
				children, err := fn(ctx, item.Value)
				if err != nil {
					select {
					case out <- Err[O](err):
					case <-ctx.Done():
						return
					}
					continue
				}
				for _, c := range children {
					select {
					case out <- Ok(c):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out
}

// Batch buffers up to size items, flushing early if timeout elapses since
// the first item of the current batch arrived. A non-empty partial batch
// is flushed on upstream close; on cancellation it is delivered only if a
// receiver takes it before the send gives way to ctx.Done, otherwise it
// is dropped.
func Batch[T any](ctx context.Context, in <-chan Result[T], size int, timeout time.Duration) <-chan []Result[T] {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}
	out := make(chan []Result[T])

	go func() {
		defer close(out)
		buf := make([]Result[T], 0, size)
		var timer *time.Timer
		var timerC <-chan time.Time

		flush := func() {
			if len(buf) == 0 {
				return
			}
			select {
			case out <- buf:
			case <-ctx.Done():
			}
			buf = make([]Result[T], 0, size)
			if timer != nil {
				timer.Stop()
				timer = nil
				timerC = nil
			}
		}

		for {
			select {
			case <-ctx.Done():
				flush()
				return
			case <-timerC:
				flush()
			case item, ok := <-in:
				if !ok {
					flush()
					return
				}
				if len(buf) == 0 {
					timer = time.NewTimer(timeout)
					timerC = timer.C
				}
				buf = append(buf, item)
				if len(buf) >= size {
					flush()
				}
			}
		}
	}()

	return out
}

// FilterErrors drops errored items, keeping the pipeline alive — one of the
// two explicit error-handling taps a builder can insert.
func FilterErrors[T any](ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])
	go func() {
		defer close(out)
		for item := range in {
			if item.IsErr() {
				continue
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// ErrorLogger receives a diagnostic for each errored item LogErrors passes
// through.
type ErrorLogger interface {
	LogStreamError(err error)
}

// ErrorLoggerFunc adapts a plain function to ErrorLogger.
type ErrorLoggerFunc func(err error)

func (f ErrorLoggerFunc) LogStreamError(err error) { f(err) }

// LogErrors emits a diagnostic event for each errored item and passes every
// item through unchanged — the other explicit error-handling tap.
func LogErrors[T any](ctx context.Context, in <-chan Result[T], logger ErrorLogger) <-chan Result[T] {
	out := make(chan Result[T])
	go func() {
		defer close(out)
		for item := range in {
			if item.IsErr() && logger != nil {
				logger.LogStreamError(item.Err)
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Collect drains in fully, returning all successful values and the first
// error encountered. Draining continues past the first error so the
// terminal stage can still report an accurate success count.
func Collect[T any](in <-chan Result[T]) ([]T, error) {
	var values []T
	var firstErr error
	for item := range in {
		if item.IsErr() {
			if firstErr == nil {
				firstErr = item.Err
			}
			continue
		}
		values = append(values, item.Value)
	}
	return values, firstErr
}

// Run drains in fully and returns the count of successful items, the
// elapsed wall-clock time, and the first error encountered — the terminal
// indexing-pipeline contract.
func Run[T any](in <-chan Result[T]) (count int, elapsed time.Duration, err error) {
	start := time.Now()
	var firstErr error
	for item := range in {
		if item.IsErr() {
			if firstErr == nil {
				firstErr = item.Err
			}
			continue
		}
		count++
	}
	return count, time.Since(start), firstErr
}

// FromSlice returns a channel that emits each value of vs as an Ok result,
// then closes. Useful for tests and for adapting in-memory sources.
func FromSlice[T any](vs []T) <-chan Result[T] {
	out := make(chan Result[T], len(vs))
	for _, v := range vs {
		out <- Ok(v)
	}
	close(out)
	return out
}
