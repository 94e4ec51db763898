// Package rstream implements the lazy, back-pressured streaming kernel the
// indexing and query pipelines run on: bounded-concurrency combinators over
// channels of Result[T], with errors carried as first-class stream values
// rather than aborting the pipeline.
package rstream

// Result is a first-class error-carrying stream item. A stage that fails on
// one item emits a Result with Err set and continues; it never aborts the
// stream.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Err wraps a failure; Value is the zero value of T.
func Err[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// IsErr reports whether this result carries an error.
func (r Result[T]) IsErr() bool {
	return r.Err != nil
}
