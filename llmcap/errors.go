// Package llmcap defines the LLM-facing capability contracts (simple
// prompt, chat completion, rerank), the transient/permanent error
// taxonomy, and the WithBackoff retry wrapper. The provider adapters in
// llmcap/openai and llmcap/anthropic do not classify their errors or
// retry; callers wrap them with Classify and WithBackoff themselves.
package llmcap

import "errors"

// Class buckets an LLM call failure so callers know whether a retry is
// worthwhile.
type Class int

const (
	// ClassPermanent failures will not succeed on retry (bad request,
	// auth failure, invalid model).
	ClassPermanent Class = iota
	// ClassTransient failures (rate limit, timeout, 5xx) are worth
	// retrying with backoff.
	ClassTransient
	// ClassContextLengthExceeded means the prompt plus context overran
	// the model's window; retrying verbatim will not help.
	ClassContextLengthExceeded
)

// ClassifiedError wraps an underlying provider error with its Class.
type ClassifiedError struct {
	Class Class
	Err   error
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }
func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with the given class. A nil err passes through as nil.
func Classify(class Class, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: class, Err: err}
}

// IsTransient reports whether err (or a wrapped cause) is classified
// transient.
func IsTransient(err error) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ClassTransient
	}
	return false
}

// IsContextLengthExceeded reports whether err is classified as a
// context-length failure.
func IsContextLengthExceeded(err error) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ClassContextLengthExceeded
	}
	return false
}
