// Package correrr defines the discriminated error kinds shared by every
// component: InvalidInput, Transient, Integrity, Timeout, Partial, NotFound.
// Components recover locally (retry with backoff) only for Transient;
// every other kind propagates to the caller unchanged.
package correrr

import (
	"errors"
	"fmt"
)

// Kind discriminates the error variant.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindTransient    Kind = "transient"
	KindIntegrity    Kind = "integrity"
	KindTimeout      Kind = "timeout"
	KindPartial      Kind = "partial"
	KindNotFound     Kind = "not_found"
)

// Error is the typed error carried across every component boundary.
type Error struct {
	Kind Kind
	// Subject is the offending id (chunk id, archive id, collection name, ...),
	// required for Integrity and NotFound per spec.
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &correrr.Error{Kind: correrr.KindTransient}) matches any
// Transient error; the Is* predicates below give the same answer.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newKind(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// InvalidInput wraps err as a non-retryable input validation failure.
func InvalidInput(format string, args ...any) *Error {
	return newKind(KindInvalidInput, "", fmt.Errorf(format, args...))
}

// Transient wraps err as a retryable failure (object-store, index-store,
// embedder, re-ranker RPCs). Callers retry with backoff before surfacing it.
func Transient(err error) *Error {
	return newKind(KindTransient, "", err)
}

// Integrity wraps err as a fatal, non-retryable consistency violation:
// chunk-id collision with differing content hash, hash mismatch on read-back,
// malformed stored vector. subject is the offending id.
func Integrity(subject string, err error) *Error {
	return newKind(KindIntegrity, subject, err)
}

// Timeout wraps a deadline-exceeded failure on query fan-out.
func Timeout(err error) *Error {
	return newKind(KindTimeout, "", err)
}

// Partial signals an ingestion that completed with per-document failures.
// Not an error to the caller in the sense of aborting the operation; the
// caller inspects job counters / failed-file list.
func Partial(err error) *Error {
	return newKind(KindPartial, "", err)
}

// NotFound wraps a missing archive/job/collection reference. subject is the
// missing id.
func NotFound(subject string, err error) *Error {
	return newKind(KindNotFound, subject, err)
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsTransient reports whether err (or any error it wraps) is Transient.
func IsTransient(err error) bool { k, ok := kindOf(err); return ok && k == KindTransient }

// IsInvalidInput reports whether err is InvalidInput.
func IsInvalidInput(err error) bool { k, ok := kindOf(err); return ok && k == KindInvalidInput }

// IsIntegrity reports whether err is Integrity.
func IsIntegrity(err error) bool { k, ok := kindOf(err); return ok && k == KindIntegrity }

// IsTimeout reports whether err is Timeout.
func IsTimeout(err error) bool { k, ok := kindOf(err); return ok && k == KindTimeout }

// IsPartial reports whether err is Partial.
func IsPartial(err error) bool { k, ok := kindOf(err); return ok && k == KindPartial }

// IsNotFound reports whether err is NotFound.
func IsNotFound(err error) bool { k, ok := kindOf(err); return ok && k == KindNotFound }
