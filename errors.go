package ux

import (
	"errors"
	"fmt"

	"github.com/succinctgo/uxdict/persistence"
)

var (
	// ErrNotFound is the NOTFOUND sentinel: PrefixSearch returns it, unwrapped,
	// when no stored key is a prefix of the query. Decode reports an
	// out-of-range identifier with *ErrInvalidID instead. Predictive and
	// common-prefix search never return it — a miss there is an empty slice.
	ErrNotFound = errors.New("uxdict: key not found")

	// ErrNotReady is returned by Decode and Save on a Dictionary that has
	// not finished Build or Load. The search methods do not return it: on
	// such a Dictionary PrefixSearch returns ErrNotFound and the others an
	// empty result.
	ErrNotReady = errors.New("uxdict: dictionary not built or loaded")

	// ErrEmptyKeySet is not returned by Build or BuildSorted: both accept
	// zero keys and return an empty, ready dictionary.
	ErrEmptyKeySet = errors.New("uxdict: empty key set")

	// ErrUnsortedKeys is returned by BuildSorted when the input keys are not
	// in strictly ascending, deduplicated byte order — BuildSorted assumes
	// this precondition and does not sort defensively (Build sorts and
	// deduplicates its input itself).
	ErrUnsortedKeys = errors.New("uxdict: keys must be sorted and deduplicated")
)

// ErrCorruptSnapshot indicates a structurally invalid or truncated on-disk
// image: a format failure per the invariant checks run during Load, as
// opposed to a plain I/O error opening or reading the file.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrCorruptSnapshot struct {
	Reason string
	cause  error
}

func (e *ErrCorruptSnapshot) Error() string {
	return fmt.Sprintf("uxdict: corrupt snapshot: %s", e.Reason)
}

func (e *ErrCorruptSnapshot) Unwrap() error { return e.cause }

// ErrResourceExhausted indicates a build ran out of the memory budget
// configured on its resource.Controller. Builders degrade nested tail
// dictionaries to flat storage rather than fail outright; this error is
// handed to the logger's LogDegrade and is not returned to the caller.
type ErrResourceExhausted struct {
	Requested int64
	cause     error
}

func (e *ErrResourceExhausted) Error() string {
	return fmt.Sprintf("uxdict: resource exhausted: requested %d bytes", e.Requested)
}

func (e *ErrResourceExhausted) Unwrap() error { return e.cause }

// ErrInvalidID indicates Decode was called with an identifier outside
// [0, KeyNum), which can only happen from a caller-supplied id rather
// than one this package itself produced.
type ErrInvalidID struct {
	ID     int
	KeyNum int
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("uxdict: identifier %d out of range [0, %d)", e.ID, e.KeyNum)
}

// translateError maps errors surfacing from the persistence layer onto the
// package's own sentinels and typed errors, so callers never need to
// depend on persistence's error types directly.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, persistence.ErrInvalidMagic) || errors.Is(err, persistence.ErrInvalidVersion) ||
		errors.Is(err, persistence.ErrInvalidTailMode) {
		return &ErrCorruptSnapshot{Reason: err.Error(), cause: err}
	}

	var mismatch *persistence.ChecksumMismatchError
	if errors.As(err, &mismatch) {
		return &ErrCorruptSnapshot{Reason: mismatch.Error(), cause: err}
	}

	return err
}
