package royalty

import (
	"errors"
	"fmt"
)

// ErrorKind classifies royalty errors so callers can map them to their own
// status codes without matching on messages.
type ErrorKind string

const (
	KindInvalidRange     ErrorKind = "invalid_range"
	KindSumMismatch      ErrorKind = "sum_mismatch"
	KindCategoryInvalid  ErrorKind = "category_invalid"
	KindInvalidThreshold ErrorKind = "invalid_threshold"
	KindNotFound         ErrorKind = "not_found"
)

var (
	ErrInvalidRange     = errors.New("percentage out of range")
	ErrSumMismatch      = errors.New("category does not sum to 100")
	ErrCategoryInvalid  = errors.New("category invalid")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrNotFound         = errors.New("contributor not found")

	// ErrCategoryMismatch is wrapped by a CategoryError when the post-threshold
	// ledger does not cover the same category as the pre-threshold ledger.
	ErrCategoryMismatch = errors.New("pre and post splits cover different categories")

	// ErrConditionMismatch is returned when an observation of one condition type
	// is evaluated against a conditional split of the other type.
	ErrConditionMismatch = errors.New("observation does not match condition type")

	// ErrNotCreated is returned by a ConditionalSplit that never passed
	// NewConditionalSplit. Reaching it is a programming error.
	ErrNotCreated = errors.New("conditional split was not created")
)

// Classified is implemented by every error type in this package.
type Classified interface {
	error
	ErrorKind() ErrorKind
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or "" when there is none.
func KindOf(err error) ErrorKind {
	var c Classified
	if errors.As(err, &c) {
		return c.ErrorKind()
	}
	return ""
}

// RangeError reports a percentage outside [0, Max].
type RangeError struct {
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("percentage %d outside [0,%d]", e.Value, e.Max)
}

func (e *RangeError) Is(target error) bool { return target == ErrInvalidRange }

func (e *RangeError) ErrorKind() ErrorKind { return KindInvalidRange }

// SumMismatchError reports a non-empty category whose total is not 100.
type SumMismatchError struct {
	Actual int
}

func (e *SumMismatchError) Error() string {
	return fmt.Sprintf("category sums to %d, want 100", e.Actual)
}

func (e *SumMismatchError) Is(target error) bool { return target == ErrSumMismatch }

func (e *SumMismatchError) ErrorKind() ErrorKind { return KindSumMismatch }

// Side names which half of a conditional split an error belongs to.
// It is empty for plain split-set categories.
type Side string

const (
	SidePre  Side = "pre"
	SidePost Side = "post"
)

// CategoryError wraps the failure of one category inside a split set commit or
// a conditional split creation.
type CategoryError struct {
	Category Category
	Side     Side
	Err      error
}

func (e *CategoryError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("%s split (%s) invalid: %v", e.Side, e.Category, e.Err)
	}
	return fmt.Sprintf("%s split invalid: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error { return e.Err }

func (e *CategoryError) Is(target error) bool { return target == ErrCategoryInvalid }

func (e *CategoryError) ErrorKind() ErrorKind { return KindCategoryInvalid }

// ThresholdError reports a negative amount or an unusable date/duration.
type ThresholdError struct {
	Input  string
	Reason string
}

func (e *ThresholdError) Error() string {
	if e.Input == "" {
		return "invalid threshold: " + e.Reason
	}
	return fmt.Sprintf("invalid threshold %q: %s", e.Input, e.Reason)
}

func (e *ThresholdError) Is(target error) bool { return target == ErrInvalidThreshold }

func (e *ThresholdError) ErrorKind() ErrorKind { return KindInvalidThreshold }

// NotFoundError reports a contributor reference that does not belong to the
// ledger being edited.
type NotFoundError struct {
	Ref ContributorRef
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contributor %s not found in ledger", e.Ref)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) ErrorKind() ErrorKind { return KindNotFound }
