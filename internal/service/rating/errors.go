package rating

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVideoNotFound is returned when a rating targets a link that no longer
// has a row, e.g. after a concurrent clear.
var ErrVideoNotFound = errors.New("video not found")

// ErrStoreUnavailable marks persistence failures. Callers report a generic
// retry message and leave the workflow state untouched.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrEmptySubmission is returned for a link submission with no tokens.
var ErrEmptySubmission = errors.New("empty submission")

// InvalidLinksError lists the tokens of a submission batch that failed URL
// validation. The presence of any invalid token rejects the whole batch.
type InvalidLinksError struct {
	Tokens []string
}

func (e *InvalidLinksError) Error() string {
	return fmt.Sprintf("invalid links: %s", strings.Join(e.Tokens, ", "))
}

// ScoreRangeError is returned when a score is not an integer within the
// configured range.
type ScoreRangeError struct {
	Min, Max int64
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("score must be an integer between %d and %d", e.Min, e.Max)
}

// CommentTooShortError is returned when a rating comment is below the
// configured minimum length.
type CommentTooShortError struct {
	Min int
}

func (e *CommentTooShortError) Error() string {
	return fmt.Sprintf("comment must be at least %d characters", e.Min)
}

// IsValidationError reports whether the error is one the user can fix by
// re-entering their input.
func IsValidationError(err error) bool {
	var linksErr *InvalidLinksError
	var scoreErr *ScoreRangeError
	var commentErr *CommentTooShortError
	return errors.Is(err, ErrEmptySubmission) ||
		errors.As(err, &linksErr) ||
		errors.As(err, &scoreErr) ||
		errors.As(err, &commentErr)
}

func storeError(err error) error {
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
}
