package reactor

import (
	"errors"
	"fmt"

	"github.com/latoulicious/Reactor/pkg/emoji"
)

// Validation errors
var (
	ErrNoValidEmoji = errors.New("no valid emoji supplied")
	ErrNoChannel    = errors.New("no channel to bind")
)

// ErrBoundsNotFound is returned when a scan window has no closed marker range.
var ErrBoundsNotFound = errors.New("bounds not found")

// ApplyError reports a reaction call that failed partway through a set.
type ApplyError struct {
	Message MessageRef
	Token   emoji.Token
	// Applied is the number of tokens that succeeded before the failure.
	Applied int
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s to message %s after %d reactions: %v", e.Token, e.Message.ID, e.Applied, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
