package notify

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

// ErrInvalidConfig marks a channel whose configuration cannot work at all
// (malformed URL, missing credential). Such failures are never retried.
var ErrInvalidConfig = errors.New("invalid channel config")

// Summary is the semantic payload every channel delivers; wire formats are
// channel-specific.
type Summary struct {
	PreferenceName string
	Repositories   []RepoSummary
}

type RepoSummary struct {
	FullName    string  `json:"full_name"`
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Stars       int     `json:"stars"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	URL         string  `json:"url"`
}

// Channel is one independent delivery mechanism. Validate is called before
// the first send attempt; Send failures wrapped with Transient are retried.
type Channel interface {
	Name() string
	Validate() error
	Send(ctx context.Context, summary Summary) error
}

type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks an error as retryable (network timeout, server-side
// failure).
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func IsTransient(err error) bool {
	var marked *transientError
	if errors.As(err, &marked) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
