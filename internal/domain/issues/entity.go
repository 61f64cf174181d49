package issues

import (
	"errors"
	"fmt"
	"time"
)

// Kind enum
type Kind string

const (
	KindWrongTitle  Kind = "wrong_title"
	KindWrongArtist Kind = "wrong_artist"
	KindNotArtwork  Kind = "not_artwork"
)

// State enum
type State string

const (
	StateOpen      State = "open"
	StateResolved  State = "resolved"
	StateDismissed State = "dismissed"
)

// ErrAlreadyResolved indicates a transition on a non-open report.
var ErrAlreadyResolved = errors.New("issue report already resolved")

// ErrNotFound indicates the issue report row does not exist.
var ErrNotFound = errors.New("issue report not found")

// ErrInvalidAction indicates an unknown moderation outcome action.
var ErrInvalidAction = errors.New("invalid resolution action")

// ValidKind reports whether k is a known issue kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindWrongTitle, KindWrongArtist, KindNotArtwork:
		return true
	}
	return false
}

// IssueReport is a user-submitted correction awaiting moderation.
type IssueReport struct {
	ID        string    `json:"id"`
	ArtworkID string    `json:"artwork_id"`
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Note      string    `json:"note,omitempty"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition moves the report out of the open state. Reports are never
// silently auto-resolved; only moderation calls this.
func (r *IssueReport) Transition(to State) error {
	if r.State != StateOpen {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, r.ID, r.State)
	}
	if to != StateResolved && to != StateDismissed {
		return fmt.Errorf("invalid transition to %s", to)
	}
	r.State = to
	return nil
}
