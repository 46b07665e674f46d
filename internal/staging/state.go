package staging

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a staged article. The set is closed:
// adding a state requires updating the transition table below.
type State string

const (
	StateScraped        State = "scraped"
	StateReadyForAI     State = "ready_for_ai"
	StateProcessingAI   State = "processing_ai"
	StateAICompleted    State = "ai_completed"
	StateReadyToPublish State = "ready_to_publish"
	StateError          State = "error"
	StatePublished      State = "published"
	StateDiscarded      State = "discarded"
	StateDuplicate      State = "duplicate"
)

var (
	ErrNotFound               = errors.New("staging item not found")
	ErrDuplicateURL           = errors.New("staging item with this url_hash already exists")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrInvalidState           = errors.New("state does not permit this operation")
	ErrTerminalStateImmutable = errors.New("item is in a terminal state and its content is immutable")
	ErrCannotDeletePublished  = errors.New("published items cannot be deleted")
	ErrAlreadyPublished       = errors.New("item is already linked to a publication")
	ErrRetryLimitReached      = errors.New("retry limit reached")
	ErrTransientStore         = errors.New("transient store failure")
)

// transitions is the closed edge set of the pipeline. published appears as a
// target only so the publish transaction can validate against the same table;
// Update rejects it separately.
var transitions = map[State][]State{
	StateScraped:        {StateReadyForAI, StateDiscarded, StateDuplicate},
	StateReadyForAI:     {StateProcessingAI, StateDiscarded, StateDuplicate},
	StateProcessingAI:   {StateAICompleted, StateError, StateDiscarded, StateDuplicate},
	StateAICompleted:    {StateReadyToPublish, StateDiscarded, StateDuplicate},
	StateReadyToPublish: {StatePublished, StateDiscarded, StateDuplicate},
	StateError:          {StateReadyForAI, StateDiscarded, StateDuplicate},
	StatePublished:      nil,
	StateDiscarded:      nil,
	StateDuplicate:      nil,
}

// ParseState validates a raw state string against the closed enumeration.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown state %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s State) IsTerminal() bool {
	return s == StatePublished || s == StateDiscarded || s == StateDuplicate
}

// CanTransition reports whether from -> to is an edge of the pipeline.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns the taxonomy error for an illegal from -> to
// request, or nil when the edge exists.
func ValidateTransition(from, to State) error {
	if from == to {
		return fmt.Errorf("%w: item is already %s", ErrInvalidTransition, from)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateRetryReset enforces the retry ceiling on error -> ready_for_ai.
// Automated resets stop once the item has used up its retries; a manual reset
// is always allowed.
func ValidateRetryReset(from, to State, automated bool, retryCount, maxRetries int) error {
	if !automated || from != StateError || to != StateReadyForAI {
		return nil
	}
	if retryCount >= maxRetries {
		return fmt.Errorf("used %d of %d retries: %w", retryCount, maxRetries, ErrRetryLimitReached)
	}
	return nil
}
