package staging

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	t.Parallel()

	if s, err := ParseState("ready_for_ai"); err != nil || s != StateReadyForAI {
		t.Fatalf("unexpected parse result: %v %v", s, err)
	}
	if _, err := ParseState("pending_review"); err == nil {
		t.Fatalf("expected unknown state to be rejected")
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StatePublished, StateDiscarded, StateDuplicate} {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []State{StateScraped, StateReadyForAI, StateProcessingAI, StateAICompleted, StateReadyToPublish, StateError} {
		if s.IsTerminal() {
			t.Fatalf("did not expect %s to be terminal", s)
		}
	}
}

func TestValidateTransition_PipelineEdges(t *testing.T) {
	t.Parallel()

	legal := []struct{ from, to State }{
		{StateScraped, StateReadyForAI},
		{StateReadyForAI, StateProcessingAI},
		{StateProcessingAI, StateAICompleted},
		{StateProcessingAI, StateError},
		{StateAICompleted, StateReadyToPublish},
		{StateReadyToPublish, StatePublished},
		{StateError, StateReadyForAI},
		{StateScraped, StateDiscarded},
		{StateAICompleted, StateDuplicate},
	}
	for _, tc := range legal {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Fatalf("expected %s -> %s to be legal: %v", tc.from, tc.to, err)
		}
	}

	illegal := []struct{ from, to State }{
		{StateScraped, StatePublished},
		{StateScraped, StateAICompleted},
		{StateReadyForAI, StateReadyToPublish},
		{StateAICompleted, StatePublished},
		{StateError, StateProcessingAI},
		{StatePublished, StateDiscarded},
		{StateDiscarded, StateScraped},
		{StateDuplicate, StateReadyForAI},
	}
	for _, tc := range illegal {
		err := ValidateTransition(tc.from, tc.to)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected %s -> %s to fail with ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestValidateTransition_SelfTransition(t *testing.T) {
	t.Parallel()

	if err := ValidateTransition(StateScraped, StateScraped); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected self transition to be rejected, got %v", err)
	}
}

func TestValidateRetryReset(t *testing.T) {
	t.Parallel()

	err := ValidateRetryReset(StateError, StateReadyForAI, true, 3, 3)
	if !errors.Is(err, ErrRetryLimitReached) {
		t.Fatalf("expected automated reset at the ceiling to fail, got %v", err)
	}

	if err := ValidateRetryReset(StateError, StateReadyForAI, true, 2, 3); err != nil {
		t.Fatalf("expected automated reset below the ceiling to pass: %v", err)
	}

	// A human operator may always reset an exhausted item.
	if err := ValidateRetryReset(StateError, StateReadyForAI, false, 3, 3); err != nil {
		t.Fatalf("expected manual reset at the ceiling to pass: %v", err)
	}

	// The ceiling only binds the error -> ready_for_ai edge.
	if err := ValidateRetryReset(StateProcessingAI, StateError, true, 3, 3); err != nil {
		t.Fatalf("expected unrelated transition to pass: %v", err)
	}
}
