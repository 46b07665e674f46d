package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ladatajusta.ar/newsroom/internal/db"
	"ladatajusta.ar/newsroom/internal/globaltime"
)

// UpdatePatch is a partial update. Nil pointers leave the column untouched.
// State, when set, must be a legal transition from the item's current state.
// Automated marks the patch as machine-issued: automated retries respect the
// retry ceiling, a human reset does not.
type UpdatePatch struct {
	State        *State
	StateMessage *string
	Automated    bool

	Title    *string
	Subtitle *string
	Summary  *string
	Content  *string

	AITitle                *string
	AISummary              *string
	AITags                 json.RawMessage
	AICategory             *string
	AIModel                *string
	AIPromptVersion        *string
	AITokensUsed           *int
	AICostUSD              *float64
	AIProcessedAt          *time.Time
	AIProcessingDurationMS *int
	AIMetadata             json.RawMessage

	LastError  *string
	ErrorTrace *string

	ExtraMetadata json.RawMessage

	UpdatedBy string
}

func (p UpdatePatch) isEmpty() bool {
	return p.State == nil && p.StateMessage == nil &&
		p.Title == nil && p.Subtitle == nil && p.Summary == nil && p.Content == nil &&
		p.AITitle == nil && p.AISummary == nil && p.AITags == nil && p.AICategory == nil &&
		p.AIModel == nil && p.AIPromptVersion == nil && p.AITokensUsed == nil &&
		p.AICostUSD == nil && p.AIProcessedAt == nil && p.AIProcessingDurationMS == nil &&
		p.AIMetadata == nil &&
		p.LastError == nil && p.ErrorTrace == nil &&
		p.ExtraMetadata == nil
}

// touchesContent reports whether the patch writes article or AI content,
// which terminal items no longer accept. Audit and metadata columns stay
// writable after an item reaches a terminal state.
func (p UpdatePatch) touchesContent() bool {
	return p.Title != nil || p.Subtitle != nil || p.Summary != nil || p.Content != nil ||
		p.AITitle != nil || p.AISummary != nil || p.AITags != nil || p.AICategory != nil
}

// Update applies a patch with optimistic concurrency: the write is guarded by
// the state observed at read time, and a concurrent state change surfaces as
// ErrTransientStore so the caller can re-read and retry.
func (s *Store) Update(ctx context.Context, id string, patch UpdatePatch) (*db.StagingItem, error) {
	if patch.isEmpty() {
		return s.Get(ctx, id)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fromState := State(current.State)
	if fromState.IsTerminal() && patch.touchesContent() {
		return nil, fmt.Errorf("staging item %s is %s: %w", id, fromState, ErrTerminalStateImmutable)
	}

	now := globaltime.UTC()
	set := []string{"updated_at = $1", "updated_by = NULLIF($2, '')"}
	args := []any{now, patch.UpdatedBy}

	addSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.State != nil {
		target := *patch.State
		if _, err := ParseState(string(target)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if target == StatePublished {
			// The publish transaction is the only path into published.
			return nil, fmt.Errorf("%w: published is only reachable through publish", ErrInvalidTransition)
		}
		if err := ValidateTransition(fromState, target); err != nil {
			return nil, err
		}
		if err := ValidateRetryReset(fromState, target, patch.Automated, current.RetryCount, current.MaxRetries); err != nil {
			return nil, fmt.Errorf("staging item %s: %w", id, err)
		}

		addSet("state", string(target))
		addSet("state_updated_at", now)
		if target == StateError {
			set = append(set, "retry_count = LEAST(retry_count + 1, max_retries)")
			addSet("last_error_at", now)
		}
	}
	if patch.StateMessage != nil {
		addSet("state_message", *patch.StateMessage)
	}
	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Subtitle != nil {
		addSet("subtitle", *patch.Subtitle)
	}
	if patch.Summary != nil {
		addSet("summary", *patch.Summary)
	}
	if patch.Content != nil {
		addSet("content", *patch.Content)
	}
	if patch.AITitle != nil {
		addSet("ai_title", *patch.AITitle)
	}
	if patch.AISummary != nil {
		addSet("ai_summary", *patch.AISummary)
	}
	if patch.AITags != nil {
		addSet("ai_tags", string(patch.AITags))
	}
	if patch.AICategory != nil {
		addSet("ai_category", *patch.AICategory)
	}
	if patch.AIModel != nil {
		addSet("ai_model", *patch.AIModel)
	}
	if patch.AIPromptVersion != nil {
		addSet("ai_prompt_version", *patch.AIPromptVersion)
	}
	if patch.AITokensUsed != nil {
		addSet("ai_tokens_used", *patch.AITokensUsed)
	}
	if patch.AICostUSD != nil {
		addSet("ai_cost_usd", *patch.AICostUSD)
	}
	if patch.AIProcessedAt != nil {
		addSet("ai_processed_at", patch.AIProcessedAt.UTC())
	}
	if patch.AIProcessingDurationMS != nil {
		addSet("ai_processing_duration_ms", *patch.AIProcessingDurationMS)
	}
	if patch.AIMetadata != nil {
		addSet("ai_metadata", string(patch.AIMetadata))
	}
	if patch.LastError != nil {
		addSet("last_error", *patch.LastError)
	}
	if patch.ErrorTrace != nil {
		addSet("error_trace", *patch.ErrorTrace)
	}
	if patch.ExtraMetadata != nil {
		addSet("extra_metadata", string(patch.ExtraMetadata))
	}

	args = append(args, id)
	idArg := len(args)
	args = append(args, current.State)
	stateArg := len(args)

	query := fmt.Sprintf(`
		UPDATE newsroom.staging_items
		SET %s
		WHERE id = $%d AND state = $%d
		RETURNING %s`,
		strings.Join(set, ", "), idArg, stateArg, itemColumns)

	updated, err := scanItem(s.pool.QueryRow(ctx, query, args...))
	if err == nil {
		if patch.State != nil {
			s.logger.Info().
				Str("item_id", id).
				Str("from", string(fromState)).
				Str("to", string(*patch.State)).
				Msg("staging item transitioned")
		}
		return updated, nil
	}
	if !db.IsNoRows(err) {
		return nil, fmt.Errorf("update staging item: %w", classifyStoreError(err))
	}

	// The guarded write matched nothing. Distinguish a vanished row from a
	// concurrent state change.
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("staging item %s changed state concurrently: %w", id, ErrTransientStore)
}
