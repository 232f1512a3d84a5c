package activities

import (
	"context"
	"errors"
	"fmt"

	"checkout-flow/drafts"
	"checkout-flow/models"

	"go.temporal.io/sdk/activity"
)

// DraftActivities persists the in-flight draft for a session
type DraftActivities struct {
	store drafts.Store
}

// NewDraftActivities creates a new DraftActivities instance
func NewDraftActivities(store drafts.Store) *DraftActivities {
	return &DraftActivities{store: store}
}

// SaveDraft writes the draft into the session's currentOrder slot,
// replacing whatever was there.
func (d *DraftActivities) SaveDraft(ctx context.Context, sessionID string, draft models.OrderDraft) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Saving draft", "session_id", sessionID, "slot", drafts.Slot, "order_id", draft.OrderID)

	if err := d.store.Save(ctx, sessionID, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft recovers the session's draft. A missing draft is not an
// error; the result is nil.
func (d *DraftActivities) LoadDraft(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	logger := activity.GetLogger(ctx)

	draft, err := d.store.Load(ctx, sessionID)
	if errors.Is(err, drafts.ErrNotFound) {
		logger.Warn("No stored draft", "session_id", sessionID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	logger.Info("Retrieved stored draft", "session_id", sessionID, "order_id", draft.OrderID)
	return draft, nil
}

// ClearDraft empties the session's currentOrder slot
func (d *DraftActivities) ClearDraft(ctx context.Context, sessionID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Clearing draft", "session_id", sessionID)

	if err := d.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
