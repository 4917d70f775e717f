package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/domain/holiday"
	"feriados/internal/domain/review"
)

// BulkStatusInput carries the selected candidates and the target status.
// PRE: Status is one of approved, working, rejected.
// POST: approved/working persist in one transaction; rejected never writes.
type BulkStatusInput struct {
	Candidates []review.Candidate
	Status     string
}

// BulkStatusResult reports how many candidates were processed and which ids
// should be removed from the review state.
type BulkStatusResult struct {
	Processed  int
	RemovedIDs []string
}

// BulkStatusDeps holds external dependencies for the bulk status orchestrator.
type BulkStatusDeps struct {
	HolidayStore holidayStore.Store
	GenerateID   func() string
}

// ExecuteBulkStatus applies a status to a batch of reviewed candidates.
// Duplicate-flagged candidates are skipped; an empty or all-duplicate batch
// yields ErrNothingToProcess without touching the store.
// PRE: Deps.HolidayStore is non-nil; GenerateID yields unique ids.
// POST: approved/working candidates are persisted in a single transaction with
//
//	fresh ids; rejected candidates are only marked for removal.
//
// INVARIANT: Temporary ids never reach the store.
func ExecuteBulkStatus(ctx context.Context, input BulkStatusInput, deps BulkStatusDeps) (BulkStatusResult, error) {
	if input.Status != holiday.StatusApproved && input.Status != holiday.StatusWorking && input.Status != holiday.StatusRejected {
		return BulkStatusResult{}, &ValidationError{Message: fmt.Sprintf("invalid target status: %s", input.Status)}
	}
	if len(input.Candidates) == 0 {
		return BulkStatusResult{}, ErrNothingToProcess
	}

	// The submitted batch is the operator's selection; the review state
	// machine decides what a bulk transition may act on.
	state := review.NewState(input.Candidates).ToggleSelectAll()
	processable := state.SelectedImportable()
	if len(processable) == 0 {
		return BulkStatusResult{}, ErrNothingToProcess
	}

	result := BulkStatusResult{}
	for _, c := range processable {
		result.RemovedIDs = append(result.RemovedIDs, c.ID)
	}

	if input.Status == holiday.StatusRejected {
		result.Processed = len(processable)
		slog.Info("bulk_status", "status", input.Status, "processed", result.Processed)
		return result, nil
	}

	toSave := make([]holiday.Holiday, 0, len(processable))
	for _, c := range processable {
		h := c.Holiday
		if !h.IsPersisted() {
			h.ID = deps.GenerateID()
		}
		h.Status = input.Status
		if err := h.Validate(); err != nil {
			return BulkStatusResult{}, &ValidationError{Message: fmt.Sprintf("invalid holiday %q: %v", h.Name, err)}
		}
		toSave = append(toSave, h)
	}

	if err := deps.HolidayStore.SaveMany(ctx, toSave); err != nil {
		slog.Error("bulk_status_save_failed", "status", input.Status, "count", len(toSave), "err", err)
		return BulkStatusResult{}, fmt.Errorf("failed to save holidays: %w", err)
	}

	result.Processed = len(toSave)
	slog.Info("bulk_status", "status", input.Status, "processed", result.Processed)
	return result, nil
}
