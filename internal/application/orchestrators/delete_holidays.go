package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	holidayStore "feriados/internal/adapters/storage/holiday"
)

// DeleteHolidaysInput names the holidays to remove.
type DeleteHolidaysInput struct {
	IDs []string
}

// DeleteHolidaysDeps holds external dependencies for the delete orchestrators.
type DeleteHolidaysDeps struct {
	HolidayStore holidayStore.Store
}

// DeleteHolidaysResult reports how many holidays were removed.
type DeleteHolidaysResult struct {
	DeletedCount int
}

// ExecuteDeleteHolidays removes a batch of holidays in one transaction.
// PRE: Deps.HolidayStore is non-nil.
// POST: Either every listed id is gone or nothing changed.
func ExecuteDeleteHolidays(ctx context.Context, input DeleteHolidaysInput, deps DeleteHolidaysDeps) (DeleteHolidaysResult, error) {
	if len(input.IDs) == 0 {
		return DeleteHolidaysResult{}, &ValidationError{Message: "no holiday ids provided"}
	}

	if err := deps.HolidayStore.DeleteMany(ctx, input.IDs); err != nil {
		slog.Error("delete_holidays_failed", "count", len(input.IDs), "err", err)
		return DeleteHolidaysResult{}, fmt.Errorf("failed to delete holidays: %w", err)
	}

	slog.Info("delete_holidays", "count", len(input.IDs))
	return DeleteHolidaysResult{DeletedCount: len(input.IDs)}, nil
}

// DeleteAllInput gates the destructive wipe behind an explicit confirmation.
type DeleteAllInput struct {
	Confirm bool
}

// ExecuteDeleteAll removes every stored holiday in one transaction.
// PRE: Input.Confirm is true; Deps.HolidayStore is non-nil.
// POST: The store holds zero holidays; DeletedCount is the number removed.
func ExecuteDeleteAll(ctx context.Context, input DeleteAllInput, deps DeleteHolidaysDeps) (DeleteHolidaysResult, error) {
	if !input.Confirm {
		return DeleteHolidaysResult{}, &ValidationError{Message: "delete all requires confirmation"}
	}

	ids, err := deps.HolidayStore.ListIDs(ctx)
	if err != nil {
		return DeleteHolidaysResult{}, fmt.Errorf("failed to list holiday ids: %w", err)
	}
	if len(ids) == 0 {
		slog.Info("delete_all_holidays", "count", 0)
		return DeleteHolidaysResult{}, nil
	}

	if err := deps.HolidayStore.DeleteMany(ctx, ids); err != nil {
		slog.Error("delete_all_holidays_failed", "count", len(ids), "err", err)
		return DeleteHolidaysResult{}, fmt.Errorf("failed to delete holidays: %w", err)
	}

	slog.Info("delete_all_holidays", "count", len(ids))
	return DeleteHolidaysResult{DeletedCount: len(ids)}, nil
}
