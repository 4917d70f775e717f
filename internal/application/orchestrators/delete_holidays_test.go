package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"feriados/internal/domain/holiday"
)

func seedHolidays(store *mockHolidayStore, n int) {
	for i := 0; i < n; i++ {
		d := time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)
		id := string(rune('a' + i))
		store.holidays[id] = holiday.Holiday{
			ID:        id,
			Name:      "Feriado " + id,
			StartDate: d,
			EndDate:   d,
			Type:      holiday.TypeFixed,
			Status:    holiday.StatusApproved,
		}
	}
}

// TestExecuteDeleteHolidays removes exactly the listed ids in one batch call.
func TestExecuteDeleteHolidays(t *testing.T) {
	store := newMockHolidayStore()
	seedHolidays(store, 3)

	result, err := ExecuteDeleteHolidays(context.Background(), DeleteHolidaysInput{IDs: []string{"a", "c"}}, DeleteHolidaysDeps{HolidayStore: store})
	if err != nil {
		t.Fatalf("ExecuteDeleteHolidays failed: %v", err)
	}
	if result.DeletedCount != 2 {
		t.Errorf("deleted count = %d, want 2", result.DeletedCount)
	}
	if got, _ := store.Count(context.Background()); got != 1 {
		t.Errorf("store should hold 1 holiday, has %d", got)
	}
	if len(store.deleted) != 1 {
		t.Errorf("expected a single batch delete, got %d calls", len(store.deleted))
	}
}

// TestExecuteDeleteHolidays_EmptyIDs rejects an empty list before any store call.
func TestExecuteDeleteHolidays_EmptyIDs(t *testing.T) {
	store := newMockHolidayStore()
	seedHolidays(store, 2)

	_, err := ExecuteDeleteHolidays(context.Background(), DeleteHolidaysInput{}, DeleteHolidaysDeps{HolidayStore: store})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got, _ := store.Count(context.Background()); got != 2 {
		t.Errorf("store must stay untouched, has %d holidays", got)
	}
}

// TestExecuteDeleteAll wipes the store only when confirmed.
func TestExecuteDeleteAll(t *testing.T) {
	store := newMockHolidayStore()
	seedHolidays(store, 4)
	deps := DeleteHolidaysDeps{HolidayStore: store}

	// Unconfirmed attempt fails without writes.
	_, err := ExecuteDeleteAll(context.Background(), DeleteAllInput{}, deps)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got, _ := store.Count(context.Background()); got != 4 {
		t.Fatalf("unconfirmed delete must not write; store has %d", got)
	}

	result, err := ExecuteDeleteAll(context.Background(), DeleteAllInput{Confirm: true}, deps)
	if err != nil {
		t.Fatalf("ExecuteDeleteAll failed: %v", err)
	}
	if result.DeletedCount != 4 {
		t.Errorf("deleted count = %d, want 4", result.DeletedCount)
	}
	if got, _ := store.Count(context.Background()); got != 0 {
		t.Errorf("store should be empty, has %d", got)
	}
}

// TestExecuteDeleteAll_Empty treats an empty store as a zero-count success.
func TestExecuteDeleteAll_Empty(t *testing.T) {
	result, err := ExecuteDeleteAll(context.Background(), DeleteAllInput{Confirm: true}, DeleteHolidaysDeps{HolidayStore: newMockHolidayStore()})
	if err != nil {
		t.Fatalf("ExecuteDeleteAll failed: %v", err)
	}
	if result.DeletedCount != 0 {
		t.Errorf("deleted count = %d, want 0", result.DeletedCount)
	}
}
