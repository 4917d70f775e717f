package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"feriados/internal/domain/holiday"
	"feriados/internal/domain/review"
)

func tempCandidate(id, name string, date time.Time, existsInDB bool) review.Candidate {
	status := holiday.StatusPending
	if existsInDB {
		status = holiday.StatusExisting
	}
	return review.Candidate{
		Holiday: holiday.Holiday{
			ID:         holiday.TempIDPrefix + id,
			Name:       name,
			StartDate:  date,
			EndDate:    date,
			Type:       holiday.TypeFixed,
			Status:     status,
			IsOfficial: true,
		},
		ExistsInDB: existsInDB,
	}
}

// TestExecuteBulkStatus_Approve persists non-duplicate candidates with fresh
// ids in one batch.
func TestExecuteBulkStatus_Approve(t *testing.T) {
	store := newMockHolidayStore()
	d1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	input := BulkStatusInput{
		Candidates: []review.Candidate{
			tempCandidate("a", "Año Nuevo", d1, false),
			tempCandidate("b", "Carnaval", d2, true),
		},
		Status: holiday.StatusApproved,
	}
	deps := BulkStatusDeps{HolidayStore: store, GenerateID: sequentialID()}

	result, err := ExecuteBulkStatus(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("ExecuteBulkStatus failed: %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("processed = %d, want 1", result.Processed)
	}
	if len(result.RemovedIDs) != 1 || result.RemovedIDs[0] != holiday.TempIDPrefix+"a" {
		t.Errorf("unexpected removed ids: %v", result.RemovedIDs)
	}

	saved, err := store.FindByNameAndStartDate(context.Background(), "Año Nuevo", d1)
	if err != nil {
		t.Fatalf("approved holiday not persisted: %v", err)
	}
	if saved.Status != holiday.StatusApproved {
		t.Errorf("status = %s, want %s", saved.Status, holiday.StatusApproved)
	}
	if strings.HasPrefix(saved.ID, holiday.TempIDPrefix) {
		t.Errorf("persisted holiday kept temp id %s", saved.ID)
	}

	// The duplicate was never written.
	if _, err := store.FindByNameAndStartDate(context.Background(), "Carnaval", d2); err == nil {
		t.Error("duplicate candidate must not be persisted")
	}
}

// TestExecuteBulkStatus_Reject removes candidates without touching the store.
func TestExecuteBulkStatus_Reject(t *testing.T) {
	store := newMockHolidayStore()
	d := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)

	input := BulkStatusInput{
		Candidates: []review.Candidate{tempCandidate("a", "Día de la Independencia", d, false)},
		Status:     holiday.StatusRejected,
	}
	deps := BulkStatusDeps{HolidayStore: store, GenerateID: sequentialID()}

	result, err := ExecuteBulkStatus(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("ExecuteBulkStatus failed: %v", err)
	}
	if result.Processed != 1 || len(result.RemovedIDs) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if got, _ := store.Count(context.Background()); got != 0 {
		t.Errorf("reject must not write; store has %d holidays", got)
	}
}

// TestExecuteBulkStatus_InterleavedDuplicates keeps candidate order and skips
// every duplicate, matching the review state machine the handler feeds from.
func TestExecuteBulkStatus_InterleavedDuplicates(t *testing.T) {
	store := newMockHolidayStore()
	d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }

	candidates := []review.Candidate{
		tempCandidate("a", "Carnaval", d(3), true),
		tempCandidate("b", "Carnaval (2do día)", d(4), false),
		tempCandidate("c", "Puente turístico", d(21), true),
		tempCandidate("d", "Día de la Memoria", d(24), false),
	}
	input := BulkStatusInput{Candidates: candidates, Status: holiday.StatusWorking}
	deps := BulkStatusDeps{HolidayStore: store, GenerateID: sequentialID()}

	result, err := ExecuteBulkStatus(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("ExecuteBulkStatus failed: %v", err)
	}

	wantRemoved := review.NewState(candidates).ToggleSelectAll().SelectedImportable()
	if result.Processed != len(wantRemoved) {
		t.Errorf("processed = %d, want %d", result.Processed, len(wantRemoved))
	}
	for i, c := range wantRemoved {
		if result.RemovedIDs[i] != c.ID {
			t.Errorf("removed[%d] = %s, want %s", i, result.RemovedIDs[i], c.ID)
		}
	}
	if got, _ := store.Count(context.Background()); got != 2 {
		t.Errorf("store has %d holidays, want 2", got)
	}
	if _, err := store.FindByNameAndStartDate(context.Background(), "Carnaval", d(3)); err == nil {
		t.Error("duplicate candidate must not be persisted")
	}
}

// TestExecuteBulkStatus_NothingToProcess covers empty and all-duplicate batches.
func TestExecuteBulkStatus_NothingToProcess(t *testing.T) {
	store := newMockHolidayStore()
	deps := BulkStatusDeps{HolidayStore: store, GenerateID: sequentialID()}
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input BulkStatusInput
	}{
		{"empty selection", BulkStatusInput{Status: holiday.StatusApproved}},
		{"all duplicates", BulkStatusInput{
			Candidates: []review.Candidate{tempCandidate("a", "Año Nuevo", d, true)},
			Status:     holiday.StatusApproved,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExecuteBulkStatus(context.Background(), tc.input, deps)
			if !errors.Is(err, ErrNothingToProcess) {
				t.Errorf("expected ErrNothingToProcess, got %v", err)
			}
			if got, _ := store.Count(context.Background()); got != 0 {
				t.Errorf("store must stay untouched, has %d holidays", got)
			}
		})
	}
}

// TestExecuteBulkStatus_InvalidStatus rejects statuses outside the bulk set.
func TestExecuteBulkStatus_InvalidStatus(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := BulkStatusInput{
		Candidates: []review.Candidate{tempCandidate("a", "Año Nuevo", d, false)},
		Status:     holiday.StatusExisting,
	}
	deps := BulkStatusDeps{HolidayStore: newMockHolidayStore(), GenerateID: sequentialID()}

	_, err := ExecuteBulkStatus(context.Background(), input, deps)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
