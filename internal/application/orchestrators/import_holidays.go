package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"feriados/internal/adapters/email"
	"feriados/internal/adapters/source/feriados"
	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/domain/holiday"
	"feriados/internal/domain/review"
)

// minSourceRecords is the sanity floor for a fetched year. Argentina has a
// dozen or so national holidays; fewer than this means the source is broken.
const minSourceRecords = 5

// ImportHolidaysInput selects the year and mode of an import run.
// PRE: Year is a plausible calendar year.
// POST: Preview=true annotates candidates without writing; Preview=false commits.
type ImportHolidaysInput struct {
	Year    int
	Preview bool
}

// ImportHolidaysResult holds the outcome of an import run. Candidates and
// Stats are populated in preview mode; Imported/Skipped/Errors in commit mode.
type ImportHolidaysResult struct {
	Candidates []review.Candidate
	Stats      ImportHolidaysStats
	Imported   int
	Skipped    int
	Errors     int
	Preview    bool
}

// ImportHolidaysStats summarizes a preview against the stored holidays.
type ImportHolidaysStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Existing int `json:"existing"`
}

// ImportHolidaysDeps holds external dependencies for the import orchestrator.
// EmailSender and OperatorEmail are optional; when both are set a summary
// email is sent after a commit run.
type ImportHolidaysDeps struct {
	Source        feriados.Source
	HolidayStore  holidayStore.Store
	EmailSender   email.Sender
	OperatorEmail string
	GenerateID    func() string
}

// ExecuteImportHolidays fetches the official holidays for a year and either
// previews them against the store or persists the new ones.
// PRE: Deps.Source and Deps.HolidayStore are non-nil; GenerateID yields unique ids.
// POST: Preview mode performs no writes; commit mode creates only holidays with
//
//	no exact (name, start date) match, continuing past per-record failures.
//
// INVARIANT: A second identical commit run imports nothing and skips everything.
func ExecuteImportHolidays(ctx context.Context, input ImportHolidaysInput, deps ImportHolidaysDeps) (ImportHolidaysResult, error) {
	records, err := deps.Source.FetchYear(ctx, input.Year)
	if err != nil {
		return ImportHolidaysResult{}, err
	}
	if len(records) < minSourceRecords {
		slog.Warn("import_holidays_too_few_records", "year", input.Year, "count", len(records))
		return ImportHolidaysResult{}, &feriados.SourceUnavailableError{
			Message: fmt.Sprintf("holiday source returned only %d records for %d", len(records), input.Year),
		}
	}

	candidates, err := normalizeRecords(records)
	if err != nil {
		return ImportHolidaysResult{}, err
	}

	if input.Preview {
		return previewHolidays(ctx, input.Year, candidates, deps)
	}
	return commitHolidays(ctx, input.Year, candidates, deps)
}

// normalizeRecords maps raw source records to domain holidays sorted by date.
// Records with unparseable dates make the whole batch unusable.
func normalizeRecords(records []feriados.Record) ([]holiday.Holiday, error) {
	holidays := make([]holiday.Holiday, 0, len(records))
	for _, r := range records {
		date, err := time.Parse(holiday.DateLayout, r.Fecha)
		if err != nil {
			return nil, &feriados.SourceUnavailableError{
				Message: fmt.Sprintf("holiday source returned unparseable date %q", r.Fecha),
			}
		}
		holidays = append(holidays, holiday.Holiday{
			Name:        r.Nombre,
			StartDate:   date,
			EndDate:     date,
			Description: fmt.Sprintf("Feriado oficial (%s)", r.Tipo),
			Type:        holiday.MapSourceType(r.Tipo),
			Status:      holiday.StatusPending,
			IsOfficial:  true,
		})
	}
	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].StartDate.Before(holidays[j].StartDate)
	})
	return holidays, nil
}

// previewHolidays annotates candidates against the stored year without writing.
func previewHolidays(ctx context.Context, year int, holidays []holiday.Holiday, deps ImportHolidaysDeps) (ImportHolidaysResult, error) {
	stored, err := deps.HolidayStore.List(ctx, holidayStore.ListFilter{Year: year})
	if err != nil {
		return ImportHolidaysResult{}, fmt.Errorf("failed to list stored holidays: %w", err)
	}

	existingKeys := make(map[string]bool, len(stored))
	for _, h := range stored {
		existingKeys[h.DuplicateKey()] = true
	}

	result := ImportHolidaysResult{Preview: true}
	result.Candidates = make([]review.Candidate, 0, len(holidays))
	for _, h := range holidays {
		h.ID = holiday.TempIDPrefix + deps.GenerateID()
		exists := existingKeys[h.DuplicateKey()]
		if exists {
			h.Status = holiday.StatusExisting
			result.Stats.Existing++
		} else {
			result.Stats.New++
		}
		result.Stats.Total++
		result.Candidates = append(result.Candidates, review.Candidate{Holiday: h, ExistsInDB: exists})
	}

	slog.Info("import_holidays",
		"year", year,
		"preview", true,
		"total", result.Stats.Total,
		"new", result.Stats.New,
		"existing", result.Stats.Existing,
	)
	return result, nil
}

// commitHolidays persists candidates that have no exact store match,
// continuing past individual failures.
func commitHolidays(ctx context.Context, year int, holidays []holiday.Holiday, deps ImportHolidaysDeps) (ImportHolidaysResult, error) {
	result := ImportHolidaysResult{}
	for _, h := range holidays {
		_, lookupErr := deps.HolidayStore.FindByNameAndStartDate(ctx, h.Name, h.StartDate)
		switch {
		case lookupErr == nil:
			result.Skipped++
			continue
		case !errors.Is(lookupErr, sql.ErrNoRows):
			slog.Error("import_holidays_lookup_failed", "year", year, "name", h.Name, "err", lookupErr)
			result.Errors++
			continue
		}

		h.ID = deps.GenerateID()
		if err := deps.HolidayStore.Save(ctx, h); err != nil {
			slog.Error("import_holidays_save_failed", "year", year, "name", h.Name, "err", err)
			result.Errors++
			continue
		}
		result.Imported++
	}

	slog.Info("import_holidays",
		"year", year,
		"preview", false,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)

	sendImportSummary(ctx, year, result, deps)
	return result, nil
}

// sendImportSummary notifies the operator about a commit run. Email failure
// is logged and never fails the import.
func sendImportSummary(ctx context.Context, year int, result ImportHolidaysResult, deps ImportHolidaysDeps) {
	if deps.EmailSender == nil || deps.OperatorEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"<p>Importación de feriados %d completada.</p><ul><li>Importados: %d</li><li>Omitidos: %d</li><li>Errores: %d</li></ul>",
		year, result.Imported, result.Skipped, result.Errors,
	)
	_, err := deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{deps.OperatorEmail},
		Subject: fmt.Sprintf("Importación de feriados %d", year),
		HTML:    body,
	})
	if err != nil {
		slog.Error("import_holidays_email_failed", "year", year, "err", err)
	}
}
