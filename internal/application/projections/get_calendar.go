package projections

import (
	"context"
	"fmt"
	"time"

	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/domain/holiday"
)

// MinCalendarYear is the earliest year the calendar can display.
const MinCalendarYear = 2025

// monthNames holds the Spanish month names used by the calendar UI.
var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// GetCalendarQuery carries query parameters.
type GetCalendarQuery struct {
	Year int
}

// DayCell is a single day in a month grid. Blank leading cells have Day == 0.
type DayCell struct {
	Day       int
	DateKey   string // YYYY-MM-DD, empty for blanks
	IsHoliday bool
	IsToday   bool
	Holidays  []holiday.Holiday
}

// MonthView is one month grid. Weeks start on Sunday.
type MonthView struct {
	Month int    // 1-12
	Name  string // Spanish month name
	Cells []DayCell
}

// GetCalendarResult carries the rendered year.
type GetCalendarResult struct {
	Year       int
	PrevYear   int // 0 when navigation below the minimum is not allowed
	NextYear   int
	Months     []MonthView
	HolidayMap map[string][]holiday.Holiday
	Holidays   []holiday.Holiday
}

// GetCalendarDeps holds dependencies for GetCalendar.
type GetCalendarDeps struct {
	HolidayStore holidayStore.Store
	Now          func() time.Time
}

// QueryGetCalendarYear builds the 12-month grid for a year from the
// displayable holidays (approved, working, custom).
// PRE: Deps.HolidayStore and Deps.Now are non-nil
// POST: Every date in [start, end] of each holiday appears in HolidayMap;
//
//	IsToday is set only when the displayed year is the real current year.
//
// INVARIANT: Years below MinCalendarYear are clamped up, never rendered.
func QueryGetCalendarYear(ctx context.Context, query GetCalendarQuery, deps GetCalendarDeps) (GetCalendarResult, error) {
	year := query.Year
	now := deps.Now()
	if year == 0 {
		year = now.Year()
	}
	if year < MinCalendarYear {
		year = MinCalendarYear
	}

	holidays, err := deps.HolidayStore.List(ctx, holidayStore.ListFilter{
		Year:     year,
		Statuses: holiday.DisplayStatuses,
	})
	if err != nil {
		return GetCalendarResult{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	result := GetCalendarResult{
		Year:       year,
		NextYear:   year + 1,
		Holidays:   holidays,
		HolidayMap: BuildHolidayMap(holidays),
	}
	if year > MinCalendarYear {
		result.PrevYear = year - 1
	}

	today := ""
	if now.Year() == year {
		today = now.Format(holiday.DateLayout)
	}

	for m := 1; m <= 12; m++ {
		result.Months = append(result.Months, buildMonth(year, time.Month(m), result.HolidayMap, today))
	}
	return result, nil
}

// BuildHolidayMap expands each holiday over its closed date range, keyed by
// YYYY-MM-DD. Multiple holidays on the same date keep input order.
func BuildHolidayMap(holidays []holiday.Holiday) map[string][]holiday.Holiday {
	m := make(map[string][]holiday.Holiday)
	for _, h := range holidays {
		start := dateOnly(h.StartDate)
		end := dateOnly(h.EndDate)
		if end.Before(start) {
			continue
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format(holiday.DateLayout)
			m[key] = append(m[key], h)
		}
	}
	return m
}

// FirstHolidayOn returns the first holiday covering the given date key.
func FirstHolidayOn(holidayMap map[string][]holiday.Holiday, dateKey string) (holiday.Holiday, bool) {
	hs := holidayMap[dateKey]
	if len(hs) == 0 {
		return holiday.Holiday{}, false
	}
	return hs[0], true
}

func buildMonth(year int, month time.Month, holidayMap map[string][]holiday.Holiday, today string) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	view := MonthView{Month: int(month), Name: monthNames[month-1]}

	// Leading blanks so day 1 lands on its weekday (weeks start Sunday).
	for i := 0; i < int(first.Weekday()); i++ {
		view.Cells = append(view.Cells, DayCell{})
	}

	daysInMonth := first.AddDate(0, 1, -1).Day()
	for day := 1; day <= daysInMonth; day++ {
		key := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		hs := holidayMap[key]
		view.Cells = append(view.Cells, DayCell{
			Day:       day,
			DateKey:   key,
			IsHoliday: len(hs) > 0,
			IsToday:   key == today,
			Holidays:  hs,
		})
	}
	return view
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
