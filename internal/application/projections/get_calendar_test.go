package projections

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/domain/holiday"
)

// mockHolidayStore serves canned holidays, honoring year and status filters
// and ascending start date order.
type mockHolidayStore struct {
	holidays []holiday.Holiday
}

func (m *mockHolidayStore) GetByID(_ context.Context, id string) (holiday.Holiday, error) {
	for _, h := range m.holidays {
		if h.ID == id {
			return h, nil
		}
	}
	return holiday.Holiday{}, sql.ErrNoRows
}

func (m *mockHolidayStore) Save(_ context.Context, value holiday.Holiday) error {
	m.holidays = append(m.holidays, value)
	return nil
}

func (m *mockHolidayStore) SaveMany(_ context.Context, values []holiday.Holiday) error {
	m.holidays = append(m.holidays, values...)
	return nil
}

func (m *mockHolidayStore) Delete(_ context.Context, _ string) error  { return nil }
func (m *mockHolidayStore) DeleteMany(_ context.Context, _ []string) error { return nil }

func (m *mockHolidayStore) List(_ context.Context, filter holidayStore.ListFilter) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range m.holidays {
		if filter.Year != 0 && h.StartDate.Year() != filter.Year {
			continue
		}
		if len(filter.Statuses) > 0 {
			ok := false
			for _, s := range filter.Statuses {
				if h.Status == s {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *mockHolidayStore) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for _, h := range m.holidays {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (m *mockHolidayStore) FindByNameAndStartDate(_ context.Context, name string, startDate time.Time) (holiday.Holiday, error) {
	for _, h := range m.holidays {
		if h.Name == name && h.StartDate.Equal(startDate) {
			return h, nil
		}
	}
	return holiday.Holiday{}, sql.ErrNoRows
}

func (m *mockHolidayStore) Count(_ context.Context) (int, error) {
	return len(m.holidays), nil
}

func mkHoliday(id, name, start, end, typ, status string) holiday.Holiday {
	s, _ := time.Parse(holiday.DateLayout, start)
	e, _ := time.Parse(holiday.DateLayout, end)
	return holiday.Holiday{ID: id, Name: name, StartDate: s, EndDate: e, Type: typ, Status: status}
}

// fixedNow pins "today" to 2025-03-03.
func fixedNow() time.Time {
	return time.Date(2025, 3, 3, 10, 30, 0, 0, time.UTC)
}

func TestBuildHolidayMap(t *testing.T) {
	holidays := []holiday.Holiday{
		mkHoliday("h1", "Carnaval", "2025-03-03", "2025-03-04", holiday.TypeShiftable, holiday.StatusApproved),
		mkHoliday("h2", "Vacaciones", "2025-07-14", "2025-07-18", holiday.TypeCustom, holiday.StatusCustom),
		mkHoliday("h3", "Feriado puente", "2025-03-03", "2025-03-03", holiday.TypeBridge, holiday.StatusWorking),
	}

	m := BuildHolidayMap(holidays)

	// Every date in each closed range is covered.
	wantKeys := []string{
		"2025-03-03", "2025-03-04",
		"2025-07-14", "2025-07-15", "2025-07-16", "2025-07-17", "2025-07-18",
	}
	for _, key := range wantKeys {
		if len(m[key]) == 0 {
			t.Errorf("date %s not covered", key)
		}
	}
	if len(m) != len(wantKeys) {
		t.Errorf("map has %d keys, want %d", len(m), len(wantKeys))
	}

	// Overlapping holidays keep input order; first match is h1.
	if got := m["2025-03-03"]; len(got) != 2 || got[0].ID != "h1" || got[1].ID != "h3" {
		t.Errorf("overlap order wrong: %+v", got)
	}
	if first, ok := FirstHolidayOn(m, "2025-03-03"); !ok || first.ID != "h1" {
		t.Errorf("first holiday = %+v, ok=%v", first, ok)
	}
	if _, ok := FirstHolidayOn(m, "2025-12-25"); ok {
		t.Error("uncovered date should report no holiday")
	}
}

func TestQueryGetCalendarYear(t *testing.T) {
	store := &mockHolidayStore{holidays: []holiday.Holiday{
		mkHoliday("h1", "Carnaval", "2025-03-03", "2025-03-04", holiday.TypeShiftable, holiday.StatusApproved),
		mkHoliday("h2", "Pendiente", "2025-04-01", "2025-04-01", holiday.TypeFixed, holiday.StatusPending),
		mkHoliday("h3", "Otro año", "2026-01-01", "2026-01-01", holiday.TypeFixed, holiday.StatusApproved),
	}}
	deps := GetCalendarDeps{HolidayStore: store, Now: fixedNow}

	result, err := QueryGetCalendarYear(context.Background(), GetCalendarQuery{Year: 2025}, deps)
	if err != nil {
		t.Fatalf("QueryGetCalendarYear failed: %v", err)
	}

	if result.Year != 2025 || len(result.Months) != 12 {
		t.Fatalf("year=%d months=%d", result.Year, len(result.Months))
	}
	if result.PrevYear != 0 {
		t.Errorf("2025 is the minimum year; prev = %d", result.PrevYear)
	}
	if result.NextYear != 2026 {
		t.Errorf("next year = %d", result.NextYear)
	}

	// Only displayable statuses for the requested year.
	if len(result.Holidays) != 1 || result.Holidays[0].ID != "h1" {
		t.Errorf("unexpected holidays: %+v", result.Holidays)
	}
	if _, ok := result.HolidayMap["2025-04-01"]; ok {
		t.Error("pending holiday must not be displayed")
	}

	// March 2025 starts on a Saturday: six leading blanks, then day 1.
	march := result.Months[2]
	if march.Name != "Marzo" {
		t.Errorf("month name = %q", march.Name)
	}
	for i := 0; i < 6; i++ {
		if march.Cells[i].Day != 0 {
			t.Fatalf("cell %d should be blank, got day %d", i, march.Cells[i].Day)
		}
	}
	if march.Cells[6].Day != 1 {
		t.Fatalf("cell 6 should be day 1, got %d", march.Cells[6].Day)
	}
	if len(march.Cells) != 6+31 {
		t.Errorf("march has %d cells, want 37", len(march.Cells))
	}

	// Today is 2025-03-03: cell index 6 + 2.
	todayCell := march.Cells[8]
	if !todayCell.IsToday || !todayCell.IsHoliday || todayCell.DateKey != "2025-03-03" {
		t.Errorf("today cell wrong: %+v", todayCell)
	}
	if !march.Cells[9].IsHoliday {
		t.Error("2025-03-04 should be a holiday")
	}
	if march.Cells[9].IsToday {
		t.Error("only one cell may be today")
	}
}

// TestQueryGetCalendarYear_NoTodayInOtherYears pins IsToday to the real
// current year.
func TestQueryGetCalendarYear_NoTodayInOtherYears(t *testing.T) {
	store := &mockHolidayStore{}
	deps := GetCalendarDeps{HolidayStore: store, Now: fixedNow}

	result, err := QueryGetCalendarYear(context.Background(), GetCalendarQuery{Year: 2026}, deps)
	if err != nil {
		t.Fatalf("QueryGetCalendarYear failed: %v", err)
	}
	for _, month := range result.Months {
		for _, cell := range month.Cells {
			if cell.IsToday {
				t.Fatalf("cell %s marked today in year 2026", cell.DateKey)
			}
		}
	}
	if result.PrevYear != 2025 {
		t.Errorf("prev year = %d, want 2025", result.PrevYear)
	}
}

// TestQueryGetCalendarYear_ClampsMinYear rejects years before 2025.
func TestQueryGetCalendarYear_ClampsMinYear(t *testing.T) {
	deps := GetCalendarDeps{HolidayStore: &mockHolidayStore{}, Now: fixedNow}

	for _, year := range []int{1999, 2024, -3} {
		result, err := QueryGetCalendarYear(context.Background(), GetCalendarQuery{Year: year}, deps)
		if err != nil {
			t.Fatalf("QueryGetCalendarYear(%d) failed: %v", year, err)
		}
		if result.Year != MinCalendarYear {
			t.Errorf("year %d: clamped to %d, want %d", year, result.Year, MinCalendarYear)
		}
	}

	// Zero year falls back to the current year.
	result, err := QueryGetCalendarYear(context.Background(), GetCalendarQuery{}, deps)
	if err != nil {
		t.Fatalf("QueryGetCalendarYear failed: %v", err)
	}
	if result.Year != 2025 {
		t.Errorf("default year = %d, want 2025", result.Year)
	}
}
