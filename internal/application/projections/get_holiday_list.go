package projections

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/application/listutil"
	"feriados/internal/domain/holiday"
)

// HolidayListSortColumns are the columns /api/holidays may sort by.
var HolidayListSortColumns = []string{"start_date", "name", "status", "type"}

// HolidayListFilterKeys are the recognised filter query parameters.
var HolidayListFilterKeys = []string{"status", "type", "year"}

// GetHolidayListQuery carries query parameters.
type GetHolidayListQuery struct {
	Params listutil.ListParams
}

// GetHolidayListResult carries the query result.
type GetHolidayListResult struct {
	Holidays []holiday.Holiday
	Total    int
}

// GetHolidayListDeps holds dependencies for GetHolidayList.
type GetHolidayListDeps struct {
	HolidayStore holidayStore.Store
}

// QueryGetHolidayList retrieves the persisted holidays with optional
// filtering, search and sorting for the review page.
// PRE: Params came from listutil parsing (sort column already validated)
// POST: Result is filtered then sorted; default order is ascending start date
func QueryGetHolidayList(ctx context.Context, query GetHolidayListQuery, deps GetHolidayListDeps) (GetHolidayListResult, error) {
	filter := holidayStore.ListFilter{}
	if y := query.Params.Filters["year"]; y != "" {
		year, err := strconv.Atoi(y)
		if err == nil {
			filter.Year = year
		}
	}
	if s := query.Params.Filters["status"]; s != "" {
		filter.Statuses = []string{s}
	}

	holidays, err := deps.HolidayStore.List(ctx, filter)
	if err != nil {
		return GetHolidayListResult{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	if t := query.Params.Filters["type"]; t != "" {
		holidays = filterHolidays(holidays, func(h holiday.Holiday) bool { return h.Type == t })
	}
	if q := strings.ToLower(strings.TrimSpace(query.Params.Search)); q != "" {
		holidays = filterHolidays(holidays, func(h holiday.Holiday) bool {
			return strings.Contains(strings.ToLower(h.Name), q)
		})
	}

	sortHolidays(holidays, query.Params.SortParams)

	return GetHolidayListResult{Holidays: holidays, Total: len(holidays)}, nil
}

func filterHolidays(in []holiday.Holiday, keep func(holiday.Holiday) bool) []holiday.Holiday {
	out := in[:0]
	for _, h := range in {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

// sortHolidays orders in place. The store already returns ascending start
// date, so an empty sort column is a no-op.
func sortHolidays(holidays []holiday.Holiday, params listutil.SortParams) {
	if params.Sort == "" || params.Sort == "start_date" {
		if params.Dir == "desc" {
			reverse(holidays)
		}
		return
	}

	less := func(a, b holiday.Holiday) bool { return a.StartDate.Before(b.StartDate) }
	switch params.Sort {
	case "name":
		less = func(a, b holiday.Holiday) bool { return a.Name < b.Name }
	case "status":
		less = func(a, b holiday.Holiday) bool { return a.Status < b.Status }
	case "type":
		less = func(a, b holiday.Holiday) bool { return a.Type < b.Type }
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		if params.Dir == "desc" {
			return less(holidays[j], holidays[i])
		}
		return less(holidays[i], holidays[j])
	})
}

func reverse(holidays []holiday.Holiday) {
	for i, j := 0, len(holidays)-1; i < j; i, j = i+1, j-1 {
		holidays[i], holidays[j] = holidays[j], holidays[i]
	}
}
