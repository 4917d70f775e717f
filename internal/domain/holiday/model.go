package holiday

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire and storage format.
const DateLayout = "2006-01-02"

// Holiday type constants — legal classification of the holiday.
// The names follow the official Argentine classification used by the source API.
const (
	TypeFixed     = "inamovible"   // fixed-date holiday
	TypeShiftable = "trasladable"  // movable holiday, may be shifted to a Monday
	TypeBridge    = "no_laborable" // non-working bridge day (long weekend)
	TypeCustom    = "custom"       // operator-created entry
)

// Holiday status constants — review workflow state.
// StatusExisting is a transient preview-only marker and is never persisted.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusWorking  = "working"
	StatusCustom   = "custom"
	StatusExisting = "existing"
)

// ValidTypes contains all valid holiday type values.
var ValidTypes = []string{TypeFixed, TypeShiftable, TypeBridge, TypeCustom}

// ValidStatuses contains all status values a persisted holiday may carry.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected, StatusWorking, StatusCustom}

// DisplayStatuses are the statuses shown on the public calendar.
var DisplayStatuses = []string{StatusApproved, StatusWorking, StatusCustom}

// TempIDPrefix marks identifiers of preview candidates that have not been
// persisted. Store-assigned ids are UUIDs and never start with this prefix.
const TempIDPrefix = "temp_"

// Domain errors
var (
	ErrEmptyName      = errors.New("holiday name cannot be empty")
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
	ErrInvalidDates   = errors.New("start date must be before or equal to end date")
	ErrInvalidType    = errors.New("type must be one of: inamovible, trasladable, no_laborable, custom")
	ErrInvalidStatus  = errors.New("status must be one of: pending, approved, rejected, working, custom")
)

// Holiday represents a named date range with a legal classification and a
// review status.
type Holiday struct {
	ID          string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Description string
	Type        string
	Status      string
	IsOfficial  bool
}

// Validate checks if the Holiday has valid persistable data.
// PRE: Holiday struct is populated
// POST: Returns nil if valid, error otherwise
func (h *Holiday) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if h.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if h.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if h.StartDate.After(h.EndDate) {
		return ErrInvalidDates
	}
	if !isValidType(h.Type) {
		return ErrInvalidType
	}
	if !isValidStatus(h.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Contains returns true if the given date falls within this holiday.
// PRE: date is a valid time
// INVARIANT: Holiday fields are not mutated
func (h *Holiday) Contains(date time.Time) bool {
	d := civil(date)
	start := civil(h.StartDate)
	end := civil(h.EndDate)
	return !d.Before(start) && !d.After(end)
}

// DuplicateKey returns the key used to detect whether a candidate already
// exists in the store: exact (startDate, name) string equality.
// INVARIANT: two holidays with equal keys are considered the same entry
func (h *Holiday) DuplicateKey() string {
	return h.StartDate.Format(DateLayout) + "_" + h.Name
}

// IsPersisted reports whether the id was assigned by the store, as opposed to
// a session-local preview id.
func (h *Holiday) IsPersisted() bool {
	return h.ID != "" && !strings.HasPrefix(h.ID, TempIDPrefix)
}

// IsDisplayable reports whether the holiday appears on the public calendar.
func (h *Holiday) IsDisplayable() bool {
	for _, s := range DisplayStatuses {
		if h.Status == s {
			return true
		}
	}
	return false
}

// MapSourceType maps the external source classification to the internal type
// enum. Anything unrecognized defaults to a fixed holiday.
func MapSourceType(tipo string) string {
	switch tipo {
	case "trasladable":
		return TypeShiftable
	case "puente":
		return TypeBridge
	default:
		return TypeFixed
	}
}

// civil truncates a time to its civil date (local year-month-day, midnight).
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isValidType(t string) bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}
