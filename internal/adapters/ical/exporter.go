// Package ical renders holidays as an iCalendar feed that calendar
// applications can subscribe to.
package ical

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"feriados/internal/domain/holiday"
)

const (
	productID    = "-//feriados//calendario//ES"
	calendarName = "Feriados"
	icalDomain   = "feriados.local"
)

// WriteCalendar encodes the given holidays as an iCalendar (RFC 5545) feed.
// Each holiday becomes one all-day VEVENT; multi-day holidays span their full
// closed date range.
// PRE: holidays have valid start/end dates (end >= start)
// POST: w receives a complete VCALENDAR; returns the first encode error
func WriteCalendar(w io.Writer, holidays []holiday.Holiday) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", calendarName)

	for _, h := range holidays {
		cal.Children = append(cal.Children, newEvent(h).Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

func newEvent(h holiday.Holiday) *ical.Event {
	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", h.ID, icalDomain))
	e.Props.SetText(ical.PropSummary, h.Name)
	if h.Description != "" {
		e.Props.SetText(ical.PropDescription, h.Description)
	}

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDate(h.StartDate)
	e.Props.Set(start)

	// DTEND is exclusive for all-day events, so a single-day holiday ends
	// the following day.
	end := ical.NewProp(ical.PropDateTimeEnd)
	end.SetDate(h.EndDate.AddDate(0, 0, 1))
	e.Props.Set(end)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(time.Now().UTC())
	e.Props.Set(stamp)

	return e
}
