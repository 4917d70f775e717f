// Package feriados provides access to the external public-holiday source
// (the ArgentinaDatos API).
package feriados

import "context"

// Record is a single holiday as returned by the external source.
type Record struct {
	Fecha  string `json:"fecha"`  // date, YYYY-MM-DD
	Tipo   string `json:"tipo"`   // source classification
	Nombre string `json:"nombre"` // display name
}

// Source is the interface for retrieving a year's official holidays.
// Implementations return a SourceUnavailableError when the response cannot be
// trusted; no partial external data is ever returned.
type Source interface {
	FetchYear(ctx context.Context, year int) ([]Record, error)
}

// SourceUnavailableError reports that the external source returned a
// non-success status, a malformed payload, or an implausibly short result.
type SourceUnavailableError struct {
	Message string
}

// Error implements the error interface.
// PRE: e.Message is set.
// POST: returns the error message string.
func (e *SourceUnavailableError) Error() string {
	return e.Message
}
