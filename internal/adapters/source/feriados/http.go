package feriados

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the production endpoint of the ArgentinaDatos API.
const DefaultBaseURL = "https://api.argentinadatos.com"

// maxResponseSize bounds the payload read from the source (a year has a few
// dozen holidays; 1 MB is far beyond any legitimate response).
const maxResponseSize = 1 << 20

// HTTPSource implements Source against the ArgentinaDatos HTTP API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a Source for the given base URL. An empty baseURL
// selects the production API.
func NewHTTPSource(baseURL string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchYear retrieves the official holidays for a year.
// PRE: year is a plausible calendar year
// POST: Returns the raw records, or a SourceUnavailableError; never partial data
func (s *HTTPSource) FetchYear(ctx context.Context, year int) ([]Record, error) {
	url := fmt.Sprintf("%s/v1/feriados/%d", s.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Message: fmt.Sprintf("holiday source unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("feriados_source_bad_status", "year", year, "status", resp.StatusCode)
		return nil, &SourceUnavailableError{Message: fmt.Sprintf("holiday source returned status %d", resp.StatusCode)}
	}

	body := io.LimitReader(resp.Body, maxResponseSize)
	var records []Record
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		slog.Warn("feriados_source_bad_payload", "year", year, "error", err.Error())
		return nil, &SourceUnavailableError{Message: "holiday source response is not a list"}
	}

	slog.Info("feriados_source_fetched", "year", year, "count", len(records))
	return records, nil
}
