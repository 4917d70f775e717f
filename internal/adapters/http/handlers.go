package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"feriados/internal/adapters/http/middleware"
	"feriados/internal/adapters/ical"
	"feriados/internal/adapters/source/feriados"
	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/application/listutil"
	"feriados/internal/application/orchestrators"
	"feriados/internal/application/projections"
	holidayDomain "feriados/internal/domain/holiday"
	"feriados/internal/domain/review"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// jsonResult writes the standard API envelope.
func jsonResult(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// jsonError writes a failure envelope with the given message.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResult(w, status, map[string]any{"success": false, "message": message})
}

// jsonInternalError logs the real error and returns a generic failure envelope.
func jsonInternalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	jsonError(w, http.StatusInternalServerError, "internal server error")
}

const templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isAdmin":      func() bool { return role == "admin" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatDate": func(t time.Time) string { return t.Format(holidayDomain.DateLayout) },
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != "admin" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// holidayPayload is the JSON wire shape for a holiday. Dates travel as
// YYYY-MM-DD strings.
type holidayPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	IsOfficial  bool   `json:"isOfficial"`
	ExistsInDB  bool   `json:"existsInDB,omitempty"`
}

func toPayload(h holidayDomain.Holiday, existsInDB bool) holidayPayload {
	return holidayPayload{
		ID:          h.ID,
		Name:        h.Name,
		StartDate:   h.StartDate.Format(holidayDomain.DateLayout),
		EndDate:     h.EndDate.Format(holidayDomain.DateLayout),
		Description: h.Description,
		Type:        h.Type,
		Status:      h.Status,
		IsOfficial:  h.IsOfficial,
		ExistsInDB:  existsInDB,
	}
}

func toPayloads(holidays []holidayDomain.Holiday) []holidayPayload {
	out := make([]holidayPayload, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, toPayload(h, false))
	}
	return out
}

func fromPayload(p holidayPayload) (holidayDomain.Holiday, error) {
	start, err := time.Parse(holidayDomain.DateLayout, p.StartDate)
	if err != nil {
		return holidayDomain.Holiday{}, fmt.Errorf("startDate must be YYYY-MM-DD")
	}
	end := start
	if p.EndDate != "" {
		end, err = time.Parse(holidayDomain.DateLayout, p.EndDate)
		if err != nil {
			return holidayDomain.Holiday{}, fmt.Errorf("endDate must be YYYY-MM-DD")
		}
	}
	return holidayDomain.Holiday{
		ID:          p.ID,
		Name:        p.Name,
		StartDate:   start,
		EndDate:     end,
		Description: p.Description,
		Type:        p.Type,
		Status:      p.Status,
		IsOfficial:  p.IsOfficial,
	}, nil
}

// parseYearParam reads ?year= with a fallback to the current year.
func parseYearParam(r *http.Request) int {
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			return year
		}
	}
	return timeNow().Year()
}

// handleCalendarPage handles GET / with the public year calendar.
func handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetCalendarYear(r.Context(), projections.GetCalendarQuery{
		Year: parseYearParam(r),
	}, projections.GetCalendarDeps{
		HolidayStore: stores.HolidayStore,
		Now:          timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	data := map[string]any{
		"Calendar": result,
	}
	// Clicking a highlighted day links back here with ?day=; the first
	// holiday covering that day becomes the detail view.
	if day := r.URL.Query().Get("day"); day != "" {
		if detail, ok := projections.FirstHolidayOn(result.HolidayMap, day); ok {
			data["Detail"] = detail
			data["DetailDay"] = day
		}
	}

	renderTemplate(w, r, "calendar.html", data)
}

// handlePublicHolidays handles GET /api/public/holidays?year= with the
// displayable holidays.
func handlePublicHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	year := parseYearParam(r)
	if year < projections.MinCalendarYear {
		year = projections.MinCalendarYear
	}
	holidays, err := stores.HolidayStore.List(r.Context(), holidayStore.ListFilter{
		Year:     year,
		Statuses: holidayDomain.DisplayStatuses,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayloads(holidays))
}

// handleCalendarICS handles GET /calendar.ics?year= with an iCalendar feed.
func handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	year := parseYearParam(r)
	if year < projections.MinCalendarYear {
		year = projections.MinCalendarYear
	}
	holidays, err := stores.HolidayStore.List(r.Context(), holidayStore.ListFilter{
		Year:     year,
		Statuses: holidayDomain.DisplayStatuses,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="feriados-%d.ics"`, year))
	if err := ical.WriteCalendar(w, holidays); err != nil {
		slog.Error("ics_encode_failed", "year", year, "error", err.Error())
	}
}

// handleLogin handles GET (form) and POST (authenticate) for /login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to the review page
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/holidays", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/holidays", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("feriados_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHolidaysPage handles GET /holidays with the review workspace.
func handleHolidaysPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if sess.Role != "admin" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	result, err := projections.QueryGetHolidayList(r.Context(), projections.GetHolidayListQuery{
		Params: listutil.ParseListParams(r.URL.Query(), projections.HolidayListSortColumns, projections.HolidayListFilterKeys),
	}, projections.GetHolidayListDeps{HolidayStore: stores.HolidayStore})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "holidays.html", map[string]any{
		"Holidays":  result.Holidays,
		"Total":     result.Total,
		"Year":      timeNow().Year(),
		"CSRFToken": csrf.Token(r),
	})
}

// handleHolidaysAPI handles GET (list) and POST (manual create) for /api/holidays.
func handleHolidaysAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		result, err := projections.QueryGetHolidayList(ctx, projections.GetHolidayListQuery{
			Params: listutil.ParseListParams(r.URL.Query(), projections.HolidayListSortColumns, projections.HolidayListFilterKeys),
		}, projections.GetHolidayListDeps{HolidayStore: stores.HolidayStore})
		if err != nil {
			jsonInternalError(w, err)
			return
		}
		jsonResult(w, http.StatusOK, map[string]any{
			"success":  true,
			"holidays": toPayloads(result.Holidays),
			"total":    result.Total,
		})
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input holidayPayload
		if err := strictDecode(r, &input); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		h, err := fromPayload(input)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.ID = generateID()
		if h.Status == "" {
			h.Status = holidayDomain.StatusCustom
		}
		if h.Type == "" {
			h.Type = holidayDomain.TypeCustom
		}
		if err := h.Validate(); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.HolidayStore.Save(ctx, h); err != nil {
			jsonInternalError(w, err)
			return
		}
		jsonResult(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "holiday created",
			"holiday": toPayload(h, false),
		})
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleImportHolidays handles POST /api/import-holidays.
// temporary=true previews candidates; temporary=false commits new holidays.
func handleImportHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		Year      int  `json:"year"`
		Temporary bool `json:"temporary"`
	}
	if err := strictDecode(r, &input); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Year == 0 {
		input.Year = timeNow().Year()
	}

	result, err := orchestrators.ExecuteImportHolidays(r.Context(), orchestrators.ImportHolidaysInput{
		Year:    input.Year,
		Preview: input.Temporary,
	}, orchestrators.ImportHolidaysDeps{
		Source:        holidaySource,
		HolidayStore:  stores.HolidayStore,
		EmailSender:   emailSender,
		OperatorEmail: operatorEmail,
		GenerateID:    generateID,
	})
	if err != nil {
		var unavailable *feriados.SourceUnavailableError
		if errors.As(err, &unavailable) {
			jsonError(w, http.StatusInternalServerError, unavailable.Message)
			return
		}
		jsonInternalError(w, err)
		return
	}

	if result.Preview {
		payloads := make([]holidayPayload, 0, len(result.Candidates))
		for _, c := range result.Candidates {
			payloads = append(payloads, toPayload(c.Holiday, c.ExistsInDB))
		}
		jsonResult(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  fmt.Sprintf("%d feriados encontrados para %d", result.Stats.Total, input.Year),
			"holidays": payloads,
			"stats":    result.Stats,
		})
		return
	}

	jsonResult(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("importación de %d completada", input.Year),
		"results": map[string]int{
			"imported": result.Imported,
			"skipped":  result.Skipped,
			"errors":   result.Errors,
		},
	})
}

// handleSaveApprovedHolidays handles POST /api/save-approved-holidays with a
// batch of reviewed candidates and a target status.
func handleSaveApprovedHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		Holidays []holidayPayload `json:"holidays"`
		Status   string           `json:"status"`
	}
	if err := strictDecode(r, &input); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Status == "" {
		input.Status = holidayDomain.StatusApproved
	}

	candidates := make([]review.Candidate, 0, len(input.Holidays))
	for _, p := range input.Holidays {
		h, err := fromPayload(p)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		candidates = append(candidates, review.Candidate{Holiday: h, ExistsInDB: p.ExistsInDB})
	}

	result, err := orchestrators.ExecuteBulkStatus(r.Context(), orchestrators.BulkStatusInput{
		Candidates: candidates,
		Status:     input.Status,
	}, orchestrators.BulkStatusDeps{
		HolidayStore: stores.HolidayStore,
		GenerateID:   generateID,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrNothingToProcess) {
			jsonResult(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "no hay feriados para procesar",
			})
			return
		}
		var verr *orchestrators.ValidationError
		if errors.As(err, &verr) {
			jsonError(w, http.StatusBadRequest, verr.Message)
			return
		}
		jsonInternalError(w, err)
		return
	}

	jsonResult(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("%d feriados guardados", result.Processed),
		"processed":  result.Processed,
		"removedIds": result.RemovedIDs,
	})
}

// handleDeleteHolidays handles POST /api/delete-holidays with a list of ids.
func handleDeleteHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		IDs []string `json:"ids"`
	}
	if err := strictDecode(r, &input); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := orchestrators.ExecuteDeleteHolidays(r.Context(), orchestrators.DeleteHolidaysInput{
		IDs: input.IDs,
	}, orchestrators.DeleteHolidaysDeps{HolidayStore: stores.HolidayStore})
	if err != nil {
		var verr *orchestrators.ValidationError
		if errors.As(err, &verr) {
			jsonError(w, http.StatusBadRequest, verr.Message)
			return
		}
		jsonInternalError(w, err)
		return
	}

	jsonResult(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("%d feriados eliminados", result.DeletedCount),
		"deletedCount": result.DeletedCount,
	})
}

// handleDeleteAllHolidays handles POST /api/delete-all-holidays. The request
// itself is the confirmation; the UI gates it behind a dialog.
func handleDeleteAllHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := orchestrators.ExecuteDeleteAll(r.Context(), orchestrators.DeleteAllInput{
		Confirm: true,
	}, orchestrators.DeleteHolidaysDeps{HolidayStore: stores.HolidayStore})
	if err != nil {
		jsonInternalError(w, err)
		return
	}

	jsonResult(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("%d feriados eliminados", result.DeletedCount),
		"deletedCount": result.DeletedCount,
	})
}
