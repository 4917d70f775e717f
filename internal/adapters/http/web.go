package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"feriados/internal/adapters/email"
	"feriados/internal/adapters/http/middleware"
	"feriados/internal/adapters/source/feriados"
	accountStore "feriados/internal/adapters/storage/account"
	holidayStore "feriados/internal/adapters/storage/holiday"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	HolidayStore holidayStore.Store
}

// loadCSRFKey reads the CSRF secret from FERIADOS_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("FERIADOS_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("FERIADOS_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("FERIADOS_ENV") == "production" {
		log.Fatal("FERIADOS_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set FERIADOS_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global holiday source instance (set by SetHolidaySource)
var holidaySource feriados.Source

// SetHolidaySource sets the upstream holiday source for imports.
func SetHolidaySource(src feriados.Source) {
	holidaySource = src
}

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// operatorEmail receives import summary notifications
var operatorEmail string

// SetEmailSender sets the global email sender and the operator address.
func SetEmailSender(sender email.Sender, operator string) {
	emailSender = sender
	operatorEmail = operator
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("FERIADOS_ENV") == "production"
	if holidaySource == nil {
		holidaySource = feriados.NewHTTPSource(os.Getenv("FERIADOS_SOURCE_URL"))
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleCalendarPage)
	mux.HandleFunc("/calendar.ics", handleCalendarICS)
	mux.HandleFunc("/api/public/holidays", handlePublicHolidays)

	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/holidays", handleHolidaysPage)

	mux.HandleFunc("/api/holidays", handleHolidaysAPI)
	mux.HandleFunc("/api/import-holidays", handleImportHolidays)
	mux.HandleFunc("/api/save-approved-holidays", handleSaveApprovedHolidays)
	mux.HandleFunc("/api/delete-holidays", handleDeleteHolidays)
	mux.HandleFunc("/api/delete-all-holidays", handleDeleteAllHolidays)
}
