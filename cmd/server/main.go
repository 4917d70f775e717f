package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "feriados/internal/adapters/email"
	web "feriados/internal/adapters/http"
	"feriados/internal/adapters/source/feriados"
	"feriados/internal/adapters/storage"
	accountStore "feriados/internal/adapters/storage/account"
	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set env vars directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("FERIADOS_DB", "feriados.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore: acctStore,
		HolidayStore: holidayStore.NewSQLiteStore(db),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("FERIADOS_ADMIN_EMAIL", "admin@feriados.local")
	adminPassword := envOrDefault("FERIADOS_ADMIN_PASSWORD", "cambiame-ahora-mismo")
	seedDeps := orchestrators.SeedAdminDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Upstream holiday source (empty URL selects the production API)
	web.SetHolidaySource(feriados.NewHTTPSource(os.Getenv("FERIADOS_SOURCE_URL")))

	// Configure email sender
	resendKey := os.Getenv("FERIADOS_RESEND_KEY")
	operator := envOrDefault("FERIADOS_OPERATOR_EMAIL", adminEmail)
	if resendKey != "" {
		from := envOrDefault("FERIADOS_RESEND_FROM", "Feriados <noreply@feriados.local>")
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, from), operator)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), operator)
		if os.Getenv("FERIADOS_ENV") == "production" {
			log.Println("WARNING: FERIADOS_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set FERIADOS_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux("internal/adapters/http/static", stores)

	addr := envOrDefault("FERIADOS_ADDR", ":8080")
	log.Printf("Feriados %s starting on %s (env=%s)", version, addr, envOrDefault("FERIADOS_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
