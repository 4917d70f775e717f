// feriadosctl is the ops CLI: imports, destructive maintenance and password
// hashing without going through the web UI.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"

	"feriados/internal/adapters/source/feriados"
	"feriados/internal/adapters/storage"
	holidayStore "feriados/internal/adapters/storage/holiday"
	"feriados/internal/application/orchestrators"
	"feriados/internal/commands"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "feriadosctl",
		Usage: "operational tasks for the feriados service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "path to the SQLite database",
				Value:   "feriados.db",
				EnvVars: []string{"FERIADOS_DB"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "fetch official holidays for a year",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Usage: "calendar year to import", Required: true},
					&cli.BoolFlag{Name: "commit", Usage: "persist new holidays instead of previewing"},
				},
				Action: runImport,
			},
			{
				Name:  "delete-all",
				Usage: "remove every stored holiday",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm the wipe"},
				},
				Action: runDeleteAll,
			},
			{
				Name:   "hash-password",
				Usage:  "hash a password for manual account setup",
				Action: runHashPassword,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openStore(c *cli.Context) (*sql.DB, holidayStore.Store, error) {
	dbPath := c.String("db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, holidayStore.NewSQLiteStore(db), nil
}

func runImport(c *cli.Context) error {
	db, store, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := orchestrators.ExecuteImportHolidays(context.Background(), orchestrators.ImportHolidaysInput{
		Year:    c.Int("year"),
		Preview: !c.Bool("commit"),
	}, orchestrators.ImportHolidaysDeps{
		Source:       feriados.NewHTTPSource(os.Getenv("FERIADOS_SOURCE_URL")),
		HolidayStore: store,
		GenerateID:   func() string { return uuid.New().String() },
	})
	if err != nil {
		return err
	}

	if result.Preview {
		for _, cand := range result.Candidates {
			marker := " "
			if cand.ExistsInDB {
				marker = "="
			}
			fmt.Printf("%s %s  %-12s %s\n", marker, cand.StartDate.Format("2006-01-02"), cand.Type, cand.Name)
		}
		fmt.Printf("total=%d new=%d existing=%d (preview, use --commit to persist)\n",
			result.Stats.Total, result.Stats.New, result.Stats.Existing)
		return nil
	}

	fmt.Printf("imported=%d skipped=%d errors=%d\n", result.Imported, result.Skipped, result.Errors)
	return nil
}

func runDeleteAll(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("refusing to delete all holidays without --yes", 1)
	}

	db, store, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := orchestrators.ExecuteDeleteAll(context.Background(), orchestrators.DeleteAllInput{
		Confirm: true,
	}, orchestrators.DeleteHolidaysDeps{HolidayStore: store})
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d holidays\n", result.DeletedCount)
	return nil
}

func runHashPassword(c *cli.Context) error {
	password, err := commands.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	hash, err := commands.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
