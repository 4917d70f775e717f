package holiday

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "feriados/internal/domain/holiday"
)

const columns = "id, name, start_date, end_date, description, type, status, is_official"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new HolidayStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Holiday by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Holiday, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM holiday WHERE id = ?", id)
	entity, err := scanHoliday(row)
	if err == sql.ErrNoRows {
		return domain.Holiday{}, fmt.Errorf("holiday not found: %w", err)
	}
	return entity, err
}

// Save persists a Holiday to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Holiday) error {
	_, err := s.db.ExecContext(ctx, saveSQL, saveArgs(entity)...)
	return err
}

// SaveMany persists all holidays in a single transaction.
// PRE: every entity has been validated
// POST: All entities are persisted, or none on error
func (s *SQLiteStore) SaveMany(ctx context.Context, values []domain.Holiday) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, entity := range values {
		if _, err := tx.ExecContext(ctx, saveSQL, saveArgs(entity)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a Holiday from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM holiday WHERE id = ?", id)
	return err
}

// DeleteMany removes all listed ids in a single transaction.
// PRE: ids is non-empty
// POST: Every listed entity is removed, or none on error
func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM holiday WHERE id = ?", id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// List retrieves holidays matching the filter, ordered by start date.
// PRE: filter has valid parameters
// POST: Returns matching entities ascending by start_date
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Holiday, error) {
	query := "SELECT " + columns + " FROM holiday"
	var conds []string
	var args []any

	if filter.Year != 0 {
		conds = append(conds, "start_date >= ? AND start_date <= ?")
		args = append(args, fmt.Sprintf("%04d-01-01", filter.Year), fmt.Sprintf("%04d-12-31", filter.Year))
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Statuses)), ",")
		conds = append(conds, "status IN ("+placeholders+")")
		for _, st := range filter.Statuses {
			args = append(args, st)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Holiday
	for rows.Next() {
		entity, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListIDs returns every persisted holiday id.
// POST: Returns all ids, in no particular order
func (s *SQLiteStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM holiday")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindByNameAndStartDate retrieves the holiday with an exact (name, startDate) match.
// PRE: name is non-empty
// POST: Returns the entity or sql.ErrNoRows if absent
func (s *SQLiteStore) FindByNameAndStartDate(ctx context.Context, name string, startDate time.Time) (domain.Holiday, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM holiday WHERE name = ? AND start_date = ?",
		name, startDate.Format(domain.DateLayout),
	)
	return scanHoliday(row)
}

// Count returns the number of persisted holidays.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM holiday").Scan(&n)
	return n, err
}

const saveSQL = "INSERT INTO holiday (" + columns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?) " +
	"ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, " +
	"end_date=excluded.end_date, description=excluded.description, type=excluded.type, " +
	"status=excluded.status, is_official=excluded.is_official"

func saveArgs(entity domain.Holiday) []any {
	return []any{
		entity.ID,
		entity.Name,
		entity.StartDate.Format(domain.DateLayout),
		entity.EndDate.Format(domain.DateLayout),
		entity.Description,
		entity.Type,
		entity.Status,
		boolToInt(entity.IsOfficial),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHoliday(row rowScanner) (domain.Holiday, error) {
	var entity domain.Holiday
	var startStr, endStr string
	var official int
	err := row.Scan(&entity.ID, &entity.Name, &startStr, &endStr, &entity.Description, &entity.Type, &entity.Status, &official)
	if err != nil {
		return domain.Holiday{}, err
	}
	entity.StartDate, _ = time.Parse(domain.DateLayout, startStr)
	entity.EndDate, _ = time.Parse(domain.DateLayout, endStr)
	entity.IsOfficial = official != 0
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
