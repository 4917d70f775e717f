package holiday

import (
	"context"
	"time"

	domain "feriados/internal/domain/holiday"
)

// ListFilter narrows List results.
type ListFilter struct {
	Year     int      // when non-zero, only holidays whose start date falls in this year
	Statuses []string // when non-empty, status-set membership filter
}

// Store persists Holiday state.
// List results are always ordered ascending by start date.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Holiday, error)
	Save(ctx context.Context, value domain.Holiday) error
	// SaveMany persists all holidays in a single transaction.
	SaveMany(ctx context.Context, values []domain.Holiday) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes all listed ids in a single transaction; either every
	// document disappears or the transaction is rolled back.
	DeleteMany(ctx context.Context, ids []string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Holiday, error)
	ListIDs(ctx context.Context) ([]string, error)
	FindByNameAndStartDate(ctx context.Context, name string, startDate time.Time) (domain.Holiday, error)
	Count(ctx context.Context) (int, error)
}
