package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventFilter captures listing parameters.
type EventFilter struct {
	Limit  int
	Offset int
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, event_date, event_time, image_url)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.ImageURL,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET title=$1, description=$2, event_date=$3, event_time=$4, image_url=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.ImageURL,
		event.ID,
	).Scan(&event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `
        SELECT id, title, description, event_date, event_time, image_url, created_at, updated_at
        FROM events WHERE id=$1`
	var event domain.Event
	if err := scanEvent(r.pool.QueryRow(ctx, query, id), &event); err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	const query = `
        SELECT id, title, description, event_date, event_time, image_url, created_at, updated_at
        FROM events
        ORDER BY created_at DESC, id
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var event domain.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row, event *domain.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.ImageURL,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}
