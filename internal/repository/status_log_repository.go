package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StatusLogRepository stores the append-only status transition chain.
type StatusLogRepository interface {
	Create(ctx context.Context, entry *domain.StatusLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusLogEntry, error)
}

type statusLogRepository struct {
	pool *pgxpool.Pool
}

// NewStatusLogRepository builds repository.
func NewStatusLogRepository(pool *pgxpool.Pool) StatusLogRepository {
	return &statusLogRepository{pool: pool}
}

func (r *statusLogRepository) Create(ctx context.Context, entry *domain.StatusLogEntry) error {
	const query = `
        INSERT INTO status_log (ticket_id, prior_status, new_status, note, actor_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Prior,
		entry.New,
		entry.Note,
		entry.ActorID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusLogEntry, error) {
	const query = `
        SELECT id, ticket_id, prior_status, new_status, note, actor_id, created_at
        FROM status_log WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusLogEntry
	for rows.Next() {
		var entry domain.StatusLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Prior,
			&entry.New,
			&entry.Note,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
