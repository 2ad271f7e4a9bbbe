package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationRepository persists delivery attempt records.
type NotificationRepository interface {
	Create(ctx context.Context, record *domain.NotificationRecord) error
	UpdateOutcome(ctx context.Context, id string, status domain.DeliveryStatus, errText string, sentAt *time.Time) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.NotificationRecord, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, record *domain.NotificationRecord) error {
	const query = `
        INSERT INTO notification_records (ticket_id, event_kind, channel, recipient, subject, body, status, error_text, sent_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.TicketID,
		record.EventKind,
		record.Channel,
		record.Recipient,
		record.Subject,
		record.Body,
		record.Status,
		record.Error,
		record.SentAt,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *notificationRepository) UpdateOutcome(ctx context.Context, id string, status domain.DeliveryStatus, errText string, sentAt *time.Time) error {
	const query = `
        UPDATE notification_records SET status=$1, error_text=$2, sent_at=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, errText, sentAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.NotificationRecord, error) {
	const query = `
        SELECT id, ticket_id, event_kind, channel, recipient, subject, body, status, error_text, sent_at, created_at
        FROM notification_records WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationRecord
	for rows.Next() {
		var record domain.NotificationRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.EventKind,
			&record.Channel,
			&record.Recipient,
			&record.Subject,
			&record.Body,
			&record.Status,
			&record.Error,
			&record.SentAt,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
