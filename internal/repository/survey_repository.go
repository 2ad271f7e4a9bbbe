package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SurveyRepository stores one-time satisfaction surveys.
type SurveyRepository interface {
	Create(ctx context.Context, survey *domain.SatisfactionSurvey) error
	ExistsForTicket(ctx context.Context, ticketID string) (bool, error)
}

type surveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository builds repository.
func NewSurveyRepository(pool *pgxpool.Pool) SurveyRepository {
	return &surveyRepository{pool: pool}
}

func (r *surveyRepository) Create(ctx context.Context, survey *domain.SatisfactionSurvey) error {
	const query = `
        INSERT INTO satisfaction_surveys (ticket_id, rating, comment)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		survey.TicketID,
		survey.Rating,
		survey.Comment,
	).Scan(&survey.ID, &survey.CreatedAt)
}

func (r *surveyRepository) ExistsForTicket(ctx context.Context, ticketID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM satisfaction_surveys WHERE ticket_id=$1)`, ticketID).Scan(&exists)
	return exists, err
}
