package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityProfileRepository reads SLA target configuration.
type PriorityProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.PriorityProfile, error)
	List(ctx context.Context) ([]domain.PriorityProfile, error)
}

type priorityProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityProfileRepository builds repository.
func NewPriorityProfileRepository(pool *pgxpool.Pool) PriorityProfileRepository {
	return &priorityProfileRepository{pool: pool}
}

func (r *priorityProfileRepository) GetByID(ctx context.Context, id string) (*domain.PriorityProfile, error) {
	const query = `
        SELECT id, name, severity_rank, response_target_minutes, resolve_target_minutes, created_at, updated_at
        FROM priority_profiles WHERE id=$1`
	var profile domain.PriorityProfile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.SeverityRank,
		&profile.ResponseTargetMinutes,
		&profile.ResolveTargetMinutes,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *priorityProfileRepository) List(ctx context.Context) ([]domain.PriorityProfile, error) {
	const query = `
        SELECT id, name, severity_rank, response_target_minutes, resolve_target_minutes, created_at, updated_at
        FROM priority_profiles ORDER BY severity_rank ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PriorityProfile
	for rows.Next() {
		var profile domain.PriorityProfile
		if err := rows.Scan(
			&profile.ID,
			&profile.Name,
			&profile.SeverityRank,
			&profile.ResponseTargetMinutes,
			&profile.ResolveTargetMinutes,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
