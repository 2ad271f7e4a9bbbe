package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssignmentRuleRepository reads routing configuration. Rules are maintained
// by admin screens outside this core; only active rules matter here.
type AssignmentRuleRepository interface {
	ListActive(ctx context.Context) ([]domain.AssignmentRule, error)
}

type assignmentRuleRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRuleRepository builds repository.
func NewAssignmentRuleRepository(pool *pgxpool.Pool) AssignmentRuleRepository {
	return &assignmentRuleRepository{pool: pool}
}

func (r *assignmentRuleRepository) ListActive(ctx context.Context) ([]domain.AssignmentRule, error) {
	const query = `
        SELECT id, team_id, system_id, category_id, priority, active_flag, created_at, updated_at
        FROM assignment_rules WHERE active_flag ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentRule
	for rows.Next() {
		var rule domain.AssignmentRule
		if err := rows.Scan(
			&rule.ID,
			&rule.TeamID,
			&rule.SystemID,
			&rule.CategoryID,
			&rule.Priority,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
