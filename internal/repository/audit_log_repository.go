package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditLogRepository stores append-only audit entries. There is no update or
// delete path on purpose.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByEntity(ctx context.Context, entityKind, entityID string, limit int) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_log (entity_kind, entity_id, action, before_state, after_state, actor_id, source_ip, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.EntityKind,
		entry.EntityID,
		entry.Action,
		entry.Before,
		entry.After,
		entry.ActorID,
		entry.SourceIP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityKind, entityID string, limit int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, entity_kind, entity_id, action, before_state, after_state, actor_id, source_ip, user_agent, created_at
        FROM audit_log WHERE entity_kind=$1 AND entity_id=$2 ORDER BY created_at ASC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, entityKind, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EntityKind,
			&entry.EntityID,
			&entry.Action,
			&entry.Before,
			&entry.After,
			&entry.ActorID,
			&entry.SourceIP,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
