package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LookupRepository reads the classification catalogs (categories and
// supported systems) maintained outside this core.
type LookupRepository interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetSystem(ctx context.Context, id string) (*domain.SupportSystem, error)
}

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository instantiates the repository.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

func (r *lookupRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := r.pool.QueryRow(ctx,
		`SELECT id, name, active_flag FROM categories WHERE id=$1`, id,
	).Scan(&category.ID, &category.Name, &category.IsActive); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *lookupRepository) GetSystem(ctx context.Context, id string) (*domain.SupportSystem, error) {
	var system domain.SupportSystem
	if err := r.pool.QueryRow(ctx,
		`SELECT id, name, active_flag FROM support_systems WHERE id=$1`, id,
	).Scan(&system.ID, &system.Name, &system.IsActive); err != nil {
		return nil, err
	}
	return &system, nil
}
