package repository

import (
	"context"
	"database/sql"

	"github.com/ecoleta/ecoleta-go/internal/model"
)

// MaterialRepository reads and seeds material types.
type MaterialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(db *sql.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// ListActive returns active material types ordered by name.
func (r *MaterialRepository) ListActive(ctx context.Context) ([]model.MaterialType, error) {
	query := `SELECT id, name, description, active FROM material_types WHERE active = TRUE ORDER BY name`
	return r.query(ctx, query)
}

// FindActiveByIDs returns the active material types among ids. Unknown and
// inactive ids are silently absent from the result.
func (r *MaterialRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]model.MaterialType, error) {
	if len(ids) == 0 {
		return []model.MaterialType{}, nil
	}

	query := `SELECT id, name, description, active FROM material_types
		WHERE id IN (` + placeholders(len(ids)) + `) AND active = TRUE`
	return r.query(ctx, query, int64Args(ids)...)
}

// Count returns the number of material types, active or not.
func (r *MaterialRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM material_types`).Scan(&n)
	return n, err
}

// Create inserts an active material type and sets its generated ID.
func (r *MaterialRepository) Create(ctx context.Context, m *model.MaterialType) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO material_types (name, description, active) VALUES (?, ?, ?)`,
		m.Name, nullString(m.Description), m.Active,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *MaterialRepository) query(ctx context.Context, query string, args ...any) ([]model.MaterialType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := []model.MaterialType{}
	for rows.Next() {
		var row materialRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Active); err != nil {
			return nil, err
		}
		materials = append(materials, row.toModel())
	}

	return materials, rows.Err()
}
