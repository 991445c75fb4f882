package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ecoleta/ecoleta-go/internal/model"
)

var (
	ErrPickupNotFound    = errors.New("pickup request not found")
	ErrDuplicateProtocol = errors.New("protocol already exists")
)

// PickupRepository handles pickup request persistence operations.
type PickupRepository struct {
	db *sql.DB
}

// NewPickupRepository creates a new PickupRepository.
func NewPickupRepository(db *sql.DB) *PickupRepository {
	return &PickupRepository{db: db}
}

// Create inserts the request row and its material associations in one
// transaction, then returns the stored request.
func (r *PickupRepository) Create(ctx context.Context, req model.PickupRequest) (*model.PickupRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO pickup_requests
			(protocol, full_name, email, phone, street, number, neighborhood, city, suggested_date, status, justification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Protocol, req.FullName, req.Email, req.Phone, req.Street, req.Number,
		req.Neighborhood, req.City, req.SuggestedDate.String(), string(req.Status),
		nullStringPtr(req.Justification),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return nil, ErrDuplicateProtocol
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, m := range req.Materials {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pickup_request_materials (pickup_request_id, material_type_id) VALUES (?, ?)`,
			id, m.ID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a pickup request with its materials.
func (r *PickupRepository) GetByID(ctx context.Context, id int64) (*model.PickupRequest, error) {
	var row pickupRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+pickupColumns+` FROM pickup_requests WHERE id = ?`, id,
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPickupNotFound
		}
		return nil, err
	}

	materials, err := r.materialsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	req := toPickupRequest(row, materials[id])
	return &req, nil
}

// List returns pickup requests matching filter, newest first.
func (r *PickupRepository) List(ctx context.Context, filter model.PickupFilter) ([]model.PickupRequest, error) {
	query, args := listQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []pickupRow
	for rows.Next() {
		var row pickupRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(raw))
	for i, row := range raw {
		ids[i] = row.ID
	}
	materials, err := r.materialsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.PickupRequest, len(raw))
	for i, row := range raw {
		out[i] = toPickupRequest(row, materials[row.ID])
	}
	return out, nil
}

// UpdateStatus applies a validated transition and returns the stored request.
// MySQL reports zero affected rows when values are unchanged, so existence is
// decided by the follow-up read rather than by RowsAffected.
func (r *PickupRepository) UpdateStatus(ctx context.Context, id int64, t model.Transition) (*model.PickupRequest, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pickup_requests SET status = ?, justification = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(t.Status), nullStringPtr(t.Justification), id,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func listQuery(filter model.PickupFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != nil {
		where = append(where, "suggested_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "suggested_date <= ?")
		args = append(args, filter.To.String())
	}

	query := `SELECT ` + pickupColumns + ` FROM pickup_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return query, args
}

// materialsFor loads the materials of every request in ids with one query.
func (r *PickupRepository) materialsFor(ctx context.Context, ids []int64) (map[int64][]model.MaterialType, error) {
	out := make(map[int64][]model.MaterialType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT prm.pickup_request_id, mt.id, mt.name, mt.description, mt.active
		FROM pickup_request_materials prm
		JOIN material_types mt ON mt.id = prm.material_type_id
		WHERE prm.pickup_request_id IN (`+placeholders(len(ids))+`)
		ORDER BY mt.name`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			requestID int64
			m         materialRow
		)
		if err := rows.Scan(&requestID, &m.ID, &m.Name, &m.Description, &m.Active); err != nil {
			return nil, err
		}
		out[requestID] = append(out[requestID], m.toModel())
	}
	return out, rows.Err()
}
