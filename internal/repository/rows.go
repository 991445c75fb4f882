package repository

import (
	"database/sql"
	"time"

	"github.com/ecoleta/ecoleta-go/internal/model"
)

// pickupRow mirrors a pickup_requests row exactly as the driver returns it.
type pickupRow struct {
	ID            int64
	Protocol      string
	FullName      string
	Email         string
	Phone         string
	Street        string
	Number        string
	Neighborhood  string
	City          string
	SuggestedDate time.Time
	Status        string
	Justification sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const pickupColumns = `id, protocol, full_name, email, phone, street, number, neighborhood, city,
	suggested_date, status, justification, created_at, updated_at`

func (r *pickupRow) dest() []any {
	return []any{
		&r.ID, &r.Protocol, &r.FullName, &r.Email, &r.Phone, &r.Street, &r.Number,
		&r.Neighborhood, &r.City, &r.SuggestedDate, &r.Status, &r.Justification,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

// toPickupRequest is the single place a storage row becomes a domain value.
func toPickupRequest(row pickupRow, materials []model.MaterialType) model.PickupRequest {
	if materials == nil {
		materials = []model.MaterialType{}
	}

	req := model.PickupRequest{
		ID:            row.ID,
		Protocol:      row.Protocol,
		FullName:      row.FullName,
		Email:         row.Email,
		Phone:         row.Phone,
		Street:        row.Street,
		Number:        row.Number,
		Neighborhood:  row.Neighborhood,
		City:          row.City,
		SuggestedDate: model.NewDate(row.SuggestedDate),
		Status:        model.Status(row.Status),
		Materials:     materials,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Justification.Valid {
		j := row.Justification.String
		req.Justification = &j
	}
	return req
}

type materialRow struct {
	ID          int64
	Name        string
	Description sql.NullString
	Active      bool
}

func (r materialRow) toModel() model.MaterialType {
	return model.MaterialType{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		Active:      r.Active,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}
