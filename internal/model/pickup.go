package model

import "time"

// Status is the lifecycle state of a pickup request.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every defined status in lifecycle order.
var Statuses = []Status{StatusPending, StatusScheduled, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// RequiresJustification reports whether moving to s needs a justification.
func (s Status) RequiresJustification() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PickupRequest is a citizen-submitted collection request.
type PickupRequest struct {
	ID            int64          `json:"id"`
	Protocol      string         `json:"protocol"`
	FullName      string         `json:"full_name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Street        string         `json:"street"`
	Number        string         `json:"number"`
	Neighborhood  string         `json:"neighborhood"`
	City          string         `json:"city"`
	SuggestedDate Date           `json:"suggested_date"`
	Status        Status         `json:"status"`
	Justification *string        `json:"justification"`
	Materials     []MaterialType `json:"materials"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FullAddress formats the street address on one line.
func (p PickupRequest) FullAddress() string {
	return p.Street + ", " + p.Number + " - " + p.Neighborhood + ", " + p.City
}

// CreatePickupRequest is the raw, unauthenticated creation payload.
type CreatePickupRequest struct {
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Street        string  `json:"street"`
	Number        string  `json:"number"`
	Neighborhood  string  `json:"neighborhood"`
	City          string  `json:"city"`
	SuggestedDate string  `json:"suggested_date"`
	MaterialIDs   []int64 `json:"material_ids"`
}

// UpdateStatusRequest is the payload of a status transition.
type UpdateStatusRequest struct {
	Status        string `json:"status"`
	Justification string `json:"justification"`
}

// Transition is a validated status change ready to be persisted.
type Transition struct {
	Status        Status
	Justification *string
}

// PickupFilter narrows a pickup listing. Zero values mean "no filter".
type PickupFilter struct {
	Status Status
	From   *Date
	To     *Date
}
