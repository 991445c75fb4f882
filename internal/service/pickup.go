package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/repository"
	"github.com/ecoleta/ecoleta-go/internal/validation"
)

// protocolAttempts bounds retries when a generated protocol collides with a
// stored one.
const protocolAttempts = 3

// MaterialLookup resolves material types.
type MaterialLookup interface {
	ListActive(ctx context.Context) ([]model.MaterialType, error)
	FindActiveByIDs(ctx context.Context, ids []int64) ([]model.MaterialType, error)
}

// PickupStore persists pickup requests.
type PickupStore interface {
	Create(ctx context.Context, req model.PickupRequest) (*model.PickupRequest, error)
	GetByID(ctx context.Context, id int64) (*model.PickupRequest, error)
	List(ctx context.Context, filter model.PickupFilter) ([]model.PickupRequest, error)
	UpdateStatus(ctx context.Context, id int64, t model.Transition) (*model.PickupRequest, error)
}

// PickupService runs pickup requests through the validation engine and
// into storage.
type PickupService struct {
	engine    *validation.Engine
	materials MaterialLookup
	store     PickupStore
}

// NewPickupService creates a new PickupService.
func NewPickupService(engine *validation.Engine, materials MaterialLookup, store PickupStore) *PickupService {
	return &PickupService{engine: engine, materials: materials, store: store}
}

// Create validates a citizen's payload and stores it as a Pending request.
func (s *PickupService) Create(ctx context.Context, in model.CreatePickupRequest) (*model.PickupRequest, error) {
	resolved, err := s.materials.FindActiveByIDs(ctx, in.MaterialIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving materials: %w", err)
	}

	for attempt := 1; ; attempt++ {
		req, err := s.engine.ValidateAndNormalize(in, resolved)
		if err != nil {
			return nil, err
		}

		created, err := s.store.Create(ctx, req)
		if errors.Is(err, repository.ErrDuplicateProtocol) && attempt < protocolAttempts {
			continue
		}
		return created, err
	}
}

// Get retrieves a pickup request by id.
func (s *PickupService) Get(ctx context.Context, id int64) (*model.PickupRequest, error) {
	return s.store.GetByID(ctx, id)
}

// List returns pickup requests matching filter, newest first.
func (s *PickupService) List(ctx context.Context, filter model.PickupFilter) ([]model.PickupRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validation.ErrInvalidStatus
	}
	return s.store.List(ctx, filter)
}

// UpdateStatus moves a request to a new status.
func (s *PickupService) UpdateStatus(ctx context.Context, id int64, in model.UpdateStatusRequest) (*model.PickupRequest, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.ValidateTransition(*current, in.Status, in.Justification)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateStatus(ctx, id, t)
}

// ListMaterials returns the active material types ordered by name.
func (s *PickupService) ListMaterials(ctx context.Context) ([]model.MaterialType, error) {
	return s.materials.ListActive(ctx)
}
