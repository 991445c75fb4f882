package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/validation"
)

// PickupService is the pickup workflow the handler drives.
type PickupService interface {
	Create(ctx context.Context, in model.CreatePickupRequest) (*model.PickupRequest, error)
	Get(ctx context.Context, id int64) (*model.PickupRequest, error)
	List(ctx context.Context, filter model.PickupFilter) ([]model.PickupRequest, error)
	UpdateStatus(ctx context.Context, id int64, in model.UpdateStatusRequest) (*model.PickupRequest, error)
	ListMaterials(ctx context.Context) ([]model.MaterialType, error)
}

// PickupHandler handles HTTP requests for pickup requests and material types.
type PickupHandler struct {
	service PickupService
	metrics Recorder
}

// NewPickupHandler creates a new PickupHandler. rec may be nil.
func NewPickupHandler(svc PickupService, rec Recorder) *PickupHandler {
	return &PickupHandler{service: svc, metrics: recorderOrNop(rec)}
}

// HandleCreate handles POST /api/v1/pickups requests.
func (h *PickupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePickupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			h.metrics.PickupRejected(verr.Field)
		}
		writeError(w, r, err)
		return
	}

	h.metrics.PickupCreated()
	writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /api/v1/pickups requests.
// Optional query parameters: status, from, to (YYYY-MM-DD, suggested date range).
func (h *PickupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.PickupFilter{Status: model.Status(q.Get("status"))}

	for _, p := range []struct {
		name string
		dst  **model.Date
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := model.ParseDate(raw, time.UTC)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid "+p.name+" date, use YYYY-MM-DD"))
			return
		}
		*p.dst = &d
	}

	pickups, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pickups)
}

// HandleGet handles GET /api/v1/pickups/{id} requests.
func (h *PickupHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pickupID(w, r)
	if !ok {
		return
	}

	pickup, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pickup)
}

// HandleUpdateStatus handles PUT /api/v1/pickups/{id}/status requests.
func (h *PickupHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pickupID(w, r)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.StatusChanged(string(updated.Status))
	writeJSON(w, http.StatusOK, updated)
}

// HandleListMaterials handles GET /api/v1/materials requests.
func (h *PickupHandler) HandleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListMaterials(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, materials)
}

func pickupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid pickup request id"))
		return 0, false
	}
	return id, true
}
