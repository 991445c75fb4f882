package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ecoleta/ecoleta-go/internal/middleware"
	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/repository"
	"github.com/ecoleta/ecoleta-go/internal/service"
	"github.com/ecoleta/ecoleta-go/internal/validation"
)

type stubPickups struct {
	createErr  error
	getErr     error
	updateErr  error
	lastFilter model.PickupFilter
	lastUpdate model.UpdateStatusRequest
}

func (s *stubPickups) Create(_ context.Context, in model.CreatePickupRequest) (*model.PickupRequest, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.PickupRequest{ID: 1, Protocol: "COL123456789", FullName: in.FullName, Status: model.StatusPending}, nil
}

func (s *stubPickups) Get(_ context.Context, id int64) (*model.PickupRequest, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &model.PickupRequest{ID: id, Status: model.StatusPending}, nil
}

func (s *stubPickups) List(_ context.Context, filter model.PickupFilter) ([]model.PickupRequest, error) {
	s.lastFilter = filter
	return []model.PickupRequest{{ID: 2}, {ID: 1}}, nil
}

func (s *stubPickups) UpdateStatus(_ context.Context, id int64, in model.UpdateStatusRequest) (*model.PickupRequest, error) {
	s.lastUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &model.PickupRequest{ID: id, Status: model.Status(in.Status)}, nil
}

func (s *stubPickups) ListMaterials(context.Context) ([]model.MaterialType, error) {
	return []model.MaterialType{{ID: 3, Name: "Metal", Active: true}}, nil
}

type countingRecorder struct {
	events []string
}

func (c *countingRecorder) PickupCreated() { c.events = append(c.events, "created") }
func (c *countingRecorder) PickupRejected(f string) { c.events = append(c.events, "rejected:"+f) }
func (c *countingRecorder) StatusChanged(s string) { c.events = append(c.events, "status:"+s) }
func (c *countingRecorder) Login(outcome string) { c.events = append(c.events, "login:"+outcome) }
func (c *countingRecorder) Renewal(outcome string) { c.events = append(c.events, "renewal:"+outcome) }

func pickupRouter(h *PickupHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/materials", h.HandleListMaterials)
	r.Post("/api/v1/pickups", h.HandleCreate)
	r.Get("/api/v1/pickups", h.HandleList)
	r.Get("/api/v1/pickups/{id}", h.HandleGet)
	r.Put("/api/v1/pickups/{id}/status", h.HandleUpdateStatus)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestHandleCreate(t *testing.T) {
	rec := &countingRecorder{}
	h := NewPickupHandler(&stubPickups{}, rec)

	resp := do(t, pickupRouter(h), http.MethodPost, "/api/v1/pickups", `{"full_name":"Maria Souza"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["protocol"] != "COL123456789" || body["status"] != "Pending" {
		t.Errorf("unexpected body: %v", body)
	}
	if len(rec.events) != 1 || rec.events[0] != "created" {
		t.Errorf("unexpected metric events: %v", rec.events)
	}
}

func TestHandleCreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed json",
			body:       `{"full_name":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "validation",
			body:       `{}`,
			err:        &validation.ValidationError{Field: "phone", Reason: "phone must have 10 or 11 digits"},
			wantStatus: http.StatusBadRequest,
			wantError:  "phone must have 10 or 11 digits",
		},
		{
			name:       "storage failure",
			body:       `{}`,
			err:        errors.New("deadlock"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
		{
			name:       "body too large",
			body:       `{"full_name":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "request body too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPickupHandler(&stubPickups{createErr: tt.err}, nil)

			resp := do(t, pickupRouter(h), http.MethodPost, "/api/v1/pickups", tt.body)

			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			if got := decodeBody(t, resp)["error"]; got != tt.wantError {
				t.Errorf("error = %v, want %q", got, tt.wantError)
			}
		})
	}
}

func TestHandleCreateRecordsRejectedField(t *testing.T) {
	rec := &countingRecorder{}
	stub := &stubPickups{createErr: &validation.ValidationError{Field: "email", Reason: "email is required"}}
	h := NewPickupHandler(stub, rec)

	resp := do(t, pickupRouter(h), http.MethodPost, "/api/v1/pickups", `{}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if body := decodeBody(t, resp); body["field"] != "email" {
		t.Errorf("field = %v, want email", body["field"])
	}
	if len(rec.events) != 1 || rec.events[0] != "rejected:email" {
		t.Errorf("unexpected metric events: %v", rec.events)
	}
}

func TestHandleList(t *testing.T) {
	stub := &stubPickups{}
	h := NewPickupHandler(stub, nil)

	resp := do(t, pickupRouter(h), http.MethodGet, "/api/v1/pickups?status=Scheduled&from=2024-01-01&to=2024-01-31", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if stub.lastFilter.Status != model.StatusScheduled {
		t.Errorf("status filter = %q", stub.lastFilter.Status)
	}
	if stub.lastFilter.From == nil || stub.lastFilter.From.String() != "2024-01-01" {
		t.Errorf("from filter = %v", stub.lastFilter.From)
	}
	if stub.lastFilter.To == nil || stub.lastFilter.To.String() != "2024-01-31" {
		t.Errorf("to filter = %v", stub.lastFilter.To)
	}

	var list []model.PickupRequest
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 pickups, got %d", len(list))
	}
}

func TestHandleListBadDate(t *testing.T) {
	h := NewPickupHandler(&stubPickups{}, nil)

	resp := do(t, pickupRouter(h), http.MethodGet, "/api/v1/pickups?from=01/02/2024", "")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestHandleGet(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{"found", "/api/v1/pickups/7", nil, http.StatusOK},
		{"not found", "/api/v1/pickups/7", repository.ErrPickupNotFound, http.StatusNotFound},
		{"bad id", "/api/v1/pickups/abc", nil, http.StatusBadRequest},
		{"zero id", "/api/v1/pickups/0", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPickupHandler(&stubPickups{getErr: tt.err}, nil)
			resp := do(t, pickupRouter(h), http.MethodGet, tt.path, "")
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"applied", nil, http.StatusOK},
		{"invalid status", validation.ErrInvalidStatus, http.StatusBadRequest},
		{"missing justification", validation.ErrJustificationRequired, http.StatusBadRequest},
		{"not found", repository.ErrPickupNotFound, http.StatusNotFound},
		{"storage failure", errors.New("lock wait timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			stub := &stubPickups{updateErr: tt.err}
			h := NewPickupHandler(stub, rec)

			resp := do(t, pickupRouter(h), http.MethodPut, "/api/v1/pickups/5/status",
				`{"status":"Cancelled","justification":"duplicate request"}`)

			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			if stub.lastUpdate.Justification != "duplicate request" {
				t.Errorf("justification not forwarded: %+v", stub.lastUpdate)
			}
			if tt.err == nil && (len(rec.events) != 1 || rec.events[0] != "status:Cancelled") {
				t.Errorf("unexpected metric events: %v", rec.events)
			}
		})
	}
}

func TestHandleListMaterials(t *testing.T) {
	h := NewPickupHandler(&stubPickups{}, nil)

	resp := do(t, pickupRouter(h), http.MethodGet, "/api/v1/materials", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var materials []model.MaterialType
	if err := json.NewDecoder(resp.Body).Decode(&materials); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(materials) != 1 || materials[0].Name != "Metal" {
		t.Errorf("unexpected materials: %+v", materials)
	}
}

type stubAuth struct {
	err error
}

func (s stubAuth) Login(_ context.Context, req model.LoginRequest) (model.IssuedToken, error) {
	if s.err != nil {
		return model.IssuedToken{}, s.err
	}
	return model.IssuedToken{Token: "tok", User: model.UserResponse{ID: 1, Email: req.Email}, ExpiresIn: 3600}, nil
}

type stubRenewer struct {
	renewal model.Renewal
	err     error
	got     string
}

func (s *stubRenewer) Renew(_ context.Context, token string) (model.Renewal, error) {
	s.got = token
	return s.renewal, s.err
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantEvent  string
	}{
		{"success", nil, http.StatusOK, "login:success"},
		{"missing fields", service.ErrCredentialsRequired, http.StatusBadRequest, "login:rejected"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "login:rejected"},
		{"lookup failure", errors.New("db down"), http.StatusInternalServerError, "login:error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			h := NewAuthHandler(stubAuth{err: tt.err}, &stubRenewer{}, rec)

			resp := do(t, http.HandlerFunc(h.HandleLogin), http.MethodPost, "/api/v1/auth/login",
				`{"email":"admin@coleta.com","password":"admin123"}`)

			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			if len(rec.events) != 1 || rec.events[0] != tt.wantEvent {
				t.Errorf("events = %v, want [%s]", rec.events, tt.wantEvent)
			}
			if tt.err == nil {
				body := decodeBody(t, resp)
				if body["token"] != "tok" || body["expires_in"] != float64(3600) {
					t.Errorf("unexpected body: %v", body)
				}
			}
		})
	}
}

func TestHandleVerify(t *testing.T) {
	h := NewAuthHandler(stubAuth{}, &stubRenewer{}, nil)
	verifier := verifierFunc(func(context.Context, string) (model.Session, error) {
		return model.Session{User: model.UserResponse{ID: 1}, RemainingSeconds: 200, NearExpiry: true}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp := httptest.NewRecorder()
	middleware.SessionAuth(verifier)(http.HandlerFunc(h.HandleVerify)).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["remaining_seconds"] != float64(200) || body["near_expiry"] != true {
		t.Errorf("unexpected body: %v", body)
	}
	if resp.Header().Get("X-Token-Expiring") != "true" {
		t.Error("expected near-expiry header")
	}
}

func TestHandleVerifyWithoutSession(t *testing.T) {
	h := NewAuthHandler(stubAuth{}, &stubRenewer{}, nil)

	resp := do(t, http.HandlerFunc(h.HandleVerify), http.MethodGet, "/api/v1/auth/verify", "")

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

type verifierFunc func(ctx context.Context, token string) (model.Session, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (model.Session, error) {
	return f(ctx, token)
}

func TestHandleRenew(t *testing.T) {
	tests := []struct {
		name       string
		renewal    model.Renewal
		err        error
		wantStatus int
		wantCode   string
		wantEvent  string
	}{
		{
			name:       "kept",
			renewal:    model.Renewal{Token: "tok", RemainingSeconds: 1800},
			wantStatus: http.StatusOK,
			wantEvent:  "renewal:kept",
		},
		{
			name:       "renewed",
			renewal:    model.Renewal{Token: "new", Renewed: true, ExpiresIn: 3600},
			wantStatus: http.StatusOK,
			wantEvent:  "renewal:renewed",
		},
		{
			name:       "expired",
			err:        fmt.Errorf("%w: %w", service.ErrRenewalFailed, service.ErrTokenExpired),
			wantStatus: http.StatusUnauthorized,
			wantCode:   middleware.CodeTokenExpired,
			wantEvent:  "renewal:failed",
		},
		{
			name:       "missing",
			err:        fmt.Errorf("%w: %w", service.ErrRenewalFailed, service.ErrTokenMissing),
			wantStatus: http.StatusUnauthorized,
			wantCode:   middleware.CodeTokenMissing,
			wantEvent:  "renewal:failed",
		},
		{
			name:       "lookup failure",
			err:        fmt.Errorf("%w: %w", service.ErrRenewalFailed, errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantEvent:  "renewal:failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			renewer := &stubRenewer{renewal: tt.renewal, err: tt.err}
			h := NewAuthHandler(stubAuth{}, renewer, rec)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/renew", nil)
			req.Header.Set("Authorization", "Bearer tok")
			resp := httptest.NewRecorder()
			h.HandleRenew(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			if renewer.got != "tok" {
				t.Errorf("renewer got token %q", renewer.got)
			}
			if len(rec.events) != 1 || rec.events[0] != tt.wantEvent {
				t.Errorf("events = %v, want [%s]", rec.events, tt.wantEvent)
			}
			if tt.wantCode != "" {
				if got := decodeBody(t, resp)["code"]; got != tt.wantCode {
					t.Errorf("code = %v, want %s", got, tt.wantCode)
				}
			}
		})
	}
}
