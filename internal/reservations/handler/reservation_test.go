package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Harshal-SL/InstaDrive/internal/reservations/service"
	apperrors "github.com/Harshal-SL/InstaDrive/pkg/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/logger"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockReservationService struct {
	createFunc      func(ctx context.Context, r *model.Reservation) error
	cancelFunc      func(ctx context.Context, id string) error
	completeFunc    func(ctx context.Context, id string) error
	isAvailableFunc func(ctx context.Context, carID string, start, end time.Time) (bool, error)
	getByIDFunc     func(ctx context.Context, id string) (*model.Reservation, error)
}

func (m *mockReservationService) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	return nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Reservation{ID: id}, nil
}

func (m *mockReservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return []*model.Reservation{}, 0, nil
}

func (m *mockReservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) error {
	return nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationService) Complete(ctx context.Context, id string) error {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationService) IsAvailable(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	if m.isAvailableFunc != nil {
		return m.isAvailableFunc(ctx, carID, start, end)
	}
	return true, nil
}

func (m *mockReservationService) GetByUser(ctx context.Context, userID string, scope string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return []*model.Reservation{}, 0, nil
}

func (m *mockReservationService) GetUserStats(ctx context.Context, userID string) (*service.UserStats, error) {
	return &service.UserStats{}, nil
}

func (m *mockReservationService) SweepExpired(ctx context.Context, today time.Time) (int, error) {
	return 0, nil
}

func newTestHandler(svc service.ReservationService) *ReservationHandler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewReservationHandler(svc, log)
}

func newRouter(h *ReservationHandler) *httprouter.Router {
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func TestCreate_ResourceBusyResponse(t *testing.T) {
	h := newTestHandler(&mockReservationService{
		createFunc: func(ctx context.Context, r *model.Reservation) error {
			return apperrors.ResourceBusy("Car is being reserved by another request, please retry")
		},
	})
	router := newRouter(h)

	body := `{"car_id":"507f1f77bcf86cd799439011","user_id":"u1","start_date":"2026-07-10T00:00:00Z","end_date":"2026-07-12T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("busy response must carry a Retry-After header")
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	h := newTestHandler(&mockReservationService{})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCancel_ConflictResponse(t *testing.T) {
	h := newTestHandler(&mockReservationService{
		cancelFunc: func(ctx context.Context, id string) error {
			return apperrors.Conflict("Reservation ID-20260701-AAAA is already CANCELLED and cannot change state")
		},
	})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/abc/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != apperrors.CodeConflict {
		t.Errorf("code = %s, want %s", resp.Code, apperrors.CodeConflict)
	}
}

func TestReturn_NoContent(t *testing.T) {
	completed := ""
	h := newTestHandler(&mockReservationService{
		completeFunc: func(ctx context.Context, id string) error {
			completed = id
			return nil
		},
	})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/abc/return", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if completed != "abc" {
		t.Errorf("completed id = %q, want %q", completed, "abc")
	}
}

func TestAvailability(t *testing.T) {
	var gotStart, gotEnd time.Time
	h := newTestHandler(&mockReservationService{
		isAvailableFunc: func(ctx context.Context, carID string, start, end time.Time) (bool, error) {
			gotStart, gotEnd = start, end
			return false, nil
		},
	})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/cars/id/507f1f77bcf86cd799439011/availability?start_date=2026-07-10&end_date=2026-07-12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !gotStart.Equal(time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)) ||
		!gotEnd.Equal(time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed window = %v .. %v", gotStart, gotEnd)
	}

	var resp struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Available {
		t.Error("available = true, want false")
	}
	if resp.Data.CarID != "507f1f77bcf86cd799439011" {
		t.Errorf("car_id = %q", resp.Data.CarID)
	}
}

func TestAvailability_BadDate(t *testing.T) {
	h := newTestHandler(&mockReservationService{})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/cars/id/507f1f77bcf86cd799439011/availability?start_date=July-10&end_date=2026-07-12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	h := newTestHandler(&mockReservationService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		},
	})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/id/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
