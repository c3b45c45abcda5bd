package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	fleeterrors "github.com/Harshal-SL/InstaDrive/internal/fleet/errors"
	"github.com/Harshal-SL/InstaDrive/internal/fleet/validator"
	"github.com/Harshal-SL/InstaDrive/pkg/config"
	apperrors "github.com/Harshal-SL/InstaDrive/pkg/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/logger"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
)

const testCarID = "507f1f77bcf86cd799439011"

// Mock repository for testing
type mockCarRepository struct {
	createFunc   func(ctx context.Context, car *model.Car) error
	findByIDFunc func(ctx context.Context, id string) (*model.Car, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Car, error)
	countFunc    func(ctx context.Context) (int64, error)
	updateFunc   func(ctx context.Context, id string, car *model.Car) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockCarRepository) Create(ctx context.Context, car *model.Car) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, car)
	}
	car.ID = testCarID
	return nil
}

func (m *mockCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fleeterrors.ErrNotFound
}

func (m *mockCarRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Car, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Car{}, nil
}

func (m *mockCarRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockCarRepository) Update(ctx context.Context, id string, car *model.Car) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, car)
	}
	return nil
}

func (m *mockCarRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCarRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

func newTestCarService(repo *mockCarRepository) CarService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewCarService(repo, validator.NewCarValidator(log), cfg)
}

func validCar() *model.Car {
	return &model.Car{
		Brand:              "Toyota",
		Model:              "Corolla",
		RegistrationNumber: "KA01AB1234",
		FuelType:           "petrol",
		Transmission:       "manual",
		Year:               2023,
		Color:              "White",
		PricePerDay:        120,
	}
}

func TestCarCreate_SanitizesInput(t *testing.T) {
	var saved *model.Car
	repo := &mockCarRepository{
		createFunc: func(ctx context.Context, car *model.Car) error {
			saved = car
			car.ID = testCarID
			return nil
		},
	}
	svc := newTestCarService(repo)

	car := validCar()
	car.Brand = "  Toyota  "
	car.RegistrationNumber = "ka-01 ab 1234"
	car.FuelType = " Petrol "
	car.Features = []string{" GPS ", "GPS", ""}

	if err := svc.Create(context.Background(), car); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Brand != "Toyota" {
		t.Errorf("brand = %q, want %q", saved.Brand, "Toyota")
	}
	if saved.RegistrationNumber != "KA01AB1234" {
		t.Errorf("registration = %q, want %q", saved.RegistrationNumber, "KA01AB1234")
	}
	if saved.FuelType != "petrol" {
		t.Errorf("fuel type = %q, want %q", saved.FuelType, "petrol")
	}
	if len(saved.Features) != 1 || saved.Features[0] != "GPS" {
		t.Errorf("features = %v, want [GPS]", saved.Features)
	}
}

func TestCarCreate_DuplicateRegistration(t *testing.T) {
	repo := &mockCarRepository{
		createFunc: func(ctx context.Context, car *model.Car) error {
			return fmt.Errorf("%w: %s", fleeterrors.ErrDuplicateRegistration, car.RegistrationNumber)
		},
	}
	svc := newTestCarService(repo)

	err := svc.Create(context.Background(), validCar())
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}
}

func TestCarCreate_ValidationFailure(t *testing.T) {
	svc := newTestCarService(&mockCarRepository{})

	car := validCar()
	car.FuelType = "steam"

	err := svc.Create(context.Background(), car)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeValidation)
	}
}

func TestCarGetByID_NotFound(t *testing.T) {
	svc := newTestCarService(&mockCarRepository{})

	_, err := svc.GetByID(context.Background(), testCarID)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeNotFound)
	}
}

func TestCarUpdate_MergesPartialFields(t *testing.T) {
	existing := validCar()
	existing.ID = testCarID

	var saved *model.Car
	repo := &mockCarRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Car, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, car *model.Car) error {
			saved = car
			return nil
		},
	}
	svc := newTestCarService(repo)

	price := 150.0
	err := svc.Update(context.Background(), testCarID, &model.CarUpdate{PricePerDay: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.PricePerDay != 150 {
		t.Errorf("price = %v, want 150", saved.PricePerDay)
	}
	if saved.Brand != existing.Brand || saved.RegistrationNumber != existing.RegistrationNumber {
		t.Error("untouched fields must carry over from the stored car")
	}
}

func TestPriceFor(t *testing.T) {
	repo := &mockCarRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Car, error) {
			car := validCar()
			car.ID = id
			return car, nil
		},
	}
	svc := newTestCarService(repo)

	tests := []struct {
		name string
		days int
		want float64
	}{
		{"multi day", 3, 360},
		{"single day", 1, 120},
		{"zero days bills one", 0, 120},
		{"negative days bills one", -2, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.PriceFor(context.Background(), testCarID, tt.days)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PriceFor(%d) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}

func TestPriceFor_UnknownCar(t *testing.T) {
	svc := newTestCarService(&mockCarRepository{})

	_, err := svc.PriceFor(context.Background(), testCarID, 2)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeNotFound)
	}
}
