package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	fleeterrors "github.com/Harshal-SL/InstaDrive/internal/fleet/errors"
	"github.com/Harshal-SL/InstaDrive/internal/fleet/repository"
	"github.com/Harshal-SL/InstaDrive/internal/fleet/validator"
	"github.com/Harshal-SL/InstaDrive/pkg/config"
	apperrors "github.com/Harshal-SL/InstaDrive/pkg/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
	"github.com/Harshal-SL/InstaDrive/pkg/sanitizer"
)

type CarService interface {
	Create(ctx context.Context, car *model.Car) error
	GetByID(ctx context.Context, id string) (*model.Car, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Car, int64, error)
	Update(ctx context.Context, id string, updates *model.CarUpdate) error
	Delete(ctx context.Context, id string) error
	PriceFor(ctx context.Context, carID string, days int) (float64, error)
}

type carService struct {
	repo      repository.CarRepository
	validator *validator.CarValidator
	cfg       *config.Config
}

func NewCarService(repo repository.CarRepository, validator *validator.CarValidator, cfg *config.Config) CarService {
	return &carService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *carService) Create(ctx context.Context, car *model.Car) error {
	s.sanitize(car)

	if err := s.validator.Validate(car); err != nil {
		s.cfg.Log.Warn("Car validation failed", "error", err)
		return apperrors.Validation("Car validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, car); err != nil {
		if errors.Is(err, fleeterrors.ErrDuplicateRegistration) {
			return apperrors.Conflict(fmt.Sprintf(
				"A car with registration number %s already exists", car.RegistrationNumber,
			))
		}
		s.cfg.Log.Error("Failed to create car", "registration_number", car.RegistrationNumber, "error", err)
		return apperrors.Internal("Failed to create car", err)
	}

	s.cfg.Log.Info("Car created successfully",
		"id", car.ID,
		"brand", car.Brand,
		"model", car.Model,
		"registration_number", car.RegistrationNumber,
	)
	return nil
}

func (s *carService) GetByID(ctx context.Context, id string) (*model.Car, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Car ID cannot be empty")
	}

	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Car", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid car ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve car", err)
	}

	return car, nil
}

func (s *carService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Car, int64, error) {
	var count int64
	var cars []*model.Car
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count cars", "error", errCount)
			errCount = apperrors.Internal("Failed to count cars", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		cars, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list cars", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve cars", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return cars, count, nil
}

func (s *carService) Update(ctx context.Context, id string, updates *model.CarUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Car ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Car update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Car validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, fleeterrors.ErrDuplicateRegistration) {
			return apperrors.Conflict(fmt.Sprintf(
				"A car with registration number %s already exists", merged.RegistrationNumber,
			))
		}
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Car", id)
		}
		s.cfg.Log.Error("Failed to update car", "id", id, "error", err)
		return apperrors.Internal("Failed to update car", err)
	}

	s.cfg.Log.Info("Car updated successfully", "id", id)
	return nil
}

func (s *carService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Car ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Car", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid car ID format")
		}
		s.cfg.Log.Error("Failed to delete car", "id", id, "error", err)
		return apperrors.Internal("Failed to delete car", err)
	}

	s.cfg.Log.Info("Car deleted successfully", "id", id)
	return nil
}

// PriceFor computes the default charge for a rental window from the car's
// daily rate.
func (s *carService) PriceFor(ctx context.Context, carID string, days int) (float64, error) {
	if days < 1 {
		days = 1
	}

	car, err := s.GetByID(ctx, carID)
	if err != nil {
		return 0, err
	}

	return car.PricePerDay * float64(days), nil
}

func (s *carService) sanitize(car *model.Car) {
	car.Brand = sanitizer.NormalizeName(car.Brand)
	car.Model = sanitizer.NormalizeName(car.Model)
	car.Color = sanitizer.NormalizeName(car.Color)
	car.RegistrationNumber = sanitizer.SanitizeRegistrationNumber(car.RegistrationNumber)
	car.FuelType = sanitizer.SanitizeLabel(car.FuelType)
	car.Transmission = sanitizer.SanitizeLabel(car.Transmission)
	car.Features = sanitizer.SanitizeSlice(car.Features, sanitizer.TrimAndNormalize)
}

func (s *carService) mergeUpdates(existing *model.Car, updates *model.CarUpdate) *model.Car {
	merged := *existing

	if updates.Brand != "" {
		merged.Brand = updates.Brand
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.RegistrationNumber != "" {
		merged.RegistrationNumber = updates.RegistrationNumber
	}
	if updates.FuelType != "" {
		merged.FuelType = updates.FuelType
	}
	if updates.Transmission != "" {
		merged.Transmission = updates.Transmission
	}
	if updates.Year != nil {
		merged.Year = *updates.Year
	}
	if updates.Color != "" {
		merged.Color = updates.Color
	}
	if updates.PricePerDay != nil {
		merged.PricePerDay = *updates.PricePerDay
	}
	if updates.Features != nil {
		merged.Features = updates.Features
	}

	return &merged
}
