package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reservationserrors "github.com/Harshal-SL/InstaDrive/internal/reservations/errors"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/repository"
	"github.com/Harshal-SL/InstaDrive/internal/reservations/validator"
	"github.com/Harshal-SL/InstaDrive/pkg/config"
	apperrors "github.com/Harshal-SL/InstaDrive/pkg/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
	"github.com/Harshal-SL/InstaDrive/pkg/refid"
	"go.mongodb.org/mongo-driver/mongo"
)

// PriceProvider supplies the daily rate used when a reservation is created
// without an explicit amount.
type PriceProvider interface {
	PriceFor(ctx context.Context, carID string, days int) (float64, error)
}

type UserStats struct {
	Total   int64 `json:"total"`
	Current int64 `json:"current"`
	Past    int64 `json:"past"`
}

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) error
	Cancel(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	IsAvailable(ctx context.Context, carID string, start, end time.Time) (bool, error)
	GetByUser(ctx context.Context, userID string, scope string, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	SweepExpired(ctx context.Context, today time.Time) (int, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.ReservationLockRepository
	validator *validator.ReservationValidator
	pricing   PriceProvider
	events    EventPublisher
	refs      *refid.Generator
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	validator *validator.ReservationValidator,
	pricing PriceProvider,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		pricing:   pricing,
		events:    events,
		refs:      refid.NewGenerator(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create reserves a car for an inclusive date window. The overlap check and
// the insert run inside one transaction while the per-car advisory lock is
// held, so two racing requests for the same car cannot both commit.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	s.normalize(reservation)
	reservation.Status = model.StatusConfirmed

	if err := s.validate(reservation); err != nil {
		return err
	}

	if err := s.applyDefaultAmount(ctx, reservation); err != nil {
		return err
	}

	lockID, err := s.acquireCarLock(ctx, reservation.CarID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release car lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	for attempt := 0; attempt < s.cfg.ReferenceMaxAttempts; attempt++ {
		reference, refErr := s.refs.Generate()
		if refErr != nil {
			return apperrors.Internal("Failed to generate reservation reference", refErr)
		}
		reservation.Reference = reference
		reservation.ID = ""

		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.verifyAvailability(sessCtx, reservation.CarID, reservation.StartDate, reservation.EndDate, ""); err != nil {
				return err
			}
			if err := s.repo.Create(sessCtx, reservation); err != nil {
				if errors.Is(err, reservationserrors.ErrDuplicateReference) {
					return err
				}
				return apperrors.Internal("Failed to create reservation", err)
			}
			return nil
		})
		if err == nil {
			s.cfg.Log.Info("Reservation created successfully",
				"id", reservation.ID,
				"reference", reservation.Reference,
				"car_id", reservation.CarID,
				"user_id", reservation.UserID,
				"start_date", reservation.StartDate,
				"end_date", reservation.EndDate,
			)
			s.publishEvent(ctx, EventReservationConfirmed, reservation)
			return nil
		}
		if errors.Is(err, reservationserrors.ErrDuplicateReference) {
			s.cfg.Log.Warn("Reference collision, regenerating",
				"reference", reservation.Reference,
				"attempt", attempt+1,
			)
			continue
		}
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return err
	}

	s.cfg.Log.Error("Reference generation exhausted",
		"car_id", reservation.CarID,
		"max_attempts", s.cfg.ReferenceMaxAttempts,
	)
	return apperrors.Internal("Could not allocate a unique reservation reference", reservationserrors.ErrReferenceExhausted)
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	s.project(reservation)
	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, r := range reservations {
		s.project(r)
	}
	return reservations, count, nil
}

// Update merges a partial update onto the stored reservation. If the car or
// the window changed, availability is re-verified under the car lock with
// the reservation itself excluded from the conflict set. The reference is
// never rewritten.
func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return apperrors.Internal("Failed to check reservation existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	// Terminal reservations accept no field mutation at all, not just no
	// status change.
	if existing.Status.IsTerminal() {
		return apperrors.Conflict(fmt.Sprintf(
			"Reservation %s is already %s and cannot be modified", existing.Reference, existing.Status,
		))
	}

	newStatus := existing.Status
	if updates.Status != "" {
		parsed, ok := model.ParseStatus(updates.Status)
		if !ok {
			return apperrors.InvalidInput(fmt.Sprintf("Unknown reservation status: %s", updates.Status))
		}
		newStatus = parsed
	}

	merged := s.mergeUpdates(existing, updates, newStatus)
	s.normalize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	windowChanged := merged.CarID != existing.CarID ||
		!merged.StartDate.Equal(existing.StartDate) ||
		!merged.EndDate.Equal(existing.EndDate)

	if windowChanged && updates.Amount == nil {
		merged.Amount = 0
		if err := s.applyDefaultAmount(ctx, merged); err != nil {
			return err
		}
	}

	apply := func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if windowChanged {
				if err := s.verifyAvailability(sessCtx, merged.CarID, merged.StartDate, merged.EndDate, id); err != nil {
					return err
				}
			}
			// Conditional on the status observed at read time, so a cancel,
			// return or sweep committing after the read cannot be
			// overwritten back to CONFIRMED.
			if _, err := s.repo.Update(sessCtx, id, merged, existing.Status); err != nil {
				if errors.Is(err, reservationserrors.ErrNotFound) {
					return apperrors.Conflict(fmt.Sprintf(
						"Reservation %s changed state concurrently", existing.Reference,
					))
				}
				return apperrors.Internal("Failed to update reservation", err)
			}
			return nil
		})
	}

	if windowChanged {
		lockID, lockErr := s.acquireCarLock(ctx, merged.CarID)
		if lockErr != nil {
			return lockErr
		}
		defer func() {
			if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release car lock", "lock_id", lockID, "error", releaseErr)
			}
		}()
		err = apply()
	} else {
		err = apply()
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation updated successfully", "id", id, "reference", existing.Reference)
	return nil
}

// Cancel transitions CONFIRMED -> CANCELLED. A reservation already in a
// terminal state is left untouched and the call fails with a conflict.
func (s *reservationService) Cancel(ctx context.Context, id string) error {
	return s.finalize(ctx, id, model.StatusCancelled, EventReservationCancelled)
}

// Complete transitions CONFIRMED -> COMPLETED on car return.
func (s *reservationService) Complete(ctx context.Context, id string) error {
	return s.finalize(ctx, id, model.StatusCompleted, EventReservationCompleted)
}

func (s *reservationService) finalize(ctx context.Context, id string, target model.Status, eventType string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return apperrors.Internal("Failed to retrieve reservation", err)
	}

	if existing.Status.IsTerminal() {
		return apperrors.Conflict(fmt.Sprintf(
			"Reservation %s is already %s and cannot change state", existing.Reference, existing.Status,
		))
	}

	// Conditional write: only succeeds while the stored status is still
	// CONFIRMED, so a concurrent transition cannot be overwritten.
	if err := s.repo.UpdateStatus(ctx, id, model.StatusConfirmed, target); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.Conflict(fmt.Sprintf(
				"Reservation %s changed state concurrently", existing.Reference,
			))
		}
		return apperrors.Internal("Failed to update reservation status", err)
	}

	existing.Status = target
	s.cfg.Log.Info("Reservation state changed",
		"id", id,
		"reference", existing.Reference,
		"status", target,
	)
	s.publishEvent(ctx, eventType, existing)
	return nil
}

// IsAvailable reports whether the car has no blocking reservation in the
// window. The answer is advisory: it is not synchronized with concurrent
// creates, which re-verify under the lock.
func (s *reservationService) IsAvailable(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	if carID == "" {
		return false, apperrors.InvalidInput("Car ID cannot be empty")
	}
	start, end = model.DateOnly(start), model.DateOnly(end)
	if end.Before(start) {
		return false, apperrors.Validation("end_date cannot be before start_date", nil)
	}

	overlapping, err := s.repo.FindOverlapping(ctx, carID, start, end, "")
	if err != nil {
		return false, apperrors.Internal("Failed to check car availability", err)
	}

	for _, r := range overlapping {
		if r.Status == model.StatusConfirmed {
			return false, nil
		}
	}
	return true, nil
}

func (s *reservationService) GetByUser(ctx context.Context, userID string, scope string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	switch scope {
	case "", repository.ScopeAll:
		scope = repository.ScopeAll
	case repository.ScopeCurrent, repository.ScopePast:
	default:
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown scope: %s (expected all, current or past)", scope))
	}

	today := model.DateOnly(s.now())

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID, scope, today)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count user reservations", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByUser(ctx, userID, scope, today, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list user reservations", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, r := range reservations {
		s.project(r)
	}
	return reservations, count, nil
}

func (s *reservationService) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	today := model.DateOnly(s.now())
	stats := &UserStats{}

	var err error
	if stats.Total, err = s.repo.CountByUser(ctx, userID, repository.ScopeAll, today); err != nil {
		return nil, apperrors.Internal("Failed to count reservations", err)
	}
	if stats.Current, err = s.repo.CountByUser(ctx, userID, repository.ScopeCurrent, today); err != nil {
		return nil, apperrors.Internal("Failed to count reservations", err)
	}
	stats.Past = stats.Total - stats.Current

	return stats, nil
}

// --- Helpers ---

func (s *reservationService) normalize(r *model.Reservation) {
	r.StartDate = model.DateOnly(r.StartDate)
	r.EndDate = model.DateOnly(r.EndDate)
}

// project attaches the derived display status for responses.
func (s *reservationService) project(r *model.Reservation) {
	r.ViewStatus = model.DeriveViewStatus(r.Status, r.StartDate, r.EndDate, model.DateOnly(s.now()))
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) applyDefaultAmount(ctx context.Context, r *model.Reservation) error {
	if r.Amount > 0 {
		return nil
	}
	amount, err := s.pricing.PriceFor(ctx, r.CarID, model.WindowDays(r.StartDate, r.EndDate))
	if err != nil {
		return err
	}
	r.Amount = amount
	return nil
}

func (s *reservationService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate, status model.Status) *model.Reservation {
	merged := *existing

	if updates.CarID != "" {
		merged.CarID = updates.CarID
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.EndDate != nil {
		merged.EndDate = *updates.EndDate
	}
	if updates.Amount != nil {
		merged.Amount = *updates.Amount
	}
	merged.Status = status

	return &merged
}

// verifyAvailability fails with a conflict if any CONFIRMED reservation for
// the car intersects the inclusive window. Runs inside the transaction so
// the answer cannot go stale before the write commits.
func (s *reservationService) verifyAvailability(ctx context.Context, carID string, start, end time.Time, excludeID string) error {
	overlapping, err := s.repo.FindOverlapping(ctx, carID, start, end, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, r := range overlapping {
		if r.Status != model.StatusConfirmed {
			continue
		}
		return apperrors.Conflict(fmt.Sprintf(
			"Car is already reserved from %s to %s",
			r.StartDate.Format(time.DateOnly),
			r.EndDate.Format(time.DateOnly),
		))
	}
	return nil
}

// acquireCarLock serializes writers per car. Acquisition polls until the
// wait timeout, reaping locks whose holder expired, then gives up with a
// retryable resource-busy error.
func (s *reservationService) acquireCarLock(ctx context.Context, carID string) (string, error) {
	lockID := "car_" + carID
	deadline := s.now().Add(s.cfg.LockWaitTimeout)

	for {
		lock := &model.ReservationLock{
			ID:        lockID,
			ExpiresAt: s.now().Add(s.cfg.LockTTL),
		}

		_, err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire car lock", err)
		}

		if _, reapErr := s.lockRepo.DeleteExpired(ctx, lockID, s.now()); reapErr != nil {
			s.cfg.Log.Warn("Failed to reap expired car lock", "lock_id", lockID, "error", reapErr)
		}

		if s.now().After(deadline) {
			s.cfg.Log.Warn("Car lock wait timed out", "lock_id", lockID, "wait", s.cfg.LockWaitTimeout)
			return "", apperrors.ResourceBusy("Car is being reserved by another request, please retry")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Timeout("Request cancelled while waiting for car lock")
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}
