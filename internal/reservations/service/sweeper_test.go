package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	reservationserrors "github.com/Harshal-SL/InstaDrive/internal/reservations/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
)

func expiredReservation(id string, start, end int) *model.Reservation {
	r := newReservation(testCarID, start, end)
	r.ID = id
	r.Reference = "ID-20260701-" + id
	r.Status = model.StatusConfirmed
	return r
}

func TestSweepExpired_CompletesAndPublishes(t *testing.T) {
	expired := []*model.Reservation{
		expiredReservation("aaa1", 1, 3),
		expiredReservation("aaa2", 2, 5),
	}
	var transitioned []string
	repo := &mockReservationRepository{
		findExpiredFunc: func(ctx context.Context, today time.Time) ([]*model.Reservation, error) {
			return expired, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.Status) error {
			if from != model.StatusConfirmed || to != model.StatusCompleted {
				t.Errorf("transition %s -> %s, want CONFIRMED -> COMPLETED", from, to)
			}
			transitioned = append(transitioned, id)
			return nil
		},
	}
	events := &mockEventPublisher{}
	svc := newTestService(repo, &mockLockRepository{}, events)

	count, err := svc.SweepExpired(context.Background(), day(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("completed = %d, want 2", count)
	}
	if len(transitioned) != 2 {
		t.Errorf("transitions = %v, want both reservations", transitioned)
	}

	for _, eventType := range events.eventTypes() {
		if eventType != EventReservationCompleted {
			t.Errorf("event type = %s, want %s", eventType, EventReservationCompleted)
		}
	}
	if len(events.eventTypes()) != 2 {
		t.Errorf("events = %d, want 2", len(events.eventTypes()))
	}
}

func TestSweepExpired_SkipsRacedItems(t *testing.T) {
	expired := []*model.Reservation{
		expiredReservation("aaa1", 1, 3),
		expiredReservation("aaa2", 2, 5),
		expiredReservation("aaa3", 3, 6),
	}
	repo := &mockReservationRepository{
		findExpiredFunc: func(ctx context.Context, today time.Time) ([]*model.Reservation, error) {
			return expired, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.Status) error {
			if id == "aaa2" {
				// Cancelled concurrently; the conditional write missed.
				return reservationserrors.ErrNotFound
			}
			return nil
		},
	}
	events := &mockEventPublisher{}
	svc := newTestService(repo, &mockLockRepository{}, events)

	count, err := svc.SweepExpired(context.Background(), day(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("completed = %d, want 2 (raced item skipped)", count)
	}
	if len(events.eventTypes()) != 2 {
		t.Errorf("events = %d, want 2", len(events.eventTypes()))
	}
}

func TestSweepExpired_PerItemErrorContinues(t *testing.T) {
	expired := []*model.Reservation{
		expiredReservation("aaa1", 1, 3),
		expiredReservation("aaa2", 2, 5),
	}
	repo := &mockReservationRepository{
		findExpiredFunc: func(ctx context.Context, today time.Time) ([]*model.Reservation, error) {
			return expired, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.Status) error {
			if id == "aaa1" {
				return fmt.Errorf("write failed")
			}
			return nil
		},
	}
	svc := newTestService(repo, &mockLockRepository{}, nil)

	count, err := svc.SweepExpired(context.Background(), day(10))
	if err != nil {
		t.Fatalf("a per-item failure must not abort the sweep: %v", err)
	}
	if count != 1 {
		t.Errorf("completed = %d, want 1", count)
	}
}

func TestSweepExpired_NothingToDo(t *testing.T) {
	repo := &mockReservationRepository{}
	svc := newTestService(repo, &mockLockRepository{}, nil)

	count, err := svc.SweepExpired(context.Background(), day(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("completed = %d, want 0", count)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	sweeps := make(chan struct{}, 10)
	repo := &mockReservationRepository{
		findExpiredFunc: func(ctx context.Context, today time.Time) ([]*model.Reservation, error) {
			select {
			case sweeps <- struct{}{}:
			default:
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockLockRepository{}, nil)
	svc.cfg.SweepInterval = 10 * time.Millisecond

	sweeper := NewSweeper(svc, svc.cfg)
	sweeper.Start()

	// The startup sweep plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-sweeps:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run in time")
		}
	}

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop in time")
	}
}
