package service

import (
	"context"
	"errors"
	"time"

	reservationserrors "github.com/Harshal-SL/InstaDrive/internal/reservations/errors"
	"github.com/Harshal-SL/InstaDrive/pkg/config"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
)

// SweepExpired completes every CONFIRMED reservation whose window ended
// before today. Each transition uses the same conditional write as a manual
// return, so a reservation cancelled or completed mid-sweep is skipped, and
// re-running the sweep is a no-op. Per-item failures are logged and do not
// abort the pass.
func (s *reservationService) SweepExpired(ctx context.Context, today time.Time) (int, error) {
	today = model.DateOnly(today)

	expired, err := s.repo.FindExpired(ctx, today)
	if err != nil {
		s.cfg.Log.Error("Failed to list expired reservations", "error", err)
		return 0, err
	}

	completed := 0
	for _, r := range expired {
		if err := s.repo.UpdateStatus(ctx, r.ID, model.StatusConfirmed, model.StatusCompleted); err != nil {
			if errors.Is(err, reservationserrors.ErrNotFound) {
				// Raced with a concurrent cancel/return; nothing to do.
				continue
			}
			s.cfg.Log.Error("Failed to complete expired reservation",
				"id", r.ID,
				"reference", r.Reference,
				"error", err,
			)
			continue
		}
		r.Status = model.StatusCompleted
		s.publishEvent(ctx, EventReservationCompleted, r)
		completed++
	}

	if completed > 0 || len(expired) > 0 {
		s.cfg.Log.Info("Expiry sweep finished",
			"expired", len(expired),
			"completed", completed,
			"as_of", today,
		)
	}
	return completed, nil
}

// Sweeper runs the expiry sweep on a fixed interval. It fires once at
// startup so a restarted service immediately catches up on anything missed
// while down.
type Sweeper struct {
	svc    ReservationService
	cfg    *config.Config
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewSweeper(svc ReservationService, cfg *config.Config) *Sweeper {
	return &Sweeper{
		svc:    svc,
		cfg:    cfg,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (w *Sweeper) Start() {
	go w.run()
	w.cfg.Log.Info("Expiry sweeper started", "interval", w.cfg.SweepInterval)
}

func (w *Sweeper) run() {
	defer close(w.doneCh)

	w.sweep()

	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
	defer cancel()

	if _, err := w.svc.SweepExpired(ctx, time.Now()); err != nil {
		w.cfg.Log.Error("Expiry sweep failed", "error", err)
	}
}

// Stop halts the ticker and waits for an in-flight sweep to finish.
func (w *Sweeper) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.cfg.Log.Info("Expiry sweeper stopped")
}
