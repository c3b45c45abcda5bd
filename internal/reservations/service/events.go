package service

import (
	"context"
	"time"

	"github.com/Harshal-SL/InstaDrive/pkg/kafka"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
)

const (
	TopicReservationEvents = "reservation-events"

	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
)

// EventPublisher is satisfied by kafka.Producer. A nil publisher disables
// event emission.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// ReservationEvent is the payload published on every lifecycle transition.
type ReservationEvent struct {
	ReservationID string       `json:"reservation_id"`
	Reference     string       `json:"reference"`
	CarID         string       `json:"car_id"`
	UserID        string       `json:"user_id"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	Amount        float64      `json:"amount"`
	Status        model.Status `json:"status"`
}

// publishEvent emits a lifecycle event keyed by car id so events for one
// car stay ordered. Publishing is best-effort: a broker failure is logged
// and the request still succeeds.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, r *model.Reservation) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(r.CarID).
		WithEventType(eventType).
		WithSource("reservations").
		WithValue(ReservationEvent{
			ReservationID: r.ID,
			Reference:     r.Reference,
			CarID:         r.CarID,
			UserID:        r.UserID,
			StartDate:     r.StartDate,
			EndDate:       r.EndDate,
			Amount:        r.Amount,
			Status:        r.Status,
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"reference", r.Reference,
			"error", err,
		)
	}
}
