package model

import "time"

// ReservationLock is an advisory lock serializing writes per car.
// Existence of the document is the lock; ExpiresAt bounds how long a
// crashed holder can block the car.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
