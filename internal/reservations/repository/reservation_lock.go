package repository

import (
	"context"
	"time"

	"github.com/Harshal-SL/InstaDrive/pkg/config"
	"github.com/Harshal-SL/InstaDrive/pkg/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReservationLockRepository provides the per-car advisory lock primitives.
// Inserting the lock document is the acquisition; a duplicate key error
// means another request holds the car.
type ReservationLockRepository interface {
	Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	Delete(ctx context.Context, lockID string) error
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (int64, error)
}

type mongoReservationLockRepository struct {
	collection *mongo.Collection
}

func NewReservationLockRepository(cfg *config.Config) ReservationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationLockRepository{
		collection: db.Collection("Reservation_locks"),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoReservationLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoReservationLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// DeleteExpired reaps a lock left behind by a crashed holder. Only a lock
// whose expires_at has passed is removed, so a live holder is never evicted.
func (r *mongoReservationLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
