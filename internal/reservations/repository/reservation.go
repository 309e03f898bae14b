package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "openspace/internal/reservations/errors"
	"openspace/pkg/config"
	mongotx "openspace/pkg/db/mongo"
	"openspace/pkg/model"
)

const (
	CollectionName = "Reservations"
	sequenceName   = "reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	FindBySpace(ctx context.Context, spaceID int64) ([]*model.Reservation, error)
	FindOverlapping(ctx context.Context, spaceID int64, start, end time.Time) ([]*model.Reservation, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error)
	SearchByTitle(ctx context.Context, spaceID int64, title string) ([]*model.Reservation, error)
	CountBySpace(ctx context.Context, spaceID int64) (int64, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) (*model.Reservation, error)
	Delete(ctx context.Context, id int64) error
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	sequence   *mongotx.Sequence
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		sequence:   mongotx.NewSequence(db),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id, err := r.sequence.Next(ctx, sequenceName)
	if err != nil {
		return err
	}

	doc := *reservation
	doc.ID = id
	doc.CreatedAt = doc.CreatedAt.UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, &doc); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	reservation.ID = id
	reservation.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *mongoReservationRepository) FindBySpace(ctx context.Context, spaceID int64) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"space_id": spaceID}, byStart())
}

// FindOverlapping returns the reservations of a space whose interval
// intersects [start, end).
func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, spaceID int64, start, end time.Time) ([]*model.Reservation, error) {
	filter := bson.M{
		"space_id": spaceID,
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}
	return r.find(ctx, filter, byStart())
}

func (r *mongoReservationRepository) FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"user_id": userID}, byStart())
}

func (r *mongoReservationRepository) SearchByTitle(ctx context.Context, spaceID int64, title string) ([]*model.Reservation, error) {
	filter := bson.M{
		"space_id": spaceID,
		"title": bson.M{
			"$regex":   regexp.QuoteMeta(title),
			"$options": "i",
		},
	}
	return r.find(ctx, filter, byStart())
}

func (r *mongoReservationRepository) CountBySpace(ctx context.Context, spaceID int64) (int64, error) {
	return r.count(ctx, bson.M{"space_id": spaceID})
}

func (r *mongoReservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"title": reservation.Title,
			"start": reservation.Start,
			"end":   reservation.End,
			"total": reservation.Total,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": reservation.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var reservation model.Reservation
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*model.Reservation{}
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func byStart() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
}
