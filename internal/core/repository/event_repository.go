package repository

import (
	"context"
	"time"

	"zxtrack/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository interface {
	// Store appends one event. Storing an identical tuple again is
	// idempotently ignored, matching the wire: devices re-send.
	Store(event *model.Event) error
	// Backlog returns up to limit most recent events for the device,
	// oldest first, restricted to the given kind names (all kinds when
	// the list is empty).
	Backlog(imei string, kinds []string, limit int) ([]*model.Event, error)
}

type MongoEventRepository struct {
	collection *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{
		collection: db.Collection("events"),
	}
}

func (r *MongoEventRepository) Store(event *model.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		// Same time/imei/peer/proto/payload tuple: already stored.
		return nil
	}
	return err
}

func (r *MongoEventRepository) Backlog(imei string, kinds []string, limit int) ([]*model.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"imei": imei}
	if len(kinds) > 0 {
		filter["kind"] = bson.M{"$in": kinds}
	}
	opts := options.Find().SetSort(bson.M{"time": -1}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*model.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	// Mongo gave us newest first; callers replay oldest first.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}
