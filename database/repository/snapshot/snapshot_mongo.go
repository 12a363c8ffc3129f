package snapshotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotDocID = "status-snapshot"

// Repository persists the last-known status per booking, the diff baseline
// used by the sync engine. Durability is best-effort; the engine recovers
// from a missing row by reseeding.
type Repository interface {
	Save(ctx context.Context, statuses map[string]models.BookingStatus) error
	Load(ctx context.Context) (map[string]models.BookingStatus, error)
}

type snapshotDoc struct {
	ID        string            `bson:"_id"`
	Statuses  map[string]string `bson:"statuses"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type mongoSnapshotRepo struct {
	coll *mongo.Collection
}

func NewMongoSnapshotRepo(client *mongo.Client, dbName string) Repository {
	return &mongoSnapshotRepo{
		coll: client.Database(dbName).Collection("status_snapshots"),
	}
}

// Save upserts the singleton snapshot row.
func (r *mongoSnapshotRepo) Save(ctx context.Context, statuses map[string]models.BookingStatus) error {
	flat := make(map[string]string, len(statuses))
	for id, status := range statuses {
		flat[id] = string(status)
	}
	doc := snapshotDoc{
		ID:        snapshotDocID,
		Statuses:  flat,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": snapshotDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot, or an empty map when none is stored.
func (r *mongoSnapshotRepo) Load(ctx context.Context) (map[string]models.BookingStatus, error) {
	var doc snapshotDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": snapshotDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return map[string]models.BookingStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	statuses := make(map[string]models.BookingStatus, len(doc.Statuses))
	for id, status := range doc.Statuses {
		statuses[id] = models.BookingStatus(status)
	}
	return statuses, nil
}
