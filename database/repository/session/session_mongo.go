package sessionRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// One session per deployment; the durable row is keyed by a fixed id.
const sessionDocID = "portal-session"

// Repository persists the portal session for cold-start recovery.
type Repository interface {
	Save(ctx context.Context, session *models.PortalSession) error
	Load(ctx context.Context) (*models.PortalSession, error)
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"` // AES-GCM encrypted JSON of the session
	ExpiresAt time.Time `bson:"expiresAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoSessionRepo struct {
	coll   *mongo.Collection
	secret string
}

// NewMongoSessionRepo builds the Mongo-backed session repository. Cookie
// material is encrypted with secret before it touches the database.
func NewMongoSessionRepo(client *mongo.Client, dbName, secret string) Repository {
	return &mongoSessionRepo{
		coll:   client.Database(dbName).Collection("portal_sessions"),
		secret: secret,
	}
}

// Save upserts the singleton session row.
func (r *mongoSessionRepo) Save(ctx context.Context, session *models.PortalSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	enc, err := utils.EncryptString(string(raw), r.secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	doc := sessionDoc{
		ID:        sessionDocID,
		Data:      enc,
		ExpiresAt: session.ExpiresAt,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": sessionDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Load returns the persisted session, or (nil, nil) when none is stored.
func (r *mongoSessionRepo) Load(ctx context.Context) (*models.PortalSession, error) {
	var doc sessionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": sessionDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	raw, err := utils.DecryptString(doc.Data, r.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}
	var session models.PortalSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}
