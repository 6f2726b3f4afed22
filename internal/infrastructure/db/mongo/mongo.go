package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second

	// defaultOpTimeout bounds a single repository operation. Without it a
	// hung primary would stall requests indefinitely: the inbound request
	// context carries no deadline of its own.
	defaultOpTimeout = 5 * time.Second
)

// opContext derives a per-operation context so every storage call carries a
// bounded deadline. Expiry is classified by wrapUpstream as a retryable
// upstream failure, never as a denial.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping,
// ensures the engine's indexes exist, and returns both the client and the
// selected database. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}
	return client, db, nil
}

// ensureIndexes creates the indexes the repositories rely on. Creation is
// idempotent; running against an already-indexed database is a no-op.
//
// The partial unique index on invitations backs the one-open-invitation
// rule per (tenant, email): closed rows (accepted, expired, failed) fall
// outside the partial filter and never block a fresh invitation.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	invitationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: TenantField, Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": []string{"pending", "sent"}}}),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: TenantField, Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection(invitationCollection).Indexes().CreateMany(ctx, invitationIndexes); err != nil {
		return fmt.Errorf("mongo ensure invitation indexes: %w", err)
	}

	statusIndex := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}
	if _, err := db.Collection(tenantCollection).Indexes().CreateOne(ctx, statusIndex); err != nil {
		return fmt.Errorf("mongo ensure tenant indexes: %w", err)
	}
	return nil
}
