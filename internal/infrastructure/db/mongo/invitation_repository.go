package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/platops/tenant-engine/internal/core/domain"
)

const invitationCollection = "invitations"

// MongoInvitationRepository persists invitation records. Invitations are
// tenant-scoped data: every filter goes through FilterByTenant where a
// tenant is in play, and rows are never deleted.
type MongoInvitationRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewInvitationRepository(db *mongo.Database, timeout time.Duration) *MongoInvitationRepository {
	return &MongoInvitationRepository{coll: db.Collection(invitationCollection), timeout: timeout}
}

func (r *MongoInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrInvitationPending
		}
		return wrapUpstream("insert invitation", err)
	}
	return nil
}

func (r *MongoInvitationRepository) FindByID(ctx context.Context, id string) (*domain.Invitation, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	var inv domain.Invitation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, wrapUpstream("find invitation", err)
	}
	return &inv, nil
}

func (r *MongoInvitationRepository) FindOpen(ctx context.Context, tenantID, email string) (*domain.Invitation, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	filter := FilterByTenant(bson.M{
		"email":  email,
		"status": bson.M{"$in": []string{string(domain.InvitationPending), string(domain.InvitationSent)}},
	}, tenantID)

	var inv domain.Invitation
	if err := r.coll.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapUpstream("find open invitation", err)
	}
	return &inv, nil
}

func (r *MongoInvitationRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, FilterByTenant(bson.M{}, tenantID), opts)
	if err != nil {
		return nil, wrapUpstream("list invitations", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Invitation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode invitations: %w", err)
	}
	return out, nil
}

func (r *MongoInvitationRepository) Update(ctx context.Context, inv *domain.Invitation) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	if err != nil {
		return wrapUpstream("update invitation", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

// ExpireStale flips every sent invitation past its expiry to expired in a
// single UpdateMany. Matching on status=sent makes the sweep idempotent.
func (r *MongoInvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"status":     string(domain.InvitationSent),
			"expires_at": bson.M{"$lt": now},
		},
		bson.M{"$set": bson.M{
			"status":     string(domain.InvitationExpired),
			"updated_at": now,
		}},
	)
	if err != nil {
		return 0, wrapUpstream("expire invitations", err)
	}
	return res.ModifiedCount, nil
}
