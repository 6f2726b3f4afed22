package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/platops/tenant-engine/internal/core/domain"
)

const tenantCollection = "tenants"

// MongoTenantRepository persists tenant records. Tenants are global
// entities, not tenant-scoped data, so reads here do not go through
// FilterByTenant.
type MongoTenantRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewTenantRepository(db *mongo.Database, timeout time.Duration) *MongoTenantRepository {
	return &MongoTenantRepository{coll: db.Collection(tenantCollection), timeout: timeout}
}

type mongoTenant struct {
	ID        string         `bson:"_id"`
	Name      string         `bson:"name"`
	Status    string         `bson:"status"`
	Modules   []string       `bson:"modules"`
	Contact   domain.Contact `bson:"contact"`
	CreatedAt int64          `bson:"created_at"`
	UpdatedAt int64          `bson:"updated_at"`
}

func (r *MongoTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoTenant(tenant)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTenantExists
		}
		return wrapUpstream("insert tenant", err)
	}
	return nil
}

func (r *MongoTenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	var mt mongoTenant
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, wrapUpstream("find tenant", err)
	}
	return fromMongoTenant(&mt), nil
}

func (r *MongoTenantRepository) List(ctx context.Context, includeDeleted bool) ([]domain.Tenant, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if !includeDeleted {
		filter["status"] = bson.M{"$ne": string(domain.TenantDeleted)}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, wrapUpstream("list tenants", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Tenant
	for cursor.Next(ctx) {
		var mt mongoTenant
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode tenant: %w", err)
		}
		out = append(out, *fromMongoTenant(&mt))
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapUpstream("list tenants", err)
	}
	return out, nil
}

func (r *MongoTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": tenant.ID}, toMongoTenant(tenant))
	if err != nil {
		return wrapUpstream("update tenant", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func toMongoTenant(t *domain.Tenant) *mongoTenant {
	return &mongoTenant{
		ID:        t.ID,
		Name:      t.Name,
		Status:    string(t.Status),
		Modules:   t.Modules,
		Contact:   t.Contact,
		CreatedAt: t.CreatedAt.Unix(),
		UpdatedAt: t.UpdatedAt.Unix(),
	}
}

func fromMongoTenant(mt *mongoTenant) *domain.Tenant {
	return &domain.Tenant{
		ID:        mt.ID,
		Name:      mt.Name,
		Status:    domain.TenantStatus(mt.Status),
		Modules:   mt.Modules,
		Contact:   mt.Contact,
		CreatedAt: unixToTime(mt.CreatedAt),
		UpdatedAt: unixToTime(mt.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// wrapUpstream classifies a driver error: context expiry means the store
// could not be reached in time and is retryable, everything else is a plain
// storage failure.
func wrapUpstream(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
