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

const roleCollection = "roles"

// MongoRoleRepository reads the role catalog. The catalog is global and
// read-mostly; writes happen only through Seed at deploy time.
type MongoRoleRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewRoleRepository(db *mongo.Database, timeout time.Duration) *MongoRoleRepository {
	return &MongoRoleRepository{coll: db.Collection(roleCollection), timeout: timeout}
}

func (r *MongoRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapUpstream("list roles", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Role
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	return out, nil
}

func (r *MongoRoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	var role domain.Role
	if err := r.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, wrapUpstream("find role", err)
	}
	return &role, nil
}

// Seed upserts the built-in catalog. Safe to run on every startup.
func (r *MongoRoleRepository) Seed(ctx context.Context, roles []domain.Role) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	for _, role := range roles {
		_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": role.Name}, role, options.Replace().SetUpsert(true))
		if err != nil {
			return wrapUpstream("seed role", err)
		}
	}
	return nil
}
