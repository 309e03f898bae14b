package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"openspace/internal/migrations/mongo/validators"
	reservationsrepository "openspace/internal/reservations/repository"
	spacesrepository "openspace/internal/spaces/repository"
	mongotx "openspace/pkg/db/mongo"
	"openspace/pkg/logger"
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists everything the service expects to exist, in creation order.
func Collections() []CollectionDef {
	return []CollectionDef{
		{
			Name:      spacesrepository.CollectionName,
			Validator: validators.SpaceValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "created_at", Value: -1}}},
			},
		},
		{
			Name:      reservationsrepository.CollectionName,
			Validator: validators.ReservationValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "space_id", Value: 1},
					{Key: "start", Value: 1},
					{Key: "end", Value: 1},
				}},
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start", Value: 1}}},
			},
		},
		{
			Name:      reservationsrepository.LockCollectionName,
			Validator: validators.SpaceLockValidator,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "expires_at", Value: 1}},
					Options: options.Index().SetExpireAfterSeconds(0),
				},
			},
		},
		{Name: mongotx.CountersCollection},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if len(def.Indexes) == 0 {
			continue
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
		log.Info("Ensured indexes", "collection", def.Name, "count", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, def CollectionDef, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: def.Name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", def.Name)
		opts := options.CreateCollection()
		if def.Validator != nil {
			opts.SetValidator(def.Validator)
		}
		if err := db.CreateCollection(ctx, def.Name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", def.Name, err)
		}
		return nil
	}

	if def.Validator == nil {
		return nil
	}
	command := bson.D{
		{Key: "collMod", Value: def.Name},
		{Key: "validator", Value: def.Validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", def.Name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
