package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database holds the Mongo client and the collections used by the stores.
type Database struct {
	Client             *mongo.Client
	UserCollection     *mongo.Collection
	RecipeCollection   *mongo.Collection
	ContactsCollection *mongo.Collection
	LikesCollection    *mongo.Collection
}

// Connect dials MongoDB and pings the primary.
func Connect(ctx context.Context, url, dbName string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return New(client, client.Database(dbName)), nil
}

// New wires the collections of an already connected database.
func New(client *mongo.Client, database *mongo.Database) *Database {
	return &Database{
		Client:             client,
		UserCollection:     database.Collection("users"),
		RecipeCollection:   database.Collection("recipes"),
		ContactsCollection: database.Collection("contacts"),
		LikesCollection:    database.Collection("likes"),
	}
}

// EnsureIndexes creates the indexes the stores rely on. The unique indexes
// back the username and like de-duplication invariants.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	if _, err := d.UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	if _, err := d.LikesCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "recipeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "recipeId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("likes indexes: %w", err)
	}

	if _, err := d.RecipeCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("recipes indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (d *Database) Close(ctx context.Context) error {
	if d.Client == nil {
		return nil
	}
	return d.Client.Disconnect(ctx)
}

// Stores builds the Mongo-backed stores. When transactions is true likes are
// recorded inside a multi-document transaction (requires a replica set).
func (d *Database) Stores(transactions bool) Stores {
	return Stores{
		Users:    &UserStoreMongo{coll: d.UserCollection},
		Recipes:  &RecipeStoreMongo{coll: d.RecipeCollection},
		Contacts: &ContactStoreMongo{coll: d.ContactsCollection},
		Likes: &LikeStoreMongo{
			client:       d.Client,
			likes:        d.LikesCollection,
			users:        d.UserCollection,
			recipes:      d.RecipeCollection,
			transactions: transactions,
		},
	}
}
