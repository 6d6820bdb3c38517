package cart

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const cartsCollection = "carts"

// MongoStore keeps one document per user, keyed by user id, with the line
// items embedded.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(cartsCollection)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.coll.Database().Client().Ping(ctx, readpref.Primary())
	})
}

func (s *MongoStore) Get(ctx context.Context, userID string) (Cart, bool, error) {
	var c Cart
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&c)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c, true, nil
}

func (s *MongoStore) Save(ctx context.Context, c Cart, expectedVersion int64) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if expectedVersion == 0 {
			_, err := s.coll.InsertOne(ctx, c)
			if mongo.IsDuplicateKeyError(err) {
				return ErrConflict
			}
			return err
		}

		res, err := s.coll.ReplaceOne(ctx, bson.D{
			{Key: "_id", Value: c.UserID},
			{Key: "version", Value: expectedVersion},
		}, c)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrConflict
		}
		return nil
	})
}
