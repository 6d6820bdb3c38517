package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const productsCollection = "products"

// MongoStore keeps one document per product in the products collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(productsCollection)}
}

// EnsureIndexes creates the listing index. Safe to call on every start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return storageErr("ensure indexes", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.coll.Database().Client().Ping(ctx, readpref.Primary())
	})
}

func (s *MongoStore) List(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cur, err := s.coll.Find(ctx, bson.D{}, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, storageErr("get product", err)
	}
	return p, nil
}

func (s *MongoStore) Create(ctx context.Context, p Product) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.coll.InsertOne(ctx, p)
		return err
	})
	if err != nil {
		return storageErr("create product", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, p Product) error {
	var matched int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p)
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	if err != nil {
		return storageErr("update product", err)
	}
	if matched == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	var deleted int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return storageErr("delete product", err)
	}
	if deleted == 0 {
		return ErrProductNotFound
	}
	return nil
}
