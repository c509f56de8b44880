package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps records as documents keyed by the composed
// table/key string in a single collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func ConnectMongoDB(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("kv_records"),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, table, key string, out interface{}) error {
	var doc struct {
		V bson.Raw `bson:"v"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": composeKey(table, key)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return bson.Unmarshal(doc.V, out)
}

func (s *MongoStore) Set(ctx context.Context, table, key string, value interface{}) error {
	k := composeKey(table, key)
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": k},
		bson.M{"_id": k, "v": value},
		options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
