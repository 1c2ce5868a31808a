package kv

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRecord struct {
	Key  string `bson:"_id"`
	Rev  string `bson:"rev"`
	Body []byte `bson:"body"`
}

// MongoStore stores one Mongo document per record, keyed by _id. Revision
// checks are part of the update/delete filter so a stale writer matches
// nothing.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (m *MongoStore) Get(ctx context.Context, key string) (*Record, error) {
	var rec mongoRecord
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("mongo get", err)
	}
	return &Record{Key: rec.Key, Rev: rec.Rev, Body: rec.Body}, nil
}

func (m *MongoStore) Put(ctx context.Context, rec *Record) (string, error) {
	rev := NextRevision(rec.Rev)
	if rec.Rev == "" {
		_, err := m.col.InsertOne(ctx, mongoRecord{Key: rec.Key, Rev: rev, Body: rec.Body})
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrConflict
		}
		if err != nil {
			return "", unavailable("mongo put", err)
		}
		return rev, nil
	}

	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": rec.Key, "rev": rec.Rev},
		bson.M{"$set": bson.M{"rev": rev, "body": rec.Body}})
	if err != nil {
		return "", unavailable("mongo put", err)
	}
	if res.MatchedCount == 0 {
		return "", ErrConflict
	}
	return rev, nil
}

func (m *MongoStore) Remove(ctx context.Context, key, rev string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": key, "rev": rev})
	if err != nil {
		return unavailable("mongo remove", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}
	if _, err := m.Get(ctx, key); err != nil {
		return err
	}
	return ErrConflict
}

func (m *MongoStore) Range(ctx context.Context, start, end string) ([]*Record, error) {
	bounds := bson.M{"$gte": start}
	if end != "" {
		bounds["$lt"] = end
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"_id": bounds}, opts)
	if err != nil {
		return nil, unavailable("mongo range", err)
	}
	defer cur.Close(ctx)

	var out []*Record
	for cur.Next(ctx) {
		var rec mongoRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, unavailable("mongo range", err)
		}
		out = append(out, &Record{Key: rec.Key, Rev: rec.Rev, Body: rec.Body})
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable("mongo range", err)
	}
	return out, nil
}

// Close is a no-op; the client is owned by whoever connected it.
func (m *MongoStore) Close() error { return nil }
