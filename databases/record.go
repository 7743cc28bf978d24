package databases

// go generate: mockery --name RecordDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordDatabase contains the methods to use with a single collection whose
// documents are handled as plain bson.M records
type RecordDatabase interface {
	Name() string
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (bson.M, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error)
	InsertOne(ctx context.Context, document interface{}) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, field string, filter interface{}) ([]interface{}, error)
}

type recordDatabase struct {
	db   DatabaseHelper
	name string
}

// NewRecordDatabase initializes a record database over the named collection
func NewRecordDatabase(db DatabaseHelper, name string) RecordDatabase {
	return &recordDatabase{
		db:   db,
		name: name,
	}
}

func (c *recordDatabase) Name() string {
	return c.name
}

func (c *recordDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (bson.M, error) {
	record := bson.M{}
	err := c.db.Collection(c.name).FindOne(ctx, filter, opts...).Decode(&record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (c *recordDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	curr, err := c.db.Collection(c.name).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)

	records := []bson.M{}
	if err := curr.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *recordDatabase) InsertOne(ctx context.Context, document interface{}) (primitive.ObjectID, error) {
	res, err := c.db.Collection(c.name).InsertOne(ctx, document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%s: unexpected inserted id type %T", c.name, res.InsertedID)
	}
	return oid, nil
}

func (c *recordDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(c.name).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *recordDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	res, err := c.db.Collection(c.name).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *recordDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	res, err := c.db.Collection(c.name).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *recordDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(c.name).CountDocuments(ctx, filter)
}

func (c *recordDatabase) Distinct(ctx context.Context, field string, filter interface{}) ([]interface{}, error) {
	return c.db.Collection(c.name).Distinct(ctx, field, filter)
}
