// Package memory is an in-memory stand-in for the MongoDB helpers. It keeps
// documents as encoded BSON so reads behave like driver reads, and understands
// the small query surface this service issues: equality, $in and $nin
// filters, multi-key sort, skip/limit, $set and $push updates.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/casedesk-api/databases"
)

// Database is a DatabaseHelper backed by process memory
type Database struct {
	mu          sync.Mutex
	collections map[string][]bson.Raw
	failures    map[string]error
	ops         atomic.Int64
}

// New returns an empty database
func New() *Database {
	return &Database{
		collections: map[string][]bson.Raw{},
		failures:    map[string]error{},
	}
}

// Collection returns a handle on the named collection
func (d *Database) Collection(name string) databases.CollectionHelper {
	return &collection{db: d, name: name}
}

// Ops reports how many collection operations have been issued
func (d *Database) Ops() int64 {
	return d.ops.Load()
}

// Fail makes every later call of op on the named collection return err.
// A nil err clears the failure.
func (d *Database) Fail(name, op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := name + "." + op
	if err == nil {
		delete(d.failures, key)
		return
	}
	d.failures[key] = err
}

// Len reports the number of documents held in a collection
func (d *Database) Len(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.collections[name])
}

// Client wraps a Database as a ClientHelper
type Client struct {
	DB *Database
}

// NewClient returns a client whose every database is db
func NewClient(db *Database) *Client {
	return &Client{DB: db}
}

func (c *Client) Database(string) databases.DatabaseHelper { return c.DB }
func (c *Client) Connect(context.Context) error            { return nil }
func (c *Client) Ping(ctx context.Context) error           { return ctx.Err() }
func (c *Client) Disconnect(context.Context) error         { return nil }

type collection struct {
	db   *Database
	name string
}

// begin counts the operation and reports an injected or context failure
func (c *collection) begin(ctx context.Context, op string) error {
	c.db.ops.Add(1)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", databases.ErrStorageUnavailable, err)
	}
	if err, ok := c.db.failures[c.name+"."+op]; ok {
		return err
	}
	return nil
}

func (c *collection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) databases.SingleResultHelper {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "FindOne"); err != nil {
		return &singleResult{err: err}
	}

	find := options.Find().SetLimit(1)
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Sort != nil {
			find.SetSort(o.Sort)
		}
		if o.Skip != nil {
			find.SetSkip(*o.Skip)
		}
	}
	docs, err := c.query(filter, find)
	if err != nil {
		return &singleResult{err: err}
	}
	if len(docs) == 0 {
		return &singleResult{err: fmt.Errorf("%w: %w", databases.ErrNotFound, mongo.ErrNoDocuments)}
	}
	return &singleResult{raw: docs[0].raw}
}

func (c *collection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (databases.CursorHelper, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "Find"); err != nil {
		return nil, err
	}

	docs, err := c.query(filter, options.MergeFindOptions(opts...))
	if err != nil {
		return nil, err
	}
	raws := make([]bson.Raw, len(docs))
	for i, d := range docs {
		raws[i] = d.raw
	}
	return &cursor{docs: raws}, nil
}

func (c *collection) InsertOne(ctx context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "InsertOne"); err != nil {
		return nil, err
	}

	doc, err := toM(document)
	if err != nil {
		return nil, err
	}
	id, ok := doc["_id"]
	if !ok {
		id = primitive.NewObjectID()
		doc["_id"] = id
	}
	for _, raw := range c.db.collections[c.name] {
		existing, err := decode(raw)
		if err != nil {
			return nil, err
		}
		if equal(existing["_id"], id) {
			return nil, fmt.Errorf("%s: duplicate key _id %v", c.name, id)
		}
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	c.db.collections[c.name] = append(c.db.collections[c.name], raw)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (c *collection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "UpdateOne"); err != nil {
		return nil, err
	}

	docs, err := c.query(filter, options.Find().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &mongo.UpdateResult{}, nil
	}
	ops, err := toM(update)
	if err != nil {
		return nil, err
	}
	doc := docs[0].doc
	if err := apply(doc, ops); err != nil {
		return nil, err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	c.db.collections[c.name][docs[0].index] = raw
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (c *collection) DeleteOne(ctx context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "DeleteOne"); err != nil {
		return nil, err
	}
	n, err := c.remove(filter, 1)
	if err != nil {
		return nil, err
	}
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

func (c *collection) DeleteMany(ctx context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "DeleteMany"); err != nil {
		return nil, err
	}
	n, err := c.remove(filter, 0)
	if err != nil {
		return nil, err
	}
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

func (c *collection) CountDocuments(ctx context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "CountDocuments"); err != nil {
		return 0, err
	}
	docs, err := c.query(filter, nil)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *collection) Distinct(ctx context.Context, field string, filter interface{}, _ ...*options.DistinctOptions) ([]interface{}, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.begin(ctx, "Distinct"); err != nil {
		return nil, err
	}
	docs, err := c.query(filter, nil)
	if err != nil {
		return nil, err
	}

	values := []interface{}{}
	for _, d := range docs {
		v, ok := lookup(d.doc, field)
		if !ok {
			continue
		}
		seen := false
		for _, existing := range values {
			if equal(existing, v) {
				seen = true
				break
			}
		}
		if !seen {
			values = append(values, v)
		}
	}
	return values, nil
}

// remove deletes up to limit matching documents, or all of them when limit is 0
func (c *collection) remove(filter interface{}, limit int) (int64, error) {
	f, err := toM(filter)
	if err != nil {
		return 0, err
	}
	kept := make([]bson.Raw, 0, len(c.db.collections[c.name]))
	var deleted int64
	for _, raw := range c.db.collections[c.name] {
		doc, err := decode(raw)
		if err != nil {
			return 0, err
		}
		if (limit == 0 || deleted < int64(limit)) && matches(doc, f) {
			deleted++
			continue
		}
		kept = append(kept, raw)
	}
	c.db.collections[c.name] = kept
	return deleted, nil
}

type singleResult struct {
	raw bson.Raw
	err error
}

func (s *singleResult) Decode(v interface{}) error {
	if s.err != nil {
		return s.err
	}
	return bson.Unmarshal(s.raw, v)
}
