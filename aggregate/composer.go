// Package aggregate composes a case with the records that hang off it and
// keeps those records consistent with the case across create, delete and
// repair.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/identifier"
	"github.com/linesmerrill/casedesk-api/logging"
)

// cascadeTimeout bounds the child deletes of one cascade
const cascadeTimeout = 30 * time.Second

// Composer reads and writes cases together with their child records
type Composer struct {
	cases    databases.RecordDatabase
	children map[string]databases.RecordDatabase
	now      func() time.Time
}

// NewComposer binds a composer to the given database
func NewComposer(db databases.DatabaseHelper) *Composer {
	children := make(map[string]databases.RecordDatabase, len(Kinds))
	for _, k := range Kinds {
		children[k.Key] = databases.NewRecordDatabase(db, k.Collection)
	}
	return &Composer{
		cases:    databases.NewCaseDatabase(db),
		children: children,
		now:      time.Now,
	}
}

// Now returns the server time as stored, UTC at millisecond precision
func (c *Composer) Now() time.Time {
	return c.now().UTC().Truncate(time.Millisecond)
}

// Cases exposes the case collection
func (c *Composer) Cases() databases.RecordDatabase {
	return c.cases
}

// ComposeDetail returns the case with its parties, hearings, documents,
// notes and tasks, every reference encoded for output
func (c *Composer) ComposeDetail(ctx context.Context, caseRef primitive.ObjectID) (map[string]interface{}, error) {
	record, err := c.cases.FindOne(ctx, bson.M{"_id": caseRef})
	if err != nil {
		return nil, err
	}

	results := make([][]bson.M, len(Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range Kinds {
		i, k := i, k
		g.Go(func() error {
			docs, err := c.children[k.Key].Find(gctx, bson.M{"case_id": caseRef}, options.Find().SetSort(k.Sort))
			if err != nil {
				return fmt.Errorf("%s: %w", k.Key, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := identifier.EncodeDocument(record)
	for i, k := range Kinds {
		detail[k.Key] = identifier.EncodeDocuments(results[i])
	}
	return detail, nil
}

// CascadeResult counts what a cascade delete removed
type CascadeResult struct {
	CaseDeleted bool
	Children    map[string]int64
}

// CascadeError reports child collections a cascade delete could not clear.
// The records left behind are picked up by the orphan sweep.
type CascadeError struct {
	Case   primitive.ObjectID
	Failed []string
	Err    error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete of case %s left records in %s: %v",
		e.Case.Hex(), strings.Join(e.Failed, ", "), e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// CascadeDelete removes the case and then every child collection's records
// for it. Child deletes run even when the case was already gone, and a
// failing child delete does not stop the ones after it. Once the case delete
// has been issued the child deletes ignore cancellation of ctx and are
// bounded by cascadeTimeout instead.
func (c *Composer) CascadeDelete(ctx context.Context, caseRef primitive.ObjectID) (CascadeResult, error) {
	result := CascadeResult{Children: make(map[string]int64, len(Kinds))}

	n, err := c.cases.DeleteOne(ctx, bson.M{"_id": caseRef})
	if err != nil {
		return result, err
	}
	result.CaseDeleted = n > 0

	childCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cascadeTimeout)
	defer cancel()

	var failed []string
	var errs []error
	for _, k := range Kinds {
		deleted, err := c.children[k.Key].DeleteMany(childCtx, bson.M{"case_id": caseRef})
		if err != nil {
			logging.FromContext(ctx).Warnw("cascade delete left child records behind",
				"case_id", caseRef.Hex(),
				"collection", k.Collection,
				"error", err)
			failed = append(failed, k.Collection)
			errs = append(errs, fmt.Errorf("%s: %w", k.Collection, err))
			continue
		}
		result.Children[k.Key] = deleted
	}

	if len(errs) > 0 {
		return result, &CascadeError{Case: caseRef, Failed: failed, Err: errors.Join(errs...)}
	}
	if !result.CaseDeleted {
		return result, databases.ErrNotFound
	}
	return result, nil
}

// CaseExists reports whether a case with the reference is stored
func (c *Composer) CaseExists(ctx context.Context, caseRef primitive.ObjectID) (bool, error) {
	n, err := c.cases.CountDocuments(ctx, bson.M{"_id": caseRef})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TouchCase refreshes the case's updated_at
func (c *Composer) TouchCase(ctx context.Context, caseRef primitive.ObjectID) error {
	n, err := c.cases.UpdateOne(ctx, bson.M{"_id": caseRef}, bson.M{"$set": bson.M{"updated_at": c.Now()}})
	if err != nil {
		return err
	}
	if n == 0 {
		return databases.ErrNotFound
	}
	return nil
}

// AddChild inserts a record under the case once the case is confirmed to
// exist, and returns the stored record
func (c *Composer) AddChild(ctx context.Context, kind Kind, caseRef primitive.ObjectID, record bson.M) (map[string]interface{}, error) {
	exists, err := c.CaseExists(ctx, caseRef)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, databases.ErrParentMissing
	}

	doc := make(bson.M, len(record)+3)
	for k, v := range record {
		doc[k] = v
	}
	now := c.Now()
	doc["case_id"] = caseRef
	doc[kind.CreatedField] = now
	doc["updated_at"] = now

	id, err := c.children[kind.Key].InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc["_id"] = id
	return identifier.EncodeDocument(doc), nil
}

// ListChildren returns the case's records of one kind. A nil sort uses the
// kind's detail order.
func (c *Composer) ListChildren(ctx context.Context, kind Kind, caseRef primitive.ObjectID, filter bson.M, sort bson.D) ([]map[string]interface{}, error) {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	f["case_id"] = caseRef
	if sort == nil {
		sort = kind.Sort
	}

	docs, err := c.children[kind.Key].Find(ctx, f, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	return identifier.EncodeDocuments(docs), nil
}

// UpdateChild applies set to the record matching both references and
// returns the updated record
func (c *Composer) UpdateChild(ctx context.Context, kind Kind, caseRef, childRef primitive.ObjectID, set bson.M) (map[string]interface{}, error) {
	fields := make(bson.M, len(set)+1)
	for k, v := range set {
		fields[k] = v
	}
	fields["updated_at"] = c.Now()

	filter := bson.M{"_id": childRef, "case_id": caseRef}
	n, err := c.children[kind.Key].UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, databases.ErrNotFound
	}

	doc, err := c.children[kind.Key].FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return identifier.EncodeDocument(doc), nil
}

// DeleteChild removes the record matching both references
func (c *Composer) DeleteChild(ctx context.Context, kind Kind, caseRef, childRef primitive.ObjectID) error {
	n, err := c.children[kind.Key].DeleteOne(ctx, bson.M{"_id": childRef, "case_id": caseRef})
	if err != nil {
		return err
	}
	if n == 0 {
		return databases.ErrNotFound
	}
	return nil
}
