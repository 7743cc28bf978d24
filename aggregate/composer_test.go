package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/databases/memory"
	"github.com/linesmerrill/casedesk-api/models"
	"github.com/linesmerrill/casedesk-api/normalize"
)

// newTestComposer returns a composer whose clock advances a second per read
func newTestComposer() (*Composer, *memory.Database) {
	db := memory.New()
	c := NewComposer(db)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return c, db
}

func insertCase(t *testing.T, db *memory.Database) primitive.ObjectID {
	t.Helper()
	res, err := db.Collection(databases.CaseName).InsertOne(context.Background(), bson.M{
		"title":       "State v Doe",
		"case_number": "42/2024",
		"court_type":  "HC",
		"status":      "Active",
	})
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID)
}

func hearing(t *testing.T, day int) bson.M {
	t.Helper()
	rec, err := normalize.Normalize(models.CaseHearingCreate{
		HearingDate: models.NewDate(2024, time.April, day),
	}, normalize.Create)
	require.NoError(t, err)
	return rec
}

func TestComposeDetailMissingCase(t *testing.T) {
	c, _ := newTestComposer()
	_, err := c.ComposeDetail(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, databases.ErrNotFound)
}

func TestComposeDetailEmptyChildren(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)

	detail, err := c.ComposeDetail(context.Background(), caseRef)
	require.NoError(t, err)

	assert.Equal(t, caseRef.Hex(), detail["id"])
	assert.NotContains(t, detail, "_id")
	assert.Equal(t, "State v Doe", detail["title"])
	for _, k := range Kinds {
		seq, ok := detail[k.Key].([]map[string]interface{})
		require.True(t, ok, k.Key)
		assert.NotNil(t, seq, k.Key)
		assert.Empty(t, seq, k.Key)
	}
}

func TestComposeDetailOrdersHearingsByDateDescending(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()

	for _, day := range []int{2, 9, 5} {
		_, err := c.AddChild(ctx, Hearings, caseRef, hearing(t, day))
		require.NoError(t, err)
	}

	detail, err := c.ComposeDetail(ctx, caseRef)
	require.NoError(t, err)

	hearings := detail["hearings"].([]map[string]interface{})
	require.Len(t, hearings, 3)
	var days []int
	for _, h := range hearings {
		days = append(days, h["hearing_date"].(time.Time).Day())
		assert.Equal(t, caseRef.Hex(), h["case_id"])
		assert.IsType(t, "", h["id"])
	}
	assert.Equal(t, []int{9, 5, 2}, days)
}

func TestComposeDetailOrdersByCreationAndKeepsPartyInsertionOrder(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := c.AddChild(ctx, Parties, caseRef, bson.M{"name": name, "party_type": "Petitioner"})
		require.NoError(t, err)
		_, err = c.AddChild(ctx, Notes, caseRef, bson.M{"content": name})
		require.NoError(t, err)
		_, err = c.AddChild(ctx, Documents, caseRef, bson.M{"document_name": name, "category": "Evidence"})
		require.NoError(t, err)
		_, err = c.AddChild(ctx, Tasks, caseRef, bson.M{"title": name})
		require.NoError(t, err)
	}

	detail, err := c.ComposeDetail(ctx, caseRef)
	require.NoError(t, err)

	field := func(key, name string) []string {
		var out []string
		for _, d := range detail[key].([]map[string]interface{}) {
			out = append(out, d[name].(string))
		}
		return out
	}
	assert.Equal(t, []string{"first", "second", "third"}, field("parties", "name"))
	assert.Equal(t, []string{"third", "second", "first"}, field("notes", "content"))
	assert.Equal(t, []string{"third", "second", "first"}, field("documents", "document_name"))
	assert.Equal(t, []string{"third", "second", "first"}, field("tasks", "title"))
}

func TestComposeDetailOnlyIncludesOwnChildren(t *testing.T) {
	c, db := newTestComposer()
	mine, other := insertCase(t, db), insertCase(t, db)
	ctx := context.Background()

	_, err := c.AddChild(ctx, Notes, mine, bson.M{"content": "mine"})
	require.NoError(t, err)
	_, err = c.AddChild(ctx, Notes, other, bson.M{"content": "other"})
	require.NoError(t, err)

	detail, err := c.ComposeDetail(ctx, mine)
	require.NoError(t, err)
	notes := detail["notes"].([]map[string]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, "mine", notes[0]["content"])
}

func TestComposeDetailPropagatesStorageErrors(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	db.Fail(databases.CaseTaskName, "Find", databases.ErrStorageUnavailable)

	_, err := c.ComposeDetail(context.Background(), caseRef)
	assert.ErrorIs(t, err, databases.ErrStorageUnavailable)
}

func TestCascadeDeleteRemovesEveryChild(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	keep := insertCase(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		for _, k := range Kinds {
			_, err := c.AddChild(ctx, k, caseRef, bson.M{"n": i})
			require.NoError(t, err)
		}
	}
	_, err := c.AddChild(ctx, Notes, keep, bson.M{"content": "stays"})
	require.NoError(t, err)

	result, err := c.CascadeDelete(ctx, caseRef)
	require.NoError(t, err)
	assert.True(t, result.CaseDeleted)
	for _, k := range Kinds {
		assert.EqualValues(t, 3, result.Children[k.Key], k.Key)

		left, err := c.ListChildren(ctx, k, caseRef, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, left, k.Key)
	}

	_, err = c.ComposeDetail(ctx, caseRef)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	kept, err := c.ListChildren(ctx, Notes, keep, nil, nil)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestCascadeDeleteMissingCaseStillClearsChildren(t *testing.T) {
	c, db := newTestComposer()
	ghost := primitive.NewObjectID()
	_, err := db.Collection(databases.CaseNoteName).InsertOne(context.Background(), bson.M{"case_id": ghost})
	require.NoError(t, err)

	result, err := c.CascadeDelete(context.Background(), ghost)
	assert.ErrorIs(t, err, databases.ErrNotFound)
	assert.False(t, result.CaseDeleted)
	assert.EqualValues(t, 1, result.Children["notes"])
	assert.Zero(t, db.Len(databases.CaseNoteName))
}

func TestCascadeDeleteContinuesPastFailure(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()
	for _, k := range Kinds {
		_, err := c.AddChild(ctx, k, caseRef, bson.M{})
		require.NoError(t, err)
	}
	boom := errors.New("write concern failed")
	db.Fail(databases.CaseHearingName, "DeleteMany", boom)

	result, err := c.CascadeDelete(ctx, caseRef)

	var cascadeErr *CascadeError
	require.ErrorAs(t, err, &cascadeErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{databases.CaseHearingName}, cascadeErr.Failed)
	assert.True(t, result.CaseDeleted)
	assert.Equal(t, 1, db.Len(databases.CaseHearingName))
	for _, name := range []string{databases.CasePartyName, databases.CaseDocumentName, databases.CaseNoteName, databases.CaseTaskName} {
		assert.Zero(t, db.Len(name), name)
	}

	db.Fail(databases.CaseHearingName, "DeleteMany", nil)
	reports, err := c.SweepOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "hearings", reports[0].Kind)
	assert.EqualValues(t, 1, reports[0].Removed)
	assert.Zero(t, db.Len(databases.CaseHearingName))
}

func TestCascadeDeleteStopsWhenCaseDeleteFails(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	_, err := c.AddChild(context.Background(), Notes, caseRef, bson.M{})
	require.NoError(t, err)
	db.Fail(databases.CaseName, "DeleteOne", databases.ErrStorageUnavailable)

	_, err = c.CascadeDelete(context.Background(), caseRef)
	assert.ErrorIs(t, err, databases.ErrStorageUnavailable)
	assert.Equal(t, 1, db.Len(databases.CaseNoteName))
}

func TestAddChildRequiresParent(t *testing.T) {
	c, db := newTestComposer()
	ghost := primitive.NewObjectID()

	_, err := c.AddChild(context.Background(), Hearings, ghost, hearing(t, 1))
	assert.ErrorIs(t, err, databases.ErrParentMissing)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	left, err := c.ListChildren(context.Background(), Hearings, ghost, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Zero(t, db.Len(databases.CaseHearingName))
}

func TestAddChildStampsServerFields(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)

	doc, err := c.AddChild(context.Background(), Documents, caseRef, bson.M{
		"document_name": "order.pdf",
		"uploaded_at":   "client supplied",
		"case_id":       "client supplied",
	})
	require.NoError(t, err)

	assert.Equal(t, caseRef.Hex(), doc["case_id"])
	uploaded, ok := doc["uploaded_at"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, uploaded.Location())
	assert.Equal(t, uploaded, doc["updated_at"])
	assert.NotContains(t, doc, "created_at")
	assert.Len(t, doc["id"], 24)
}

func TestUpdateChild(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()

	created, err := c.AddChild(ctx, Tasks, caseRef, bson.M{"title": "draft reply", "status": "open", "priority": "medium"})
	require.NoError(t, err)
	childRef, err := primitive.ObjectIDFromHex(created["id"].(string))
	require.NoError(t, err)

	set, err := normalize.Normalize(models.CaseTaskUpdate{Status: models.Some("done")}, normalize.PartialUpdate)
	require.NoError(t, err)

	updated, err := c.UpdateChild(ctx, Tasks, caseRef, childRef, set)
	require.NoError(t, err)

	assert.Equal(t, "done", updated["status"])
	assert.Equal(t, created["title"], updated["title"])
	assert.Equal(t, created["priority"], updated["priority"])
	assert.Equal(t, created["created_at"], updated["created_at"])
	assert.True(t, updated["updated_at"].(time.Time).After(created["updated_at"].(time.Time)))

	_, err = c.UpdateChild(ctx, Tasks, primitive.NewObjectID(), childRef, set)
	assert.ErrorIs(t, err, databases.ErrNotFound)
}

func TestDeleteChildOfAbsentRecord(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()

	created, err := c.AddChild(ctx, Notes, caseRef, bson.M{"content": "x"})
	require.NoError(t, err)
	childRef, _ := primitive.ObjectIDFromHex(created["id"].(string))

	require.NoError(t, c.DeleteChild(ctx, Notes, caseRef, childRef))
	assert.ErrorIs(t, c.DeleteChild(ctx, Notes, caseRef, childRef), databases.ErrNotFound)
	assert.Zero(t, db.Len(databases.CaseNoteName))
}

func TestDeleteChildRequiresMatchingCase(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)
	ctx := context.Background()

	created, err := c.AddChild(ctx, Notes, caseRef, bson.M{"content": "x"})
	require.NoError(t, err)
	childRef, _ := primitive.ObjectIDFromHex(created["id"].(string))

	err = c.DeleteChild(ctx, Notes, primitive.NewObjectID(), childRef)
	assert.ErrorIs(t, err, databases.ErrNotFound)
	assert.Equal(t, 1, db.Len(databases.CaseNoteName))
}

func TestTouchCase(t *testing.T) {
	c, db := newTestComposer()
	caseRef := insertCase(t, db)

	require.NoError(t, c.TouchCase(context.Background(), caseRef))
	rec, err := c.Cases().FindOne(context.Background(), bson.M{"_id": caseRef})
	require.NoError(t, err)
	assert.IsType(t, primitive.DateTime(0), rec["updated_at"])

	assert.ErrorIs(t, c.TouchCase(context.Background(), primitive.NewObjectID()), databases.ErrNotFound)
}

func TestFindOrphansLeavesLiveRecords(t *testing.T) {
	c, db := newTestComposer()
	live := insertCase(t, db)
	ghost := primitive.NewObjectID()
	ctx := context.Background()

	_, err := c.AddChild(ctx, Parties, live, bson.M{"name": "kept"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = db.Collection(databases.CasePartyName).InsertOne(ctx, bson.M{"case_id": ghost})
		require.NoError(t, err)
	}

	reports, err := c.FindOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, []primitive.ObjectID{ghost}, reports[0].Cases)
	assert.EqualValues(t, 2, reports[0].Records)
	assert.Equal(t, 3, db.Len(databases.CasePartyName))

	_, err = c.SweepOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, db.Len(databases.CasePartyName))

	reports, err = c.FindOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

// cancelOnCaseDelete cancels the caller's context as soon as the case
// delete returns, as a client disconnect would
type cancelOnCaseDelete struct {
	*memory.Database
	cancel context.CancelFunc
}

func (d cancelOnCaseDelete) Collection(name string) databases.CollectionHelper {
	coll := d.Database.Collection(name)
	if name != databases.CaseName {
		return coll
	}
	return cancellingCollection{CollectionHelper: coll, cancel: d.cancel}
}

type cancellingCollection struct {
	databases.CollectionHelper
	cancel context.CancelFunc
}

func (c cancellingCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	res, err := c.CollectionHelper.DeleteOne(ctx, filter, opts...)
	c.cancel()
	return res, err
}

func TestCascadeDeleteFinishesAfterCallerCancels(t *testing.T) {
	db := memory.New()
	caseRef := insertCase(t, db)
	for _, k := range Kinds {
		_, err := db.Collection(k.Collection).InsertOne(context.Background(), bson.M{"case_id": caseRef})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewComposer(cancelOnCaseDelete{Database: db, cancel: cancel})

	result, err := c.CascadeDelete(ctx, caseRef)
	require.NoError(t, err)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, result.CaseDeleted)
	assert.Zero(t, db.Len(databases.CaseName))
	for _, k := range Kinds {
		assert.EqualValues(t, 1, result.Children[k.Key], k.Key)
		assert.Zero(t, db.Len(k.Collection), k.Collection)
	}
}
