package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/databases/mocks"
)

func TestNewCaseDatabase(t *testing.T) {
	conf := &config.Config{URL: "mongodb://127.0.0.1:27017", DatabaseName: "test"}

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	caseDB := databases.NewCaseDatabase(db)

	assert.NotEmpty(t, caseDB)
	assert.Equal(t, "cases", caseDB.Name())
}

func TestRecordDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(databases.ErrNotFound)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*bson.M)
		(*arg)["title"] = "mocked-case"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	record, err := caseDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Nil(t, record)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	record, err = caseDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, bson.M{"title": "mocked-case"}, record)
	assert.NoError(t, err)
}

func TestRecordDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]bson.M)
		*arg = append(*arg, bson.M{"name": "first"}, bson.M{"name": "second"})
	})
	cursorHelper.(*mocks.CursorHelper).
		On("Close", context.Background()).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))
	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "case_parties").Return(collectionHelper)

	partyDba := databases.NewRecordDatabase(dbHelper, databases.CasePartyName)

	records, err := partyDba.Find(context.Background(), bson.M{"error": true})
	assert.Nil(t, records)
	assert.EqualError(t, err, "mocked-error")

	records, err = partyDba.Find(context.Background(), bson.M{"error": false})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	cursorHelper.(*mocks.CursorHelper).AssertCalled(t, "Close", context.Background())
}

func TestRecordDatabase_FindEmptyIsNotNil(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", context.Background(), mock.Anything).Return(nil)
	cursorHelper.On("Close", context.Background()).Return(nil)
	collectionHelper.On("Find", context.Background(), bson.M{}).Return(cursorHelper, nil)
	dbHelper.On("Collection", "case_notes").Return(collectionHelper)

	records, err := databases.NewRecordDatabase(dbHelper, databases.CaseNoteName).Find(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecordDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	oid := primitive.NewObjectID()
	collectionHelper.On("InsertOne", context.Background(), bson.M{"title": "ok"}).
		Return(&mongo.InsertOneResult{InsertedID: oid}, nil)
	collectionHelper.On("InsertOne", context.Background(), bson.M{"title": "odd"}).
		Return(&mongo.InsertOneResult{InsertedID: "not-an-oid"}, nil)
	collectionHelper.On("InsertOne", context.Background(), bson.M{"title": "down"}).
		Return(nil, databases.ErrStorageUnavailable)
	dbHelper.On("Collection", "matters").Return(collectionHelper)

	matterDba := databases.NewMatterDatabase(dbHelper)

	got, err := matterDba.InsertOne(context.Background(), bson.M{"title": "ok"})
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = matterDba.InsertOne(context.Background(), bson.M{"title": "odd"})
	assert.Error(t, err)

	got, err = matterDba.InsertOne(context.Background(), bson.M{"title": "down"})
	assert.ErrorIs(t, err, databases.ErrStorageUnavailable)
	assert.True(t, got.IsZero())
}

func TestRecordDatabase_UpdateAndDelete(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	filter := bson.M{"_id": primitive.NewObjectID()}
	update := bson.M{"$set": bson.M{"status": "Disposed"}}
	collectionHelper.On("UpdateOne", context.Background(), filter, update).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	collectionHelper.On("DeleteOne", context.Background(), filter).
		Return(&mongo.DeleteResult{DeletedCount: 1}, nil)
	collectionHelper.On("DeleteMany", context.Background(), bson.M{"case_id": "x"}).
		Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	n, err := caseDba.UpdateOne(context.Background(), filter, update)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = caseDba.DeleteOne(context.Background(), filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = caseDba.DeleteMany(context.Background(), bson.M{"case_id": "x"})
	assert.EqualError(t, err, "mocked-error")
	assert.Zero(t, n)
}

func TestPageFindOptions(t *testing.T) {
	sort := bson.D{{Key: "filing_date", Value: -1}}

	opts := databases.Page{Skip: 40, Limit: 20}.FindOptions(sort)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.EqualValues(t, 40, *opts.Skip)
	assert.EqualValues(t, 20, *opts.Limit)
	assert.Equal(t, sort, opts.Sort)

	opts = databases.Page{}.FindOptions(sort)
	assert.Nil(t, opts.Skip)
	assert.Nil(t, opts.Limit)
}
