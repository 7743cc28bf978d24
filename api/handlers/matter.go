package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/identifier"
	"github.com/linesmerrill/casedesk-api/models"
	"github.com/linesmerrill/casedesk-api/normalize"
)

var matterSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Matter exported for testing purposes
type Matter struct {
	DB databases.RecordDatabase
	// Clock supplies the server time, time.Now when nil
	Clock func() time.Time
}

// now is the server time as stored, UTC at millisecond precision
func (m Matter) now() time.Time {
	clock := m.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Millisecond)
}

// embedMatterRefs moves client_id and assigned_to_id into their embedded
// documents. Only keys present in rec are touched.
func embedMatterRefs(rec bson.M) {
	embed := func(from, to, key string) {
		v, ok := rec[from]
		if !ok {
			return
		}
		delete(rec, from)
		if v == nil {
			rec[to] = nil
			return
		}
		rec[to] = bson.M{key: v}
	}
	embed("client_id", "client", "client_id")
	embed("assigned_to_id", "assigned_to", "user_id")
}

// CreateMatterHandler creates a matter with an empty timeline
func (m Matter) CreateMatterHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.MatterCreate
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	rec, err := normalize.Normalize(payload, normalize.Create)
	if err != nil {
		writeError(w, "invalid matter", err)
		return
	}
	embedMatterRefs(rec)
	ts := m.now()
	rec["timeline"] = bson.A{}
	rec["is_archived"] = false
	rec["created_at"] = ts
	rec["updated_at"] = ts

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	id, err := m.DB.InsertOne(ctx, rec)
	if err != nil {
		writeError(w, "failed to create matter", err)
		return
	}
	rec["_id"] = id
	writeJSON(w, http.StatusCreated, identifier.EncodeDocument(rec))
}

// MattersHandler lists matters, newest first
func (m Matter) MattersHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, "invalid paging", err)
		return
	}
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	docs, err := m.DB.Find(ctx, filter, page.FindOptions(matterSort))
	if err != nil {
		writeError(w, "failed to get matters", err)
		return
	}
	writeJSON(w, http.StatusOK, identifier.EncodeDocuments(docs))
}

// MatterByIDHandler returns a single matter
func (m Matter) MatterByIDHandler(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathRef(r, "matter_id")
	if err != nil {
		writeError(w, "invalid matter id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	doc, err := m.DB.FindOne(ctx, bson.M{"_id": matterID})
	if err != nil {
		writeError(w, "failed to get matter", err)
		return
	}
	writeJSON(w, http.StatusOK, identifier.EncodeDocument(doc))
}

// UpdateMatterHandler applies a partial update to a matter
func (m Matter) UpdateMatterHandler(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathRef(r, "matter_id")
	if err != nil {
		writeError(w, "invalid matter id", err)
		return
	}
	var payload models.MatterUpdate
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set, err := normalize.Normalize(payload, normalize.PartialUpdate)
	if err != nil {
		writeError(w, "invalid matter update", err)
		return
	}
	embedMatterRefs(set)
	set["updated_at"] = m.now()

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	m.setAndRespond(ctx, w, matterID, bson.M{"$set": set})
}

// DeleteMatterHandler removes a matter
func (m Matter) DeleteMatterHandler(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathRef(r, "matter_id")
	if err != nil {
		writeError(w, "invalid matter id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	n, err := m.DB.DeleteOne(ctx, bson.M{"_id": matterID})
	if err != nil {
		writeError(w, "failed to delete matter", err)
		return
	}
	if n == 0 {
		writeError(w, "matter not found", databases.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTimelineItemHandler appends an event to a matter's timeline and returns it
func (m Matter) AddTimelineItemHandler(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathRef(r, "matter_id")
	if err != nil {
		writeError(w, "invalid matter id", err)
		return
	}
	var payload models.TimelineItemCreate
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	item, err := normalize.Normalize(payload, normalize.Create)
	if err != nil {
		writeError(w, "invalid timeline item", err)
		return
	}
	ts := m.now()
	item["created_at"] = ts

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	n, err := m.DB.UpdateOne(ctx, bson.M{"_id": matterID}, bson.M{
		"$push": bson.M{"timeline": item},
		"$set":  bson.M{"updated_at": ts},
	})
	if err != nil {
		writeError(w, "failed to add timeline item", err)
		return
	}
	if n == 0 {
		writeError(w, "matter not found", databases.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, identifier.EncodeValue(item))
}

// ArchiveMatterHandler sets or clears the archived flag
func (m Matter) ArchiveMatterHandler(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathRef(r, "matter_id")
	if err != nil {
		writeError(w, "invalid matter id", err)
		return
	}
	archive := true
	if raw := r.URL.Query().Get("archive"); raw != "" {
		archive, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, "invalid archive flag", fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	m.setAndRespond(ctx, w, matterID, bson.M{"$set": bson.M{"is_archived": archive, "updated_at": m.now()}})
}

func (m Matter) setAndRespond(ctx context.Context, w http.ResponseWriter, matterID primitive.ObjectID, update bson.M) {
	n, err := m.DB.UpdateOne(ctx, bson.M{"_id": matterID}, update)
	if err != nil {
		writeError(w, "failed to update matter", err)
		return
	}
	if n == 0 {
		writeError(w, "matter not found", databases.ErrNotFound)
		return
	}
	doc, err := m.DB.FindOne(ctx, bson.M{"_id": matterID})
	if err != nil {
		writeError(w, "failed to get matter", err)
		return
	}
	writeJSON(w, http.StatusOK, identifier.EncodeDocument(doc))
}
