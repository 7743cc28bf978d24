package handlers

import (
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/casedesk-api/aggregate"
	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/identifier"
	"github.com/linesmerrill/casedesk-api/models"
	"github.com/linesmerrill/casedesk-api/normalize"
)

var caseSort = bson.D{{Key: "filing_date", Value: -1}, {Key: "_id", Value: -1}}

// Case exported for testing purposes
type Case struct {
	Composer *aggregate.Composer
}

// CreateCaseHandler creates a case
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.CaseCreate
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	rec, err := normalize.Normalize(payload, normalize.Create)
	if err != nil {
		writeError(w, "invalid case", err)
		return
	}
	ts := c.Composer.Now()
	rec["created_at"] = ts
	rec["updated_at"] = ts

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	id, err := c.Composer.Cases().InsertOne(ctx, rec)
	if err != nil {
		writeError(w, "failed to create case", err)
		return
	}
	rec["_id"] = id
	writeJSON(w, http.StatusCreated, identifier.EncodeDocument(rec))
}

// caseFilter builds the list filter, decoding reference filters strictly
func caseFilter(r *http.Request) (bson.M, error) {
	q := r.URL.Query()
	filter := bson.M{}
	if raw := q.Get("status"); raw != "" {
		if !models.CaseStatus(raw).Valid() {
			return nil, fmt.Errorf("%w: status %q", normalize.ErrInvalidValue, raw)
		}
		filter["status"] = raw
	}
	if raw := q.Get("court_type"); raw != "" {
		if !models.CourtType(raw).Valid() {
			return nil, fmt.Errorf("%w: court_type %q", normalize.ErrInvalidValue, raw)
		}
		filter["court_type"] = raw
	}
	for _, name := range []string{"assigned_lawyer_id", "client_id"} {
		oid, ok, err := queryRef(r, name)
		if err != nil {
			return nil, err
		}
		if ok {
			filter[name] = oid
		}
	}
	return filter, nil
}

// CasesHandler lists cases, most recently filed first
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := caseFilter(r)
	if err != nil {
		writeError(w, "invalid case filter", err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, "invalid paging", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	docs, err := c.Composer.Cases().Find(ctx, filter, page.FindOptions(caseSort))
	if err != nil {
		writeError(w, "failed to get cases", err)
		return
	}
	writeJSON(w, http.StatusOK, identifier.EncodeDocuments(docs))
}

// CaseDetailHandler returns the case with all of its child records
func (c Case) CaseDetailHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	detail, err := c.Composer.ComposeDetail(ctx, caseID)
	if err != nil {
		writeError(w, "failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateCaseHandler applies a partial update to a case
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}
	var payload models.CaseUpdate
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set, err := normalize.Normalize(payload, normalize.PartialUpdate)
	if err != nil {
		writeError(w, "invalid case update", err)
		return
	}
	set["updated_at"] = c.Composer.Now()

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	n, err := c.Composer.Cases().UpdateOne(ctx, bson.M{"_id": caseID}, bson.M{"$set": set})
	if err != nil {
		writeError(w, "failed to update case", err)
		return
	}
	if n == 0 {
		writeError(w, "case not found", databases.ErrNotFound)
		return
	}
	doc, err := c.Composer.Cases().FindOne(ctx, bson.M{"_id": caseID})
	if err != nil {
		writeError(w, "failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, identifier.EncodeDocument(doc))
}

// DeleteCaseHandler removes a case together with all of its child records
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	if _, err := c.Composer.CascadeDelete(ctx, caseID); err != nil {
		writeError(w, "failed to delete case", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
