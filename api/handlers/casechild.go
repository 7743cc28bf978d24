package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/casedesk-api/aggregate"
	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/normalize"
)

// CaseChild serves the records of one kind owned by a case. C and U are the
// create and partial update payloads.
type CaseChild[C any, U any] struct {
	Composer *aggregate.Composer
	Kind     aggregate.Kind
	// ListQuery turns list query parameters into an extra filter and sort.
	// A nil sort keeps the kind's order.
	ListQuery func(r *http.Request) (bson.M, bson.D, error)
	// AfterCreate runs once the record is stored
	AfterCreate func(ctx context.Context, caseID primitive.ObjectID, payload C) error
}

// Register mounts the collection routes under /cases/{case_id}/<kind>
func (h CaseChild[C, U]) Register(r *mux.Router) {
	base := "/cases/{case_id}/" + h.Kind.Key
	r.HandleFunc(base, h.CreateHandler).Methods(http.MethodPost)
	r.HandleFunc(base, h.ListHandler).Methods(http.MethodGet)
	r.HandleFunc(base+"/{child_id}", h.UpdateHandler).Methods(http.MethodPatch)
	r.HandleFunc(base+"/{child_id}", h.DeleteHandler).Methods(http.MethodDelete)
}

// CreateHandler adds a record to an existing case
func (h CaseChild[C, U]) CreateHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}
	var payload C
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	rec, err := normalize.Normalize(payload, normalize.Create)
	if err != nil {
		writeError(w, "invalid "+h.Kind.Key+" record", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	doc, err := h.Composer.AddChild(ctx, h.Kind, caseID, rec)
	if err != nil {
		writeError(w, "failed to add "+h.Kind.Key+" record", err)
		return
	}
	if h.AfterCreate != nil {
		if err := h.AfterCreate(ctx, caseID, payload); err != nil {
			writeError(w, "failed to update case", err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ListHandler returns the case's records of this kind
func (h CaseChild[C, U]) ListHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}
	var filter bson.M
	var sort bson.D
	if h.ListQuery != nil {
		filter, sort, err = h.ListQuery(r)
		if err != nil {
			writeError(w, "invalid "+h.Kind.Key+" filter", err)
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	docs, err := h.Composer.ListChildren(ctx, h.Kind, caseID, filter, sort)
	if err != nil {
		writeError(w, "failed to get "+h.Kind.Key, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// UpdateHandler applies a partial update to one record of the case
func (h CaseChild[C, U]) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	refs, err := pathRefs(r, "case_id", "child_id")
	if err != nil {
		writeError(w, "invalid id", err)
		return
	}
	var payload U
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	set, err := normalize.Normalize(payload, normalize.PartialUpdate)
	if err != nil {
		writeError(w, "invalid "+h.Kind.Key+" update", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	doc, err := h.Composer.UpdateChild(ctx, h.Kind, refs[0], refs[1], set)
	if err != nil {
		writeError(w, "failed to update "+h.Kind.Key+" record", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteHandler removes one record of the case
func (h CaseChild[C, U]) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	refs, err := pathRefs(r, "case_id", "child_id")
	if err != nil {
		writeError(w, "invalid id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	if err := h.Composer.DeleteChild(ctx, h.Kind, refs[0], refs[1]); err != nil {
		writeError(w, "failed to delete "+h.Kind.Key+" record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
