package handlers

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/casedesk-api/models"
	"github.com/linesmerrill/casedesk-api/normalize"
)

var taskListSort = bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}}

// documentListQuery filters documents by category
func documentListQuery(r *http.Request) (bson.M, bson.D, error) {
	filter := bson.M{}
	if raw := r.URL.Query().Get("category"); raw != "" {
		if !models.DocumentCategory(raw).Valid() {
			return nil, nil, fmt.Errorf("%w: category %q", normalize.ErrInvalidValue, raw)
		}
		filter["category"] = raw
	}
	return filter, nil, nil
}

// taskListQuery filters tasks by status and assignee, soonest due first
func taskListQuery(r *http.Request) (bson.M, bson.D, error) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	oid, ok, err := queryRef(r, "assigned_to")
	if err != nil {
		return nil, nil, err
	}
	if ok {
		filter["assigned_to"] = oid
	}
	return filter, taskListSort, nil
}

// touchOnNextHearing refreshes the case when a hearing schedules the next one
func (c Case) touchOnNextHearing(ctx context.Context, caseID primitive.ObjectID, payload models.CaseHearingCreate) error {
	if payload.NextHearingDate.State() != models.Present {
		return nil
	}
	return c.Composer.TouchCase(ctx, caseID)
}
