package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/identifier"
	"github.com/linesmerrill/casedesk-api/normalize"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// errBadRequest marks malformed bodies and query parameters
var errBadRequest = errors.New("bad request")

// statusFor maps an error onto the HTTP status reported to the client
func statusFor(err error) int {
	switch {
	case errors.Is(err, identifier.ErrInvalidIdentifier),
		errors.Is(err, normalize.ErrValidation),
		errors.Is(err, normalize.ErrInvalidValue),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, databases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, databases.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, message string, err error) {
	config.ErrorStatus(message, statusFor(err), w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// pathRefs decodes the named path variables, failing on the first bad one
func pathRefs(r *http.Request, names ...string) ([]primitive.ObjectID, error) {
	vars := mux.Vars(r)
	raws := make([]string, len(names))
	for i, name := range names {
		raws[i] = vars[name]
	}
	return identifier.DecodeAll(raws...)
}

func pathRef(r *http.Request, name string) (primitive.ObjectID, error) {
	refs, err := pathRefs(r, name)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return refs[0], nil
}

// parsePage reads skip and limit, defaulting limit to 20 and capping it at 100
func parsePage(r *http.Request) (databases.Page, error) {
	page := databases.Page{Limit: defaultLimit}
	q := r.URL.Query()
	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || skip < 0 {
			return page, fmt.Errorf("%w: skip must be a non-negative integer", errBadRequest)
		}
		page.Skip = skip
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 || limit > maxLimit {
			return page, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, maxLimit)
		}
		page.Limit = limit
	}
	return page, nil
}

// queryRef decodes an optional reference filter from the query string
func queryRef(r *http.Request, name string) (primitive.ObjectID, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return primitive.NilObjectID, false, nil
	}
	oid, err := identifier.Decode(raw)
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("%s: %w", name, err)
	}
	return oid, true, nil
}
