package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/api/handlers"
	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases/memory"
)

func newTestRouter(t *testing.T, conf *config.Config) (*mux.Router, *memory.Database) {
	t.Helper()
	if conf == nil {
		conf = &config.Config{SweepSchedule: config.DefaultSweepSchedule}
	}
	db := memory.New()
	return handlers.NewRouter(db, conf, api.NewMetrics()), db
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func hex() string {
	return primitive.NewObjectID().Hex()
}

func casePayload(filingDate string) string {
	return `{
		"title": "State v Doe",
		"case_number": "WP 42/2024",
		"court_type": "HC",
		"court_id": "` + hex() + `",
		"filing_date": "` + filingDate + `",
		"category_id": "` + hex() + `",
		"client_id": "` + hex() + `",
		"assigned_lawyer_id": "` + hex() + `",
		"created_by": "` + hex() + `"
	}`
}

// createCase stores a case through the API and returns its id
func createCase(t *testing.T, r http.Handler, filingDate string) string {
	t.Helper()
	rr := do(t, r, http.MethodPost, "/api/v1/cases", casePayload(filingDate))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeObject(t, rr)["id"].(string)
}
