// Package docs Casedesk API.
//
// Documentation of the Casedesk case management API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/casedesk-api/api/handlers"
	"github.com/linesmerrill/casedesk-api/models"
)

// swagger:route GET /health health healthEndpointID
// Reports whether the web service is alive.
// responses:
//   200: healthResponse

// true means it is alive
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/cases case createCase
// Creates a case.
// responses:
//   201: caseResponse
//   400: errorResponse

// swagger:parameters createCase
type createCaseParamsWrapper struct {
	// in:body
	Body models.CaseCreate
}

// swagger:route GET /api/v1/cases/{case_id} case caseDetail
// Gets a case with its parties, hearings, documents, notes and tasks.
// responses:
//   200: caseResponse
//   400: errorResponse
//   404: errorResponse

// A case. ids are 24 character lowercase hex strings.
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body map[string]interface{}
}

// swagger:parameters caseDetail documentSignature
type caseIDParamWrapper struct {
	// in:path
	// required: true
	CaseID string `json:"case_id"`
}

// swagger:route POST /api/v1/cases/{case_id}/documents/signature document documentSignature
// Signs a direct upload into the case's document folder.
// responses:
//   200: signatureResponse
//   404: errorResponse
//   503: errorResponse

// swagger:response signatureResponse
type signatureResponseWrapper struct {
	// in:body
	Body handlers.UploadSignature
}

// swagger:route GET /api/v1/maintenance/orphans maintenance orphans
// Lists child records whose case no longer exists.
// responses:
//   200: orphansResponse

// swagger:response orphansResponse
type orphansResponseWrapper struct {
	// in:body
	Body handlers.OrphansResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
