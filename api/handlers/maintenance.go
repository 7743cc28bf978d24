package handlers

import (
	"net/http"

	"github.com/linesmerrill/casedesk-api/aggregate"
	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/logging"
)

// OrphansResponse lists child records left behind by deleted cases
type OrphansResponse struct {
	Orphans []aggregate.OrphanReport `json:"orphans"`
}

// Maintenance exposes the record integrity tooling
type Maintenance struct {
	Composer *aggregate.Composer
}

// OrphansHandler reports orphaned child records without removing them
func (m Maintenance) OrphansHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	reports, err := m.Composer.FindOrphans(ctx)
	if err != nil {
		writeError(w, "failed to find orphaned records", err)
		return
	}
	writeJSON(w, http.StatusOK, OrphansResponse{Orphans: reports})
}

// SweepOrphansHandler removes orphaned child records
func (m Maintenance) SweepOrphansHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	reports, err := m.Composer.SweepOrphans(ctx)
	if err != nil {
		writeError(w, "failed to sweep orphaned records", err)
		return
	}
	logging.FromContext(r.Context()).Infow("orphan sweep requested", "collections", len(reports))
	writeJSON(w, http.StatusOK, OrphansResponse{Orphans: reports})
}
