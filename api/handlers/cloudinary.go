package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"

	"github.com/linesmerrill/casedesk-api/aggregate"
	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases"
)

var errUploadsDisabled = errors.New("cloudinary credentials are not configured")

// UploadSignature is what a client needs to upload a document file directly
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    string `json:"timestamp"`
	Folder       string `json:"folder"`
	UploadPreset string `json:"upload_preset,omitempty"`
	APIKey       string `json:"api_key"`
	CloudName    string `json:"cloud_name"`
}

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct {
	Config   config.Cloudinary
	Composer *aggregate.Composer
}

// DocumentSignatureHandler signs upload parameters for a case's document folder
func (c CloudinaryHandler) DocumentSignatureHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathRef(r, "case_id")
	if err != nil {
		writeError(w, "invalid case id", err)
		return
	}
	if !c.Config.Enabled() {
		config.ErrorStatus("document uploads are disabled", http.StatusServiceUnavailable, w, errUploadsDisabled)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r)
	defer cancel()

	exists, err := c.Composer.CaseExists(ctx, caseID)
	if err != nil {
		writeError(w, "failed to get case", err)
		return
	}
	if !exists {
		writeError(w, "case not found", databases.ErrNotFound)
		return
	}

	sig := UploadSignature{
		Timestamp:    strconv.FormatInt(time.Now().Unix(), 10),
		Folder:       "cases/" + caseID.Hex(),
		UploadPreset: c.Config.UploadPreset,
		APIKey:       c.Config.APIKey,
		CloudName:    c.Config.CloudName,
	}
	params := url.Values{}
	params.Set("timestamp", sig.Timestamp)
	params.Set("folder", sig.Folder)
	if sig.UploadPreset != "" {
		params.Set("upload_preset", sig.UploadPreset)
	}
	sig.Signature, err = cldapi.SignParameters(params, c.Config.APISecret)
	if err != nil {
		writeError(w, "failed to sign upload", err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}
