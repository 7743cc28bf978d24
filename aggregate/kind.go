package aggregate

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/casedesk-api/databases"
)

// Kind describes one collection of records owned by a case
type Kind struct {
	// Key names the sequence in the detail view and the URL segment
	Key        string
	Collection string
	// Sort is the order used in the detail view
	Sort bson.D
	// CreatedField is stamped with the server time on insert
	CreatedField string
}

var (
	// Parties keep insertion order, which _id preserves
	Parties = Kind{
		Key:          "parties",
		Collection:   databases.CasePartyName,
		Sort:         bson.D{{Key: "_id", Value: 1}},
		CreatedField: "created_at",
	}
	Hearings = Kind{
		Key:          "hearings",
		Collection:   databases.CaseHearingName,
		Sort:         bson.D{{Key: "hearing_date", Value: -1}, {Key: "_id", Value: -1}},
		CreatedField: "created_at",
	}
	Documents = Kind{
		Key:          "documents",
		Collection:   databases.CaseDocumentName,
		Sort:         bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}},
		CreatedField: "uploaded_at",
	}
	Notes = Kind{
		Key:          "notes",
		Collection:   databases.CaseNoteName,
		Sort:         bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		CreatedField: "created_at",
	}
	Tasks = Kind{
		Key:          "tasks",
		Collection:   databases.CaseTaskName,
		Sort:         bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		CreatedField: "created_at",
	}
)

// Kinds lists every child kind in cascade order
var Kinds = []Kind{Parties, Hearings, Documents, Notes, Tasks}
