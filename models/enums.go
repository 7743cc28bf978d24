package models

// RefID is an externally supplied identifier for a referenced document.
// It is decoded into an ObjectID before it reaches storage.
type RefID string

// CourtType is the level of court a case is filed in
type CourtType string

// Court types
const (
	CourtTypeSC       CourtType = "SC"
	CourtTypeHC       CourtType = "HC"
	CourtTypeDistrict CourtType = "District"
)

// Valid reports whether c is a known court type
func (c CourtType) Valid() bool {
	switch c {
	case CourtTypeSC, CourtTypeHC, CourtTypeDistrict:
		return true
	}
	return false
}

// CaseStatus is the lifecycle status of a case
type CaseStatus string

// Case statuses
const (
	CaseStatusActive   CaseStatus = "Active"
	CaseStatusDisposed CaseStatus = "Disposed"
)

// Valid reports whether s is a known case status
func (s CaseStatus) Valid() bool {
	return s == CaseStatusActive || s == CaseStatusDisposed
}

// PartyType is the side a party is on
type PartyType string

// Party types
const (
	PartyTypePetitioner PartyType = "Petitioner"
	PartyTypeRespondent PartyType = "Respondent"
)

// Valid reports whether p is a known party type
func (p PartyType) Valid() bool {
	return p == PartyTypePetitioner || p == PartyTypeRespondent
}

// DocumentCategory classifies a case document
type DocumentCategory string

// Document categories
const (
	DocumentCategoryPetition    DocumentCategory = "Petition"
	DocumentCategoryJudgment    DocumentCategory = "Judgment"
	DocumentCategoryHearingNote DocumentCategory = "Hearing Note"
	DocumentCategoryEvidence    DocumentCategory = "Evidence"
	DocumentCategoryOther       DocumentCategory = "Other"
)

// Valid reports whether c is a known document category
func (c DocumentCategory) Valid() bool {
	switch c {
	case DocumentCategoryPetition, DocumentCategoryJudgment, DocumentCategoryHearingNote,
		DocumentCategoryEvidence, DocumentCategoryOther:
		return true
	}
	return false
}
