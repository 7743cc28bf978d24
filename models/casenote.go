package models

// CaseNoteCreate adds a free text note to a case
type CaseNoteCreate struct {
	Content   string `json:"content" bson:"content" validate:"required"`
	CreatedBy RefID  `json:"created_by" bson:"created_by" validate:"required"`
}

// CaseNoteUpdate is the partial update payload for a note
type CaseNoteUpdate struct {
	Content Optional[string] `json:"content" bson:"content"`
}
