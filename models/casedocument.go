package models

// CaseDocumentCreate attaches an uploaded file to a case
type CaseDocumentCreate struct {
	Category     DocumentCategory `json:"category" bson:"category" validate:"required"`
	DocumentName string           `json:"document_name" bson:"document_name" validate:"required"`
	FilePath     string           `json:"file_path" bson:"file_path" validate:"required"`
	Notes        Optional[string] `json:"notes" bson:"notes"`
	UploadedBy   RefID            `json:"uploaded_by" bson:"uploaded_by" validate:"required"`
}

// CaseDocumentUpdate is the partial update payload for a document
type CaseDocumentUpdate struct {
	Category     Optional[DocumentCategory] `json:"category" bson:"category"`
	DocumentName Optional[string]           `json:"document_name" bson:"document_name"`
	FilePath     Optional[string]           `json:"file_path" bson:"file_path"`
	Notes        Optional[string]           `json:"notes" bson:"notes"`
}
