package models

// CaseCreate is the payload for creating a case
type CaseCreate struct {
	Title            string               `json:"title" bson:"title" validate:"required"`
	CaseNumber       string               `json:"case_number" bson:"case_number" validate:"required"`
	CourtType        CourtType            `json:"court_type" bson:"court_type" validate:"required"`
	CourtID          RefID                `json:"court_id" bson:"court_id" validate:"required"`
	JudgeName        Optional[string]     `json:"judge_name" bson:"judge_name"`
	FilingDate       Date                 `json:"filing_date" bson:"filing_date" validate:"required"`
	CategoryID       RefID                `json:"category_id" bson:"category_id" validate:"required"`
	SubcategoryID    Optional[RefID]      `json:"subcategory_id" bson:"subcategory_id"`
	ClientID         RefID                `json:"client_id" bson:"client_id" validate:"required"`
	AssignedLawyerID RefID                `json:"assigned_lawyer_id" bson:"assigned_lawyer_id" validate:"required"`
	Status           Optional[CaseStatus] `json:"status" bson:"status" default:"Active"`
	CreatedBy        RefID                `json:"created_by" bson:"created_by" validate:"required"`
}

// CaseUpdate is the partial update payload for a case
type CaseUpdate struct {
	Title            Optional[string]     `json:"title" bson:"title"`
	CaseNumber       Optional[string]     `json:"case_number" bson:"case_number"`
	CourtType        Optional[CourtType]  `json:"court_type" bson:"court_type"`
	CourtID          Optional[RefID]      `json:"court_id" bson:"court_id"`
	JudgeName        Optional[string]     `json:"judge_name" bson:"judge_name"`
	FilingDate       Optional[Date]       `json:"filing_date" bson:"filing_date"`
	CategoryID       Optional[RefID]      `json:"category_id" bson:"category_id"`
	SubcategoryID    Optional[RefID]      `json:"subcategory_id" bson:"subcategory_id"`
	ClientID         Optional[RefID]      `json:"client_id" bson:"client_id"`
	AssignedLawyerID Optional[RefID]      `json:"assigned_lawyer_id" bson:"assigned_lawyer_id"`
	Status           Optional[CaseStatus] `json:"status" bson:"status"`
}
