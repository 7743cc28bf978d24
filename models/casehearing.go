package models

// CaseHearingCreate schedules or records a hearing
type CaseHearingCreate struct {
	HearingDate      Date             `json:"hearing_date" bson:"hearing_date" validate:"required"`
	Stage            Optional[string] `json:"stage" bson:"stage"`
	Courtroom        Optional[string] `json:"courtroom" bson:"courtroom"`
	OrderSummary     Optional[string] `json:"order_summary" bson:"order_summary"`
	NextHearingDate  Optional[Date]   `json:"next_hearing_date" bson:"next_hearing_date"`
	Purpose          Optional[string] `json:"purpose" bson:"purpose"`
	OrderFile        Optional[string] `json:"order_file" bson:"order_file"`
	AssignedLawyerID Optional[RefID]  `json:"assigned_lawyer_id" bson:"assigned_lawyer_id"`
}

// CaseHearingUpdate is the partial update payload for a hearing
type CaseHearingUpdate struct {
	HearingDate      Optional[Date]   `json:"hearing_date" bson:"hearing_date"`
	Stage            Optional[string] `json:"stage" bson:"stage"`
	Courtroom        Optional[string] `json:"courtroom" bson:"courtroom"`
	OrderSummary     Optional[string] `json:"order_summary" bson:"order_summary"`
	NextHearingDate  Optional[Date]   `json:"next_hearing_date" bson:"next_hearing_date"`
	Purpose          Optional[string] `json:"purpose" bson:"purpose"`
	OrderFile        Optional[string] `json:"order_file" bson:"order_file"`
	AssignedLawyerID Optional[RefID]  `json:"assigned_lawyer_id" bson:"assigned_lawyer_id"`
}
