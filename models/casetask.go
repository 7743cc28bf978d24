package models

// CaseTaskCreate adds a to-do item to a case
type CaseTaskCreate struct {
	Title       string           `json:"title" bson:"title" validate:"required"`
	Description Optional[string] `json:"description" bson:"description"`
	AssignedTo  Optional[RefID]  `json:"assigned_to" bson:"assigned_to"`
	DueDate     Optional[Date]   `json:"due_date" bson:"due_date"`
	Status      Optional[string] `json:"status" bson:"status" default:"open"`
	Priority    Optional[string] `json:"priority" bson:"priority" default:"medium"`
}

// CaseTaskUpdate is the partial update payload for a task
type CaseTaskUpdate struct {
	Title       Optional[string] `json:"title" bson:"title"`
	Description Optional[string] `json:"description" bson:"description"`
	AssignedTo  Optional[RefID]  `json:"assigned_to" bson:"assigned_to"`
	DueDate     Optional[Date]   `json:"due_date" bson:"due_date"`
	Status      Optional[string] `json:"status" bson:"status"`
	Priority    Optional[string] `json:"priority" bson:"priority"`
}
