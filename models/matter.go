package models

// MatterCreate is the payload for creating a matter. The client and
// assigned user references are stored embedded as client.client_id and
// assigned_to.user_id.
type MatterCreate struct {
	Title        string                           `json:"title" bson:"title" validate:"required"`
	Description  Optional[string]                 `json:"description" bson:"description"`
	Status       Optional[string]                 `json:"status" bson:"status" default:"open"`
	ClientID     Optional[RefID]                  `json:"client_id" bson:"client_id"`
	AssignedToID Optional[RefID]                  `json:"assigned_to_id" bson:"assigned_to_id"`
	Court        Optional[map[string]interface{}] `json:"court" bson:"court"`
	Tags         Optional[[]string]               `json:"tags" bson:"tags" default:"[]"`
}

// MatterUpdate is the partial update payload for a matter
type MatterUpdate struct {
	Title        Optional[string]                 `json:"title" bson:"title"`
	Description  Optional[string]                 `json:"description" bson:"description"`
	Status       Optional[string]                 `json:"status" bson:"status"`
	ClientID     Optional[RefID]                  `json:"client_id" bson:"client_id"`
	AssignedToID Optional[RefID]                  `json:"assigned_to_id" bson:"assigned_to_id"`
	Court        Optional[map[string]interface{}] `json:"court" bson:"court"`
	Tags         Optional[[]string]               `json:"tags" bson:"tags"`
	IsArchived   Optional[bool]                   `json:"is_archived" bson:"is_archived"`
}

// TimelineItemCreate is an event appended to a matter's timeline
type TimelineItemCreate struct {
	EventType string          `json:"event_type" bson:"event_type" validate:"required"`
	Text      string          `json:"text" bson:"text" validate:"required"`
	CreatedBy Optional[RefID] `json:"created_by" bson:"created_by"`
}
