package models

// CasePartyCreate adds a petitioner or respondent to a case
type CasePartyCreate struct {
	PartyType PartyType        `json:"party_type" bson:"party_type" validate:"required"`
	Name      string           `json:"name" bson:"name" validate:"required"`
	Phone     Optional[string] `json:"phone" bson:"phone"`
	Address   Optional[string] `json:"address" bson:"address"`
}

// CasePartyUpdate is the partial update payload for a party
type CasePartyUpdate struct {
	PartyType Optional[PartyType] `json:"party_type" bson:"party_type"`
	Name      Optional[string]    `json:"name" bson:"name"`
	Phone     Optional[string]    `json:"phone" bson:"phone"`
	Address   Optional[string]    `json:"address" bson:"address"`
}
