package fhir_dto

// Group models a household: its identifier is the household identifier and the
// managing entity is the head of household.
type Group struct {
	ID             string        `json:"id,omitempty"`
	ResourceType   string        `json:"resourceType,omitempty"`
	Identifier     []Identifier  `json:"identifier,omitempty"`
	Type           string        `json:"type,omitempty"`
	Actual         bool          `json:"actual"`
	Name           string        `json:"name,omitempty"`
	ManagingEntity *Reference    `json:"managingEntity,omitempty"`
	Member         []GroupMember `json:"member,omitempty"`
}

type GroupMember struct {
	Entity   Reference `json:"entity"`
	Inactive bool      `json:"inactive,omitempty"`
}
