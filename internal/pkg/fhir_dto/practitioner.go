package fhir_dto

type Practitioner struct {
	ID           string       `json:"id,omitempty"`
	ResourceType string       `json:"resourceType,omitempty"`
	Active       bool         `json:"active,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
}
