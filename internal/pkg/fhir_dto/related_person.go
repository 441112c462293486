package fhir_dto

type RelatedPerson struct {
	ID           string            `json:"id,omitempty"`
	ResourceType string            `json:"resourceType,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Active       bool              `json:"active,omitempty"`
	Patient      Reference         `json:"patient"`
	Relationship []CodeableConcept `json:"relationship,omitempty"`
}
