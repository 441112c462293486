package fhir_dto

type Patient struct {
	ID           string         `json:"id,omitempty"`
	ResourceType string         `json:"resourceType,omitempty"`
	Meta         *Meta          `json:"meta,omitempty"`
	Active       bool           `json:"active,omitempty"`
	Identifier   []Identifier   `json:"identifier,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
	BirthDate    string         `json:"birthDate,omitempty"`
	Extension    []Extension    `json:"extension,omitempty"`
}
