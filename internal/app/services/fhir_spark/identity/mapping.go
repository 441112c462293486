package identity

import (
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/fhir_dto"
	"strings"
)

func patientReference(patientID string) string {
	return constvars.ResourcePatient + "/" + patientID
}

// personFromPatient maps a Patient onto a Person. The identifier in the patient system is
// the primary identifier; every other identifier is secondary.
func personFromPatient(patient *fhir_dto.Patient, patientSystem string) *models.Person {
	person := &models.Person{
		ID:        patient.ID,
		BirthDate: patient.BirthDate,
	}
	for _, identifier := range patient.Identifier {
		if identifier.System == patientSystem && person.Identifier == "" {
			person.Identifier = identifier.Value
			continue
		}
		secondary := models.PersonIdentifier{Value: identifier.Value}
		if identifier.Type != nil {
			secondary.TypeRef = identifier.Type.Text
		}
		if identifier.Assigner != nil {
			secondary.LocationRef = identifier.Assigner.Reference
		}
		person.Identifiers = append(person.Identifiers, secondary)
	}
	for _, extension := range patient.Extension {
		person.Attributes = append(person.Attributes, models.PersonAttribute{
			TypeRef: extension.Url,
			Value:   extension.ValueString,
		})
	}
	return person
}

// mergePersonIntoPatient adds the person's identifiers and attributes to patient without
// dropping anything the server already holds.
func mergePersonIntoPatient(patient *fhir_dto.Patient, person *models.Person) {
	patient.ResourceType = constvars.ResourcePatient
	for _, identifier := range person.Identifiers {
		if patientHasIdentifier(patient, identifier) {
			continue
		}
		fhirIdentifier := fhir_dto.Identifier{
			Use:   "secondary",
			Value: identifier.Value,
			Type:  &fhir_dto.CodeableConcept{Text: identifier.TypeRef},
		}
		if identifier.LocationRef != "" {
			fhirIdentifier.Assigner = &fhir_dto.Reference{Reference: identifier.LocationRef}
		}
		patient.Identifier = append(patient.Identifier, fhirIdentifier)
	}
	for _, attribute := range person.Attributes {
		if patientHasExtension(patient, attribute) {
			continue
		}
		patient.Extension = append(patient.Extension, fhir_dto.Extension{
			Url:         attribute.TypeRef,
			ValueString: attribute.Value,
		})
		if strings.Contains(strings.ToLower(attribute.TypeRef), constvars.FhirTelecomSystemPhone) && !patientHasPhone(patient, attribute.Value) {
			patient.Telecom = append(patient.Telecom, fhir_dto.ContactPoint{
				System: constvars.FhirTelecomSystemPhone,
				Value:  attribute.Value,
				Use:    constvars.FhirTelecomUseHome,
			})
		}
	}
	if person.BirthDate != "" {
		patient.BirthDate = person.BirthDate
	}
}

func patientHasIdentifier(patient *fhir_dto.Patient, identifier models.PersonIdentifier) bool {
	for _, existing := range patient.Identifier {
		if existing.Value != identifier.Value {
			continue
		}
		if existing.Type != nil && existing.Type.Text == identifier.TypeRef {
			return true
		}
	}
	return false
}

func patientHasExtension(patient *fhir_dto.Patient, attribute models.PersonAttribute) bool {
	for _, existing := range patient.Extension {
		if existing.Url == attribute.TypeRef && existing.ValueString == attribute.Value {
			return true
		}
	}
	return false
}

func patientHasPhone(patient *fhir_dto.Patient, value string) bool {
	for _, telecom := range patient.Telecom {
		if telecom.System == constvars.FhirTelecomSystemPhone && telecom.Value == value {
			return true
		}
	}
	return false
}

func householdFromGroup(group *fhir_dto.Group, householdSystem string) *models.Household {
	household := &models.Household{ID: group.ID}
	for _, identifier := range group.Identifier {
		if identifier.System == householdSystem || household.Identifier == "" {
			household.Identifier = identifier.Value
		}
	}
	if group.ManagingEntity != nil {
		household.HeadRef = group.ManagingEntity.Reference
	}
	for _, member := range group.Member {
		if !member.Inactive {
			household.MemberRefs = append(household.MemberRefs, member.Entity.Reference)
		}
	}
	return household
}

// providerFromPractitioner uses the first identifier value as the provider's stable code.
func providerFromPractitioner(practitioner *fhir_dto.Practitioner) *models.Provider {
	provider := &models.Provider{ID: practitioner.ID}
	for _, identifier := range practitioner.Identifier {
		if identifier.Value != "" {
			provider.Code = identifier.Value
			break
		}
	}
	return provider
}
