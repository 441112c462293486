package document

import (
	"fmt"

	"github.com/beevik/etree"
)

// FieldLocator names one value inside a form document. The paths behind the locators are a
// contract shared with the ingestion pipeline; changing one is a breaking schema change.
type FieldLocator int

const (
	FieldPatientIdentifier FieldLocator = iota
	FieldSecondaryIdentifier
	FieldHouseholdIdentifier
	FieldPhone
	FieldRelationshipToHead
	FieldBirthdate
	FieldProvider
	FieldEncounterProvider
)

const (
	PatientNode   = "/form/patient"
	ObsNode       = "/form/obs"
	EncounterNode = "/form/encounter"
)

var fieldCatalog = map[FieldLocator]struct {
	name string
	path string
}{
	FieldPatientIdentifier:   {"patient_identifier", PatientNode + "/patient.medical_record_number"},
	FieldSecondaryIdentifier: {"secondary_identifier", PatientNode + "/patient.secondary_identifier"},
	FieldHouseholdIdentifier: {"household_identifier", PatientNode + "/patient.household_identifier"},
	FieldPhone:               {"phone", PatientNode + "/patient.phone_number"},
	FieldBirthdate:           {"birthdate", PatientNode + "/patient.birthdate"},
	FieldProvider:            {"provider", PatientNode + "/patient.provider_id"},
	FieldRelationshipToHead:  {"relationship_to_head", ObsNode + "/obs.relationship_to_head"},
	FieldEncounterProvider:   {"encounter_provider", EncounterNode + "/encounter.provider_id"},
}

var compiledFields = compileFields()

func compileFields() map[FieldLocator]etree.Path {
	compiled := make(map[FieldLocator]etree.Path, len(fieldCatalog))
	for field, entry := range fieldCatalog {
		path, err := etree.CompilePath(entry.path)
		if err != nil {
			panic(fmt.Sprintf("document: invalid path %q for %s: %v", entry.path, entry.name, err))
		}
		compiled[field] = path
	}
	return compiled
}

// Fields lists every locator in the catalog.
func Fields() []FieldLocator {
	return []FieldLocator{
		FieldPatientIdentifier,
		FieldSecondaryIdentifier,
		FieldHouseholdIdentifier,
		FieldPhone,
		FieldRelationshipToHead,
		FieldBirthdate,
		FieldProvider,
		FieldEncounterProvider,
	}
}

func (f FieldLocator) Path() string {
	return fieldCatalog[f].path
}

func (f FieldLocator) String() string {
	entry, ok := fieldCatalog[f]
	if !ok {
		return fmt.Sprintf("FieldLocator(%d)", int(f))
	}
	return entry.name
}

func (f FieldLocator) compiled() (etree.Path, bool) {
	path, ok := compiledFields[f]
	return path, ok
}

// ParseFieldLocator returns the locator whose name is name.
func ParseFieldLocator(name string) (FieldLocator, bool) {
	for field, entry := range fieldCatalog {
		if entry.name == name {
			return field, true
		}
	}
	return 0, false
}
