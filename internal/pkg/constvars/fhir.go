package constvars

const (
	ResourcePatient       = "Patient"
	ResourceGroup         = "Group"
	ResourceRelatedPerson = "RelatedPerson"
	ResourcePractitioner  = "Practitioner"
)

const (
	FhirTelecomSystemPhone = "phone"
	FhirTelecomUseHome     = "home"
	FhirSearchIdentifier   = "identifier"
	FhirSearchPatient      = "patient"
)
