package requests

type CommentFormError struct {
	Comment     string `json:"comment" validate:"required"`
	CommentedBy string `json:"commented_by" validate:"required"`
}

// ResolveFormError mirrors the operator's resolve form: one action plus the inputs the
// patch actions may need. Inputs an action does not use are ignored.
type ResolveFormError struct {
	Action            string `json:"action" validate:"required"`
	HouseholdID       string `json:"household_id"`
	BirthDate         string `json:"birth_date"`
	PatientIdentifier string `json:"patient_identifier"`
	ProviderID        string `json:"provider_id"`
}
