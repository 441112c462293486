package constvars

const (
	ResponseUnknown = "unknown"
)

// Success messages
const (
	GetFormErrorsSuccessMessage    = "get form errors successfully"
	GetFormErrorSuccessMessage     = "get form error successfully"
	CommentFormErrorSuccessMessage = "comment saved successfully"
	ResolveFormErrorSuccessMessage = "mobileforms.resolveErrors.action.success"
	PostProcessPassStartedMessage  = "post process pass completed"
	PostProcessPassBusyMessage     = "post process pass already running"
)

// Error messages for clients. The resolve keys are message keys rendered by the operator UI.
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientFormErrorNotFound             = "mobileforms.resolveErrors.notFound"
	ErrClientFormErrorBusy                 = "mobileforms.resolveErrors.inProgress"
	ErrClientInvalidComment                = "Invalid Comment"
	ErrClientInvalidAction                 = "mobileforms.resolveErrors.action.invalid"
	ErrClientLinkHouseholdFailed           = "mobileforms.resolveErrors.action.createLink.error"
	ErrClientAssignBirthdateFailed         = "mobileforms.resolveErrors.action.assignBirthdate.error"
	ErrClientNewIdentifierFailed           = "mobileforms.resolveErrors.action.newIdentifier.error"
	ErrClientLinkProviderFailed            = "mobileforms.resolveErrors.action.linkProvider.error"
	ErrClientCreatePatientFailed           = "mobileforms.resolveErrors.action.createPatient.error"
	ErrClientDeleteErrorFailed             = "mobileforms.resolveErrors.action.deleteError.error"
	ErrClientDeleteCommentFailed           = "mobileforms.resolveErrors.action.deleteComment.error"
)

// Error messages for developers
const (
	ErrDevMalformedDocument        = "document is not well-formed XML"
	ErrDevAmbiguousField           = "field locator %s matched %d nodes"
	ErrDevFieldNotFound            = "field locator %s matched no node"
	ErrDevUnknownField             = "unknown field locator %d"
	ErrDevStorageFailure           = "queue storage operation %s failed for %s"
	ErrDevIllegalTransition        = "illegal queue transition %s -> %s for %s"
	ErrDevAreaMissing              = "queue area %s is not available at %s"
	ErrDevDocumentInSeveralAreas   = "document %s found in several areas: %v"
	ErrDevCollaboratorFailure      = "identity collaborator call %s failed"
	ErrDevInvalidAction            = "invalid action selected for: %s"
	ErrDevFormErrorNotFound        = "form error %s not found"
	ErrDevFormErrorVersionConflict = "form error %s was modified concurrently"
	ErrDevFormErrorLocked          = "form error %s is being resolved by another request"
	ErrDevHouseholdNotFound        = "household %s not found"
	ErrDevProviderNotFound         = "provider %s not found"
	ErrDevProviderWithoutCode      = "provider %s has no identifier code"
	ErrDevDocumentNotInErrorArea   = "document %s is in %s, not in error"
	ErrDevBlankValue               = "%s must not be blank"
	ErrDevCannotParseDate          = "cannot parse date %q with layout %s"
	ErrDevBlankComment             = "comment must not be blank"
	ErrDevValidationFailed         = "validation failed"
	ErrDevCannotParseJSON          = "cannot parse JSON"
	ErrDevCannotMarshalJSON        = "cannot marshal JSON"
	ErrDevCreateHTTPRequest        = "failed to create HTTP request"
	ErrDevSendHTTPRequest          = "failed to send HTTP request"
	ErrDevDecodeResponse           = "failed to decode %s response"
	ErrDevFhirStatus               = "unexpected FHIR status %d on %s"
	ErrDevMongoDBFindDocument      = "failed when do find document on database"
	ErrDevMongoDBUpdateDocument    = "failed to update document into database"
	ErrDevMongoDBDeleteDocument    = "failed to delete document from database"
	ErrDevMongoDBIterateDocuments  = "failed to iterate documents from database"
	ErrDevRedisSet                 = "failed to set redis key"
	ErrDevRedisGet                 = "failed to get redis key %s"
	ErrDevRedisDelete              = "failed to delete redis key"
	ErrDevRedisUnlock              = "failed to release redis lock"
	ErrDevRedisExpire              = "failed to extend redis key %s"
	ErrDevIngestionPublish         = "failed to publish form to ingestion queue %s"
	ErrDevIngestionNack            = "ingestion broker did not confirm form %s"
	ErrDevInvalidAPIKey            = "invalid operator api key"
	ErrDevMissingRequestID         = "request id missing from context"
	ErrDevServerDeadlineExceeded   = "deadline exceeded"
)
