package exceptions

import (
	"fmt"
	"mobileforms-service/internal/pkg/constvars"
)

// Document store
var (
	ErrDocumentMalformed = func(err error) *CustomError {
		return BuildNewKindError(ErrMalformedDocument, err, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, constvars.ErrDevMalformedDocument)
	}
	ErrDocumentAmbiguousField = func(path string, matches int) *CustomError {
		return BuildNewKindError(ErrMalformedDocument, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevAmbiguousField, path, matches))
	}
	ErrDocumentFieldNotFound = func(path string) *CustomError {
		return BuildNewKindError(ErrFieldNotFound, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevFieldNotFound, path))
	}
	ErrDocumentUnknownField = func(field int) *CustomError {
		return BuildNewKindError(ErrFieldNotFound, nil, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevUnknownField, field))
	}
)

// Queue areas
var (
	ErrQueueStorage = func(err error, operation, name string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevStorageFailure, operation, name))
	}
	ErrQueueIllegalTransition = func(from, to, name string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, nil, constvars.StatusConflict, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevIllegalTransition, from, to, name))
	}
	ErrQueueAreaMissing = func(err error, area, location string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevAreaMissing, area, location))
	}
	ErrQueueDocumentInSeveralAreas = func(name string, areas []string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, nil, constvars.StatusConflict, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevDocumentInSeveralAreas, name, areas))
	}
)

// Identity collaborator
var (
	ErrIdentityCollaborator = func(err error, call string) *CustomError {
		return BuildNewKindError(ErrCollaboratorFailure, err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevCollaboratorFailure, call))
	}
	ErrFhirStatus = func(err error, statusCode int, url string) *CustomError {
		return BuildNewKindError(ErrCollaboratorFailure, err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevFhirStatus, statusCode, url))
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return BuildNewKindError(ErrCollaboratorFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCreateHTTPRequest)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return BuildNewKindError(ErrCollaboratorFailure, err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSendHTTPRequest)
	}
	ErrDecodeResponse = func(err error, resource string) *CustomError {
		return BuildNewKindError(ErrCollaboratorFailure, err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevDecodeResponse, resource))
	}
)

// Error resolution workflow
var (
	ErrFormErrorInvalidAction = func(action, formErrorID string) *CustomError {
		return BuildNewKindError(ErrInvalidAction, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidAction, fmt.Sprintf(constvars.ErrDevInvalidAction, formErrorID)+" ("+action+")")
	}
	ErrFormErrorNotFound = func(formErrorID string) *CustomError {
		return BuildNewKindError(ErrNotFound, nil, constvars.StatusNotFound, constvars.ErrClientFormErrorNotFound, fmt.Sprintf(constvars.ErrDevFormErrorNotFound, formErrorID))
	}
	ErrFormErrorVersionConflict = func(formErrorID string) *CustomError {
		return BuildNewKindError(ErrConflict, nil, constvars.StatusConflict, constvars.ErrClientFormErrorBusy, fmt.Sprintf(constvars.ErrDevFormErrorVersionConflict, formErrorID))
	}
	ErrFormErrorLocked = func(formErrorID string) *CustomError {
		return BuildNewKindError(ErrConflict, nil, constvars.StatusConflict, constvars.ErrClientFormErrorBusy, fmt.Sprintf(constvars.ErrDevFormErrorLocked, formErrorID))
	}
	ErrActionPrecondition = func(err error, clientMessage, devMessage string) *CustomError {
		return BuildNewKindError(ErrPrecondition, err, constvars.StatusUnprocessableEntity, clientMessage, devMessage)
	}
	// ErrActionFailed keeps the kind of err and replaces the client message with the action's key.
	ErrActionFailed = func(err error, clientMessage, action string) *CustomError {
		return BuildNewCustomError(err, statusCodeOf(err), clientMessage, "resolve action "+action+" failed")
	}
	ErrBlankComment = func() *CustomError {
		return BuildNewKindError(ErrPrecondition, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidComment, constvars.ErrDevBlankComment)
	}
)

// Infrastructure
var (
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID)
	}
	ErrInvalidAPIKey = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevInvalidAPIKey)
	}
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBFindDocument)
	}
	ErrMongoDBUpdateDocument = func(err error) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBUpdateDocument)
	}
	ErrMongoDBDeleteDocument = func(err error) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBDeleteDocument)
	}
	ErrMongoDBIterateDocuments = func(err error) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBIterateDocuments)
	}
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSet)
	}
	ErrRedisGet = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGet, key))
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDelete)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}
	ErrRedisExpire = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisExpire, key))
	}
	ErrIngestionPublish = func(err error, queueName string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevIngestionPublish, queueName))
	}
	ErrIngestionNack = func(formName string) *CustomError {
		return BuildNewKindError(ErrStorageFailure, nil, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevIngestionNack, formName))
	}
)

func statusCodeOf(err error) int {
	if customErr, ok := AsCustomError(err); ok {
		return customErr.StatusCode
	}
	return constvars.StatusInternalServerError
}
