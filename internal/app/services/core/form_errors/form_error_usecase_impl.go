package formErrors

import (
	"context"
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/app/services/shared/document"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/dto/requests"
	"mobileforms-service/internal/pkg/dto/responses"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"strings"
	"time"

	"go.uber.org/zap"
)

type formErrorUsecase struct {
	FormErrorRepository contracts.FormErrorRepository
	Queue               contracts.QueueAreas
	Registry            contracts.RegistryService
	Ingestion           contracts.IngestionSubmitter
	Locker              contracts.LockerService
	Config              config.ErrorResolution
	Log                 *zap.Logger
	now                 func() time.Time
}

func NewFormErrorUsecase(
	formErrorRepository contracts.FormErrorRepository,
	queue contracts.QueueAreas,
	registry contracts.RegistryService,
	ingestion contracts.IngestionSubmitter,
	locker contracts.LockerService,
	errorResolutionCfg config.ErrorResolution,
	logger *zap.Logger,
) contracts.FormErrorUsecase {
	return &formErrorUsecase{
		FormErrorRepository: formErrorRepository,
		Queue:               queue,
		Registry:            registry,
		Ingestion:           ingestion,
		Locker:              locker,
		Config:              errorResolutionCfg,
		Log:                 logger,
		now:                 time.Now,
	}
}

func (uc *formErrorUsecase) FindAll(ctx context.Context) ([]responses.FormError, error) {
	requestID := utils.RequestIDFrom(ctx)
	uc.Log.Info("formErrorUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	formErrors, err := uc.FormErrorRepository.FindAll(ctx)
	if err != nil {
		uc.Log.Error("formErrorUsecase.FindAll error fetching form errors",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	response := make([]responses.FormError, 0, len(formErrors))
	for _, formError := range formErrors {
		response = append(response, formError.ConvertIntoResponse())
	}

	uc.Log.Info("formErrorUsecase.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingFormErrorCountKey, len(response)),
	)
	return response, nil
}

// FindByID returns the record together with the document it refers to.
func (uc *formErrorUsecase) FindByID(ctx context.Context, formErrorID string) (*responses.FormErrorDetail, error) {
	requestID := utils.RequestIDFrom(ctx)
	uc.Log.Info("formErrorUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
	)

	formError, err := uc.findFormError(ctx, formErrorID)
	if err != nil {
		return nil, err
	}

	formData, err := uc.Queue.Read(ctx, models.QueueAreaError, formError.FormName)
	if err != nil {
		uc.Log.Error("formErrorUsecase.FindByID error reading document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, formError.FormName),
			zap.Error(err),
		)
		return nil, err
	}

	return &responses.FormErrorDetail{
		FormError: formError.ConvertIntoResponse(),
		FormPath:  uc.Queue.Resolve(models.QueueAreaError, formError.FormName),
		FormData:  string(formData),
	}, nil
}

func (uc *formErrorUsecase) Comment(ctx context.Context, formErrorID string, request *requests.CommentFormError) (*responses.FormError, error) {
	requestID := utils.RequestIDFrom(ctx)
	uc.Log.Info("formErrorUsecase.Comment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
		zap.String(constvars.LoggingOperatorKey, request.CommentedBy),
	)

	comment := strings.TrimSpace(request.Comment)
	if comment == "" {
		return nil, exceptions.ErrBlankComment()
	}

	formError, err := uc.findFormError(ctx, formErrorID)
	if err != nil {
		return nil, err
	}

	commentedAt := uc.now()
	formError.Comment = &comment
	formError.CommentedBy = strings.TrimSpace(request.CommentedBy)
	formError.DateCommented = &commentedAt
	if err := uc.FormErrorRepository.Update(ctx, formError); err != nil {
		uc.Log.Error("formErrorUsecase.Comment error updating form error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	response := formError.ConvertIntoResponse()
	return &response, nil
}

// Resolve applies one operator action to a form error. Every action runs under a
// per-record lock; a record already being resolved is reported as a conflict.
func (uc *formErrorUsecase) Resolve(ctx context.Context, formErrorID string, request *requests.ResolveFormError) (*responses.ResolveFormError, error) {
	requestID := utils.RequestIDFrom(ctx)
	action := models.ParseResolveAction(request.Action)
	uc.Log.Info("formErrorUsecase.Resolve called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
		zap.String(constvars.LoggingActionKey, string(action)),
	)

	if !action.Valid() {
		return nil, exceptions.ErrFormErrorInvalidAction(request.Action, formErrorID)
	}

	lockKey := fmt.Sprintf(constvars.RedisKeyFormErrorLockFormat, formErrorID)
	acquired, token, err := uc.Locker.TryLock(ctx, lockKey, time.Duration(uc.Config.LockTTLInSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrFormErrorLocked(formErrorID)
	}
	defer func() {
		if unlockErr := uc.Locker.Unlock(ctx, lockKey, token); unlockErr != nil {
			uc.Log.Warn("formErrorUsecase.Resolve error releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(unlockErr),
			)
		}
	}()

	formError, err := uc.findFormError(ctx, formErrorID)
	if err != nil {
		return nil, err
	}

	location, err := uc.apply(ctx, formError, action, request)
	if err != nil {
		uc.Log.Error("formErrorUsecase.Resolve action failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
			zap.String(constvars.LoggingActionKey, string(action)),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("formErrorUsecase.Resolve succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
		zap.String(constvars.LoggingActionKey, string(action)),
	)
	return &responses.ResolveFormError{
		ID:           formErrorID,
		Action:       string(action),
		Message:      constvars.ResolveFormErrorSuccessMessage,
		FormLocation: location,
	}, nil
}

// apply runs action and returns where the document is afterwards.
func (uc *formErrorUsecase) apply(ctx context.Context, formError *models.FormEntryError, action models.ResolveAction, request *requests.ResolveFormError) (string, error) {
	errorLocation := uc.Queue.Resolve(models.QueueAreaError, formError.FormName)

	switch action {
	case models.ActionLinkHousehold:
		householdID := strings.TrimSpace(request.HouseholdID)
		if householdID == "" {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientLinkHouseholdFailed, fmt.Sprintf(constvars.ErrDevBlankValue, "household identifier"))
		}
		household, err := uc.Registry.FindHousehold(ctx, householdID)
		if err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientLinkHouseholdFailed, string(action))
		}
		if household == nil {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientLinkHouseholdFailed, fmt.Sprintf(constvars.ErrDevHouseholdNotFound, householdID))
		}
		return uc.patchAndResubmit(ctx, formError, document.FieldHouseholdIdentifier, householdID, constvars.ErrClientLinkHouseholdFailed, action)

	case models.ActionAssignBirthdate:
		value := strings.TrimSpace(request.BirthDate)
		birthDate, err := time.Parse(uc.Config.DateFormat, value)
		if err != nil {
			return "", exceptions.ErrActionPrecondition(err, constvars.ErrClientAssignBirthdateFailed, fmt.Sprintf(constvars.ErrDevCannotParseDate, value, uc.Config.DateFormat))
		}
		return uc.patchAndResubmit(ctx, formError, document.FieldBirthdate, birthDate.Format(constvars.DocumentBirthdateLayout), constvars.ErrClientAssignBirthdateFailed, action)

	case models.ActionNewIdentifier:
		identifier := strings.TrimSpace(request.PatientIdentifier)
		if identifier == "" {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientNewIdentifierFailed, fmt.Sprintf(constvars.ErrDevBlankValue, "patient identifier"))
		}
		return uc.patchAndResubmit(ctx, formError, document.FieldPatientIdentifier, identifier, constvars.ErrClientNewIdentifierFailed, action)

	case models.ActionLinkProvider:
		providerRef := strings.TrimSpace(request.ProviderID)
		if providerRef == "" {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientLinkProviderFailed, fmt.Sprintf(constvars.ErrDevBlankValue, "provider"))
		}
		provider, err := uc.Registry.FindProvider(ctx, providerRef)
		if err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientLinkProviderFailed, string(action))
		}
		if provider == nil {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientLinkProviderFailed, fmt.Sprintf(constvars.ErrDevProviderNotFound, providerRef))
		}
		if provider.Code == "" {
			return "", exceptions.ErrActionPrecondition(nil, constvars.ErrClientLinkProviderFailed, fmt.Sprintf(constvars.ErrDevProviderWithoutCode, providerRef))
		}
		return uc.patchAndResubmit(ctx, formError, document.FieldEncounterProvider, provider.Code, constvars.ErrClientLinkProviderFailed, action)

	case models.ActionCreatePatient:
		formData, err := uc.Queue.Read(ctx, models.QueueAreaError, formError.FormName)
		if err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientCreatePatientFailed, string(action))
		}
		if err := uc.Ingestion.Submit(ctx, formError.FormName, formData); err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientCreatePatientFailed, string(action))
		}
		if err := uc.FormErrorRepository.Delete(ctx, formError.ID, formError.Version); err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientCreatePatientFailed, string(action))
		}
		return errorLocation, nil

	case models.ActionDeleteError:
		if err := uc.FormErrorRepository.Delete(ctx, formError.ID, formError.Version); err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientDeleteErrorFailed, string(action))
		}
		return errorLocation, nil

	case models.ActionDeleteComment:
		formError.Comment = nil
		formError.CommentedBy = ""
		formError.DateCommented = nil
		if err := uc.FormErrorRepository.Update(ctx, formError); err != nil {
			return "", exceptions.ErrActionFailed(err, constvars.ErrClientDeleteCommentFailed, string(action))
		}
		return errorLocation, nil

	case models.ActionNoChange:
		return errorLocation, nil

	default:
		return "", exceptions.ErrFormErrorInvalidAction(string(action), formError.ID)
	}
}

// patchAndResubmit patches field in the error area, moves the document to retry-intake and
// deletes the record. A failure after the rewrite puts the original bytes back in error.
func (uc *formErrorUsecase) patchAndResubmit(ctx context.Context, formError *models.FormEntryError, field document.FieldLocator, value, clientMessage string, action models.ResolveAction) (string, error) {
	requestID := utils.RequestIDFrom(ctx)
	name := formError.FormName
	fail := func(err error) (string, error) {
		return "", exceptions.ErrActionFailed(err, clientMessage, string(action))
	}

	area, err := uc.Queue.Locate(ctx, name)
	if err != nil {
		return fail(err)
	}
	if area != models.QueueAreaError {
		return "", exceptions.ErrActionPrecondition(nil, clientMessage, fmt.Sprintf(constvars.ErrDevDocumentNotInErrorArea, name, area))
	}

	original, err := uc.Queue.Read(ctx, models.QueueAreaError, name)
	if err != nil {
		return fail(err)
	}
	patched, err := document.PatchField(original, field, value)
	if err != nil {
		return fail(err)
	}

	if err := uc.Queue.Rewrite(ctx, models.QueueAreaError, name, patched); err != nil {
		return fail(err)
	}
	if err := uc.Queue.Move(ctx, name, models.QueueAreaError, models.QueueAreaRetryIntake); err != nil {
		uc.restore(ctx, name, original, false)
		return fail(err)
	}
	if err := uc.FormErrorRepository.Delete(ctx, formError.ID, formError.Version); err != nil {
		uc.restore(ctx, name, original, true)
		return fail(err)
	}

	uc.Log.Info("formErrorUsecase.patchAndResubmit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormNameKey, name),
		zap.String(constvars.LoggingFieldKey, field.String()),
	)
	return uc.Queue.Resolve(models.QueueAreaRetryIntake, name), nil
}

// restore puts the document back into error with its original content.
func (uc *formErrorUsecase) restore(ctx context.Context, name string, original []byte, moved bool) {
	requestID := utils.RequestIDFrom(ctx)
	if moved {
		if err := uc.Queue.Move(ctx, name, models.QueueAreaRetryIntake, models.QueueAreaError); err != nil {
			uc.Log.Error("formErrorUsecase.restore error moving document back to error area",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingFormNameKey, name),
				zap.Error(err),
			)
			return
		}
	}
	if err := uc.Queue.Rewrite(ctx, models.QueueAreaError, name, original); err != nil {
		uc.Log.Error("formErrorUsecase.restore error rewriting original document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.Error(err),
		)
	}
}

func (uc *formErrorUsecase) findFormError(ctx context.Context, formErrorID string) (*models.FormEntryError, error) {
	formError, err := uc.FormErrorRepository.FindByID(ctx, formErrorID)
	if err != nil {
		uc.Log.Error("formErrorUsecase.findFormError error fetching form error",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
			zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
			zap.Error(err),
		)
		return nil, err
	}
	if formError == nil {
		return nil, exceptions.ErrFormErrorNotFound(formErrorID)
	}
	return formError, nil
}
