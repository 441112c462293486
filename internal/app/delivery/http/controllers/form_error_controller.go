package controllers

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/dto/requests"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type FormErrorController struct {
	Log              *zap.Logger
	FormErrorUsecase contracts.FormErrorUsecase
	Timeout          time.Duration
}

func NewFormErrorController(logger *zap.Logger, formErrorUsecase contracts.FormErrorUsecase, timeout time.Duration) *FormErrorController {
	return &FormErrorController{
		Log:              logger,
		FormErrorUsecase: formErrorUsecase,
		Timeout:          timeout,
	}
}

func (ctrl *FormErrorController) FindAll(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requestIDOf(ctrl.Log, w, r, "FormErrorController.FindAll")
	if !ok {
		return
	}
	ctrl.Log.Info("FormErrorController.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.Timeout)
	defer cancel()

	result, err := ctrl.FormErrorUsecase.FindAll(ctx)
	if err != nil {
		ctrl.respondError(w, "FormErrorController.FindAll", requestID, err)
		return
	}

	ctrl.Log.Info("FormErrorController.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingFormErrorCountKey, len(result)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetFormErrorsSuccessMessage, result)
}

func (ctrl *FormErrorController) FindByID(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requestIDOf(ctrl.Log, w, r, "FormErrorController.FindByID")
	if !ok {
		return
	}
	formErrorID := chi.URLParam(r, constvars.URLParamFormErrorID)
	ctrl.Log.Info("FormErrorController.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.Timeout)
	defer cancel()

	result, err := ctrl.FormErrorUsecase.FindByID(ctx, formErrorID)
	if err != nil {
		ctrl.respondError(w, "FormErrorController.FindByID", requestID, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetFormErrorSuccessMessage, result)
}

// Comment attaches an operator comment. The author defaults to the operator named by the
// X-Operator-ID header.
func (ctrl *FormErrorController) Comment(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requestIDOf(ctrl.Log, w, r, "FormErrorController.Comment")
	if !ok {
		return
	}
	formErrorID := chi.URLParam(r, constvars.URLParamFormErrorID)
	ctrl.Log.Info("FormErrorController.Comment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
	)

	request := new(requests.CommentFormError)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if utils.IsBlank(request.CommentedBy) {
		request.CommentedBy, _ = r.Context().Value(constvars.CONTEXT_OPERATOR_ID_KEY).(string)
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.Timeout)
	defer cancel()

	result, err := ctrl.FormErrorUsecase.Comment(ctx, formErrorID, request)
	if err != nil {
		ctrl.respondError(w, "FormErrorController.Comment", requestID, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CommentFormErrorSuccessMessage, result)
}

func (ctrl *FormErrorController) Resolve(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requestIDOf(ctrl.Log, w, r, "FormErrorController.Resolve")
	if !ok {
		return
	}
	formErrorID := chi.URLParam(r, constvars.URLParamFormErrorID)

	request := new(requests.ResolveFormError)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}
	ctrl.Log.Info("FormErrorController.Resolve called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
		zap.String(constvars.LoggingActionKey, request.Action),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.Timeout)
	defer cancel()

	result, err := ctrl.FormErrorUsecase.Resolve(ctx, formErrorID, request)
	if err != nil {
		ctrl.respondError(w, "FormErrorController.Resolve", requestID, err)
		return
	}

	ctrl.Log.Info("FormErrorController.Resolve succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormErrorIDKey, formErrorID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, result.Message, result)
}

func (ctrl *FormErrorController) respondError(w http.ResponseWriter, caller, requestID string, err error) {
	ctrl.Log.Error(caller+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}

func requestIDOf(log *zap.Logger, w http.ResponseWriter, r *http.Request, caller string) (string, bool) {
	requestID := utils.RequestIDFrom(r.Context())
	if requestID == "" {
		log.Error(caller + " requestID not found in context")
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", false
	}
	return requestID, true
}
