package controllers

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type PostProcessController struct {
	Log                *zap.Logger
	PostProcessUsecase contracts.PostProcessUsecase
	Timeout            time.Duration
}

func NewPostProcessController(logger *zap.Logger, postProcessUsecase contracts.PostProcessUsecase, timeout time.Duration) *PostProcessController {
	return &PostProcessController{
		Log:                logger,
		PostProcessUsecase: postProcessUsecase,
		Timeout:            timeout,
	}
}

// RunPass triggers a pass on demand. A pass already in flight answers 202 without
// starting another.
func (ctrl *PostProcessController) RunPass(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requestIDOf(ctrl.Log, w, r, "PostProcessController.RunPass")
	if !ok {
		return
	}
	ctrl.Log.Info("PostProcessController.RunPass called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.Timeout)
	defer cancel()

	result, err := ctrl.PostProcessUsecase.RunPass(ctx)
	if err != nil {
		ctrl.Log.Error("PostProcessController.RunPass error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	if !result.Started {
		utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.PostProcessPassBusyMessage, result)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PostProcessPassStartedMessage, result)
}
