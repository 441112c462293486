// Package postprocess runs the post-process queue engine over the pending area.
package postprocess

import (
	"context"
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/app/services/shared/document"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/dto/responses"
	"mobileforms-service/internal/pkg/utils"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type decision int

const (
	decisionSkip decision = iota
	decisionArchive
	decisionLeavePending
)

type postProcessUsecase struct {
	Queue    contracts.QueueAreas
	Identity contracts.IdentityService
	Config   config.PostProcess
	Policy   models.FailurePolicy
	Metrics  *Metrics
	Log      *zap.Logger
	now      func() time.Time
	running  atomic.Bool
}

func NewPostProcessUsecase(
	queue contracts.QueueAreas,
	identity contracts.IdentityService,
	postProcessCfg config.PostProcess,
	metrics *Metrics,
	logger *zap.Logger,
) contracts.PostProcessUsecase {
	policy := models.FailurePolicy(postProcessCfg.OnFailure)
	if policy != models.FailurePolicyRetain {
		policy = models.FailurePolicyArchive
	}
	return &postProcessUsecase{
		Queue:    queue,
		Identity: identity,
		Config:   postProcessCfg,
		Policy:   policy,
		Metrics:  metrics,
		Log:      logger,
		now:      time.Now,
	}
}

func (uc *postProcessUsecase) RunPass(ctx context.Context) (*responses.PostProcessPass, error) {
	requestID := utils.RequestIDFrom(ctx)
	if !uc.running.CompareAndSwap(false, true) {
		uc.Log.Warn("postProcessUsecase.RunPass pass already running, skipping",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		uc.Metrics.Passes.WithLabelValues(passResultBusy).Inc()
		return &responses.PostProcessPass{Started: false}, nil
	}
	defer uc.running.Store(false)

	startedAt := uc.now()
	names, err := uc.Queue.ListPending(ctx)
	if err != nil {
		uc.Log.Error("postProcessUsecase.RunPass error listing pending area",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		uc.Metrics.Passes.WithLabelValues(passResultFailed).Inc()
		return nil, err
	}

	uc.Log.Info("postProcessUsecase.RunPass called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingPendingCountKey, len(names)),
	)
	uc.Metrics.Pending.Set(float64(len(names)))

	pass := &responses.PostProcessPass{
		Started:   true,
		StartedAt: startedAt,
		Pending:   len(names),
		Counts:    make(map[string]int, len(models.PostProcessOutcomes)),
		Documents: make([]responses.PostProcessDocument, 0, len(names)),
	}
	for _, name := range names {
		outcome, processErr := uc.handleDocument(ctx, name)

		result := responses.PostProcessDocument{FormName: name, Outcome: string(outcome)}
		if processErr != nil {
			result.Error = processErr.Error()
		}
		pass.Documents = append(pass.Documents, result)
		pass.Counts[string(outcome)]++
		uc.Metrics.Documents.WithLabelValues(string(outcome)).Inc()
	}

	pass.FinishedAt = uc.now()
	uc.Metrics.Passes.WithLabelValues(passResultCompleted).Inc()
	uc.Metrics.PassDuration.Observe(pass.FinishedAt.Sub(startedAt).Seconds())
	uc.Log.Info("postProcessUsecase.RunPass succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingPendingCountKey, len(names)),
		zap.Any(constvars.LoggingOutcomeKey, pass.Counts),
	)
	return pass, nil
}

// handleDocument enriches one document and routes it. Enrichment failures are returned
// for reporting only; where the document goes is decided by the failure policy.
func (uc *postProcessUsecase) handleDocument(ctx context.Context, name string) (models.PostProcessOutcome, error) {
	requestID := utils.RequestIDFrom(ctx)
	next, err := uc.enrichSafely(ctx, name)

	if err != nil {
		uc.Log.Error("postProcessUsecase.handleDocument error processing document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.String(constvars.LoggingOutcomeKey, string(uc.Policy)),
			zap.Error(err),
		)
		if uc.Policy == models.FailurePolicyRetain {
			return models.OutcomeFailedRetained, err
		}
		if archiveErr := uc.archive(ctx, name); archiveErr != nil {
			return models.OutcomeArchiveFailed, archiveErr
		}
		return models.OutcomeFailedArchived, err
	}

	switch next {
	case decisionSkip:
		uc.Log.Info("postProcessUsecase.handleDocument no patient identifier, leaving pending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
		)
		return models.OutcomeSkipped, nil
	case decisionLeavePending:
		uc.Log.Info("postProcessUsecase.handleDocument relationship not established, leaving pending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
		)
		return models.OutcomeLeftPending, nil
	default:
		if archiveErr := uc.archive(ctx, name); archiveErr != nil {
			return models.OutcomeArchiveFailed, archiveErr
		}
		return models.OutcomeArchived, nil
	}
}

func (uc *postProcessUsecase) archive(ctx context.Context, name string) error {
	day := uc.now()
	if err := uc.Queue.Archive(ctx, name, day); err != nil {
		uc.Log.Error("postProcessUsecase.archive error moving document to archive",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.Error(err),
		)
		return err
	}
	uc.Log.Info("postProcessUsecase.archive succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
		zap.String(constvars.LoggingFormNameKey, name),
		zap.String(constvars.LoggingArchiveLocationKey, uc.Queue.ArchiveLocation(name, day)),
	)
	return nil
}

// enrichSafely turns a panic raised anywhere in enrichment into an error.
func (uc *postProcessUsecase) enrichSafely(ctx context.Context, name string) (next decision, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			next, err = decisionArchive, fmt.Errorf("panic while processing %s: %v", name, recovered)
		}
	}()
	return uc.enrich(ctx, name)
}

func (uc *postProcessUsecase) enrich(ctx context.Context, name string) (decision, error) {
	raw, err := uc.Queue.Read(ctx, models.QueueAreaPending, name)
	if err != nil {
		return decisionArchive, err
	}
	doc, err := document.Parse(raw)
	if err != nil {
		return decisionArchive, err
	}

	identifier, ok := doc.Extract(document.FieldPatientIdentifier)
	if !ok {
		return decisionSkip, nil
	}

	person, err := uc.Identity.FindOrCreateByIdentifier(ctx, identifier)
	if err != nil {
		return decisionArchive, err
	}

	if secondary, ok := doc.Extract(document.FieldSecondaryIdentifier); ok {
		if err := uc.Identity.AttachSecondaryIdentifier(ctx, person, secondary, uc.Config.SecondaryIdentifierType, uc.Config.HomeLocation); err != nil {
			return decisionArchive, err
		}
	}
	if phone, ok := doc.Extract(document.FieldPhone); ok {
		if err := uc.Identity.AttachAttribute(ctx, person, phone, uc.Config.PhoneAttributeType); err != nil {
			return decisionArchive, err
		}
	}
	if err := uc.Identity.Persist(ctx, person); err != nil {
		return decisionArchive, err
	}

	relationship, hasRelationship := doc.Extract(document.FieldRelationshipToHead)
	household, hasHousehold := doc.Extract(document.FieldHouseholdIdentifier)
	if !hasRelationship || !hasHousehold {
		if uc.Config.ArchiveWithoutRelationship {
			return decisionArchive, nil
		}
		return decisionLeavePending, nil
	}

	linked, err := uc.Identity.EstablishRelationship(ctx, person, relationship, household)
	if err != nil {
		return decisionArchive, err
	}
	if !linked {
		return decisionLeavePending, nil
	}
	return decisionArchive, nil
}
