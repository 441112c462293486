package main

import (
	"context"
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/delivery/http/controllers"
	"mobileforms-service/internal/app/delivery/http/middlewares"
	"mobileforms-service/internal/app/delivery/http/routers"
	"mobileforms-service/internal/app/drivers/storage"
	formErrors "mobileforms-service/internal/app/services/core/form_errors"
	"mobileforms-service/internal/app/services/core/postprocess"
	"mobileforms-service/internal/app/services/fhir_spark/identity"
	"mobileforms-service/internal/app/services/shared/ingestion"
	"mobileforms-service/internal/app/services/shared/locker"
	"mobileforms-service/internal/app/services/shared/queue"
	"mobileforms-service/internal/app/services/shared/redis"
	"mobileforms-service/internal/pkg/constvars"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type application struct {
	Worker *postprocess.Worker
}

func loadConfig() (*config.DriverConfig, *config.InternalConfig, error) {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	if err := internalConfig.Validate(); err != nil {
		return nil, nil, err
	}

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %s: %w", internalConfig.App.Timezone, err)
	}
	time.Local = location
	return driverConfig, internalConfig, nil
}

// queueStorage opens the storage the configured queue backend lives on.
func queueStorage(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) (afero.Fs, *minio.Client) {
	if internalConfig.Queue.Backend == constvars.QueueBackendMinio {
		return nil, storage.NewMinio(driverConfig)
	}
	return storage.NewFilesystem(), nil
}

// newEngine wires the post-process usecase. A missing queue area stops startup.
func newEngine(ctx context.Context, bootstrap config.Bootstrap, registerer prometheus.Registerer) (contracts.QueueAreas, contracts.PostProcessUsecase, error) {
	queueAreas, err := queue.NewQueueAreas(bootstrap.InternalConfig.Queue, bootstrap.Filesystem, bootstrap.Minio, bootstrap.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := queueAreas.Verify(ctx); err != nil {
		return nil, nil, err
	}

	identityService := identity.NewIdentityFhirClient(bootstrap.InternalConfig.FHIR, bootstrap.Logger)
	metrics := postprocess.NewMetrics(registerer)
	postProcessUsecase := postprocess.NewPostProcessUsecase(queueAreas, identityService, bootstrap.InternalConfig.PostProcess, metrics, bootstrap.Logger)
	return queueAreas, postProcessUsecase, nil
}

func bootstrapingTheApp(bootstrap config.Bootstrap) (*application, error) {
	internalConfig := bootstrap.InternalConfig

	// Queue and post-process engine
	queueAreas, postProcessUsecase, err := newEngine(context.Background(), bootstrap, bootstrap.Registry)
	if err != nil {
		return nil, err
	}

	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, bootstrap.Logger)

	// Middlewares
	middlewares := middlewares.NewMiddlewares(bootstrap.Logger, internalConfig)

	// Ingestion
	ingestionSubmitter, err := ingestion.NewRabbitMQSubmitter(bootstrap.RabbitMQ, internalConfig.Ingestion.QueueName, bootstrap.Logger)
	if err != nil {
		return nil, err
	}

	// Form errors
	registryService := identity.NewRegistryFhirClient(internalConfig.FHIR, bootstrap.Logger)
	formErrorRepository := formErrors.NewFormErrorMongoRepository(bootstrap.MongoDB.Database(bootstrap.DriverConfig.MongoDB.DbName))
	formErrorUsecase := formErrors.NewFormErrorUsecase(
		formErrorRepository,
		queueAreas,
		registryService,
		ingestionSubmitter,
		lockService,
		internalConfig.ErrorResolution,
		bootstrap.Logger,
	)
	formErrorController := controllers.NewFormErrorController(
		bootstrap.Logger,
		formErrorUsecase,
		time.Duration(internalConfig.ErrorResolution.RequestTimeoutInSecs)*time.Second,
	)

	// Post-process
	postProcessController := controllers.NewPostProcessController(
		bootstrap.Logger,
		postProcessUsecase,
		time.Duration(internalConfig.App.RequestTimeoutInSeconds)*time.Second,
	)
	worker := postprocess.NewWorker(bootstrap.Logger, internalConfig, lockService, postProcessUsecase)

	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewares, bootstrap.Registry, formErrorController, postProcessController)

	bootstrap.Logger.Info("Application bootstrapped",
		zap.String("queue_backend", internalConfig.Queue.Backend),
		zap.String("cron_spec", internalConfig.PostProcess.CronSpec),
	)
	return &application{Worker: worker}, nil
}
