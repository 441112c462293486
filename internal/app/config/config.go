package config

import (
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "mobileforms"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                      utils.GetEnvString("APP_ENV", constvars.AppEnvDevelopment),
			Port:                     utils.GetEnvString("APP_PORT", ":8080"),
			Version:                  utils.GetEnvString("APP_VERSION", "v1"),
			Timezone:                 utils.GetEnvString("APP_TIMEZONE", "Africa/Nairobi"),
			EndpointPrefix:           utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			OperatorAPIKey:           utils.GetEnvString("APP_OPERATOR_API_KEY", ""),
			MaxRequests:              utils.GetEnvInt("APP_MAX_REQUEST", 20),
			ShutdownTimeoutInSeconds: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			RequestTimeoutInSeconds:  utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 30),
		},
		Queue: Queue{
			Backend:        utils.GetEnvString("QUEUE_BACKEND", constvars.QueueBackendFilesystem),
			PendingDir:     utils.GetEnvString("QUEUE_PENDING_DIR", "mobileforms/postprocess"),
			ArchiveDir:     utils.GetEnvString("QUEUE_ARCHIVE_DIR", "mobileforms/archive"),
			ErrorDir:       utils.GetEnvString("QUEUE_ERROR_DIR", "mobileforms/error"),
			RetryIntakeDir: utils.GetEnvString("QUEUE_RETRY_INTAKE_DIR", "mobileforms/queue"),
			Bucket:         utils.GetEnvString("QUEUE_MINIO_BUCKET", "mobileforms"),
		},
		PostProcess: PostProcess{
			CronSpec:                   utils.GetEnvString("POST_PROCESS_CRON_SPEC", "@every 1m"),
			WatchPending:               utils.GetEnvBool("POST_PROCESS_WATCH_PENDING", false),
			WatchDebounceInMillis:      utils.GetEnvInt("POST_PROCESS_WATCH_DEBOUNCE_IN_MILLIS", 500),
			OnFailure:                  utils.GetEnvString("POST_PROCESS_ON_FAILURE", constvars.PostProcessOnFailureArchive),
			ArchiveWithoutRelationship: utils.GetEnvBool("POST_PROCESS_ARCHIVE_WITHOUT_RELATIONSHIP", true),
			SecondaryIdentifierType:    utils.GetEnvString("POST_PROCESS_SECONDARY_IDENTIFIER_TYPE", "HCT ID"),
			HomeLocation:               utils.GetEnvString("POST_PROCESS_HOME_LOCATION", "Location/4"),
			PhoneAttributeType:         utils.GetEnvString("POST_PROCESS_PHONE_ATTRIBUTE_TYPE", "http://mobileforms.local/fhir/StructureDefinition/contact-phone"),
		},
		ErrorResolution: ErrorResolution{
			DateFormat:           utils.GetEnvString("ERROR_RESOLUTION_DATE_FORMAT", "02/01/2006"),
			LockTTLInSeconds:     utils.GetEnvInt("ERROR_RESOLUTION_LOCK_TTL_IN_SECONDS", 30),
			RequestTimeoutInSecs: utils.GetEnvInt("ERROR_RESOLUTION_REQUEST_TIMEOUT_IN_SECONDS", 20),
		},
		FHIR: FHIR{
			BaseUrl:                   utils.GetEnvString("FHIR_BASE_URL", "http://localhost:5555/fhir"),
			PatientIdentifierSystem:   utils.GetEnvString("FHIR_PATIENT_IDENTIFIER_SYSTEM", "http://mobileforms.local/fhir/patient-identifier"),
			HouseholdIdentifierSystem: utils.GetEnvString("FHIR_HOUSEHOLD_IDENTIFIER_SYSTEM", "http://mobileforms.local/fhir/household-identifier"),
			RequestTimeoutInSeconds:   utils.GetEnvInt("FHIR_REQUEST_TIMEOUT_IN_SECONDS", 15),
		},
		Ingestion: Ingestion{
			QueueName: utils.GetEnvString("INGESTION_QUEUE_NAME", "mobileforms_ingestion_queue"),
		},
	}
}
