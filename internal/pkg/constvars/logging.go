package constvars

const (
	LoggingRequestIDKey         = "request_id"
	LoggingMethodKey            = "method"
	LoggingEndpointKey          = "endpoint"
	LoggingRemoteAddrKey        = "remote_addr"
	LoggingUserAgentKey         = "user_agent"
	LoggingQueryKey             = "query"
	LoggingStatusCodeKey        = "status_code"
	LoggingDurationKey          = "duration"
	LoggingSuccessKey           = "success"
	LoggingFormNameKey          = "form_name"
	LoggingQueueAreaKey         = "queue_area"
	LoggingQueueAreaFromKey     = "queue_area_from"
	LoggingQueueAreaToKey       = "queue_area_to"
	LoggingFieldKey             = "field"
	LoggingOutcomeKey           = "outcome"
	LoggingPendingCountKey      = "pending_count"
	LoggingPatientIDKey         = "patient_id"
	LoggingIdentifierKey        = "identifier"
	LoggingHouseholdIDKey       = "household_id"
	LoggingProviderIDKey        = "provider_id"
	LoggingFormErrorIDKey       = "form_error_id"
	LoggingFormErrorCountKey    = "form_error_count"
	LoggingActionKey            = "action"
	LoggingOperatorKey          = "operator"
	LoggingRedisKey             = "redis_key"
	LoggingLockValueKey         = "lock_value"
	LoggingLockExpirationKey    = "lock_expiration"
	LoggingLockStoredValueKey   = "lock_stored_value"
	LoggingLockExpectedValueKey = "lock_expected_value"
	LoggingAreaLocationKey      = "area_location"
	LoggingCronSpecKey          = "cron_spec"
	LoggingArchiveLocationKey   = "archive_location"
	LoggingQueueNameKey         = "queue_name"
	LoggingURLKey               = "url"
)
