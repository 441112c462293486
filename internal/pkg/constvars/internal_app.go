package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_OPERATOR_ID_KEY          ContextKey = "operator_id"
)

const (
	REQUEST_ID_PREFIX = "MBLFRM_SVC_"
)

const (
	AppEnvDevelopment = "development"
	AppEnvProduction  = "production"
)

const (
	// ArchiveDateLayout names the per-day partition under the archive area.
	ArchiveDateLayout = "2006-01-02"
	// DocumentBirthdateLayout is the layout birthdates are written into documents with.
	DocumentBirthdateLayout = "2006-01-02"
)

const (
	QueueBackendFilesystem = "filesystem"
	QueueBackendMinio      = "minio"
)

const (
	PostProcessOnFailureArchive = "archive"
	PostProcessOnFailureRetain  = "retain"
)

const (
	MongoCollectionFormEntryErrors = "form_entry_errors"
)

const (
	RedisKeyFormErrorLockFormat = "formerrors:lock:%s"
)

const (
	// DefaultOperatorID authors comments made without an X-Operator-ID header.
	DefaultOperatorID = "operator"
)
