package config

type InternalConfig struct {
	App             App
	Queue           Queue
	PostProcess     PostProcess
	ErrorResolution ErrorResolution
	FHIR            FHIR
	Ingestion       Ingestion
}

type App struct {
	Env                      string
	Port                     string
	Version                  string
	Timezone                 string
	EndpointPrefix           string
	OperatorAPIKey           string
	MaxRequests              int
	ShutdownTimeoutInSeconds int
	RequestTimeoutInSeconds  int
}

// Queue locates the four queue areas. With the filesystem backend each area is a
// directory; with the minio backend each area is a key prefix inside Bucket.
type Queue struct {
	Backend        string
	PendingDir     string
	ArchiveDir     string
	ErrorDir       string
	RetryIntakeDir string
	Bucket         string
}

type PostProcess struct {
	CronSpec                   string
	WatchPending               bool
	WatchDebounceInMillis      int
	OnFailure                  string
	ArchiveWithoutRelationship bool
	SecondaryIdentifierType    string
	HomeLocation               string
	PhoneAttributeType         string
}

type ErrorResolution struct {
	DateFormat           string
	LockTTLInSeconds     int
	RequestTimeoutInSecs int
}

type FHIR struct {
	BaseUrl                   string
	PatientIdentifierSystem   string
	HouseholdIdentifierSystem string
	RequestTimeoutInSeconds   int
}

type Ingestion struct {
	QueueName string
}
