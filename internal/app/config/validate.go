package config

import (
	"fmt"
	"mobileforms-service/internal/pkg/constvars"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate reports settings the service cannot start with.
func (c *InternalConfig) Validate() error {
	var problems []string

	switch c.Queue.Backend {
	case constvars.QueueBackendFilesystem:
		for name, dir := range map[string]string{
			"QUEUE_PENDING_DIR":      c.Queue.PendingDir,
			"QUEUE_ARCHIVE_DIR":      c.Queue.ArchiveDir,
			"QUEUE_ERROR_DIR":        c.Queue.ErrorDir,
			"QUEUE_RETRY_INTAKE_DIR": c.Queue.RetryIntakeDir,
		} {
			if strings.TrimSpace(dir) == "" {
				problems = append(problems, name+" is empty")
			}
		}
	case constvars.QueueBackendMinio:
		if strings.TrimSpace(c.Queue.Bucket) == "" {
			problems = append(problems, "QUEUE_MINIO_BUCKET is empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("QUEUE_BACKEND %q is not one of filesystem, minio", c.Queue.Backend))
	}

	switch c.PostProcess.OnFailure {
	case constvars.PostProcessOnFailureArchive, constvars.PostProcessOnFailureRetain:
	default:
		problems = append(problems, fmt.Sprintf("POST_PROCESS_ON_FAILURE %q is not one of archive, retain", c.PostProcess.OnFailure))
	}

	if _, err := cron.ParseStandard(c.PostProcess.CronSpec); err != nil {
		problems = append(problems, fmt.Sprintf("POST_PROCESS_CRON_SPEC %q: %v", c.PostProcess.CronSpec, err))
	}

	if c.ErrorResolution.LockTTLInSeconds <= 0 {
		problems = append(problems, "ERROR_RESOLUTION_LOCK_TTL_IN_SECONDS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
