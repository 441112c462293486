// Package queue implements the directory-as-queue areas form documents move through.
package queue

import (
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// NewQueueAreas builds the backend selected by queueCfg.Backend.
func NewQueueAreas(queueCfg config.Queue, fs afero.Fs, minioClient *minio.Client, logger *zap.Logger) (contracts.QueueAreas, error) {
	switch queueCfg.Backend {
	case constvars.QueueBackendFilesystem:
		return NewFilesystemAreas(fs, queueCfg, logger), nil
	case constvars.QueueBackendMinio:
		if minioClient == nil {
			return nil, fmt.Errorf("queue backend %s needs a minio client", queueCfg.Backend)
		}
		return NewMinioAreas(minioClient, queueCfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", queueCfg.Backend)
	}
}

func areaRoots(queueCfg config.Queue) map[models.QueueArea]string {
	return map[models.QueueArea]string{
		models.QueueAreaPending:     queueCfg.PendingDir,
		models.QueueAreaArchive:     queueCfg.ArchiveDir,
		models.QueueAreaError:       queueCfg.ErrorDir,
		models.QueueAreaRetryIntake: queueCfg.RetryIntakeDir,
	}
}

// validName accepts bare document names only, so a name can never escape its area.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// listable filters out hidden entries, which includes the temp files written by rewrites.
func listable(name string) bool {
	return validName(name) && !strings.HasPrefix(name, ".")
}

func tempName(name, token string) string {
	return "." + name + ".tmp-" + token
}

func archivePartition(day time.Time) string {
	return day.Format(constvars.ArchiveDateLayout)
}

func checkMove(name string, from, to models.QueueArea) error {
	if !validName(name) {
		return exceptions.ErrQueueStorage(fmt.Errorf("invalid document name %q", name), "move", name)
	}
	if !from.Valid() || !to.Valid() || !from.CanMoveTo(to) {
		return exceptions.ErrQueueIllegalTransition(from.String(), to.String(), name)
	}
	return nil
}

func checkName(operation, name string) error {
	if !validName(name) {
		return exceptions.ErrQueueStorage(fmt.Errorf("invalid document name %q", name), operation, name)
	}
	return nil
}

func joinKey(root, name string) string {
	return path.Join(root, name)
}
