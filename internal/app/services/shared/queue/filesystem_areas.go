package queue

import (
	"context"
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type filesystemAreas struct {
	fs    afero.Fs
	roots map[models.QueueArea]string
	now   func() time.Time
	Log   *zap.Logger
}

// NewFilesystemAreas keeps each area in its own directory on fs. The area roots must
// exist already; only archive date partitions are created on demand.
func NewFilesystemAreas(fs afero.Fs, queueCfg config.Queue, logger *zap.Logger) contracts.QueueAreas {
	return &filesystemAreas{
		fs:    fs,
		roots: areaRoots(queueCfg),
		now:   time.Now,
		Log:   logger,
	}
}

func (q *filesystemAreas) ListPending(ctx context.Context) ([]string, error) {
	root := q.roots[models.QueueAreaPending]
	entries, err := afero.ReadDir(q.fs, root)
	if err != nil {
		q.Log.Error("filesystemAreas.ListPending error reading pending area",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
			zap.String(constvars.LoggingAreaLocationKey, root),
			zap.Error(err),
		)
		return nil, exceptions.ErrQueueStorage(err, "list", root)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !listable(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (q *filesystemAreas) Resolve(area models.QueueArea, name string) string {
	return filepath.Join(q.roots[area], name)
}

func (q *filesystemAreas) ArchiveLocation(name string, day time.Time) string {
	return filepath.Join(q.roots[models.QueueAreaArchive], archivePartition(day), name)
}

func (q *filesystemAreas) Move(ctx context.Context, name string, from, to models.QueueArea) error {
	if to == models.QueueAreaArchive {
		return q.Archive(ctx, name, q.now())
	}
	if err := checkMove(name, from, to); err != nil {
		return err
	}
	return q.rename(ctx, name, from, to, q.Resolve(from, name), q.Resolve(to, name))
}

func (q *filesystemAreas) Archive(ctx context.Context, name string, day time.Time) error {
	if err := checkMove(name, models.QueueAreaPending, models.QueueAreaArchive); err != nil {
		return err
	}

	target := q.ArchiveLocation(name, day)
	if err := q.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return exceptions.ErrQueueStorage(err, "archive", name)
	}
	return q.rename(ctx, name, models.QueueAreaPending, models.QueueAreaArchive, q.Resolve(models.QueueAreaPending, name), target)
}

// rename moves source to target. A document already present at target is never overwritten.
func (q *filesystemAreas) rename(ctx context.Context, name string, from, to models.QueueArea, source, target string) error {
	requestID := utils.RequestIDFrom(ctx)

	if _, err := q.fs.Stat(source); err != nil {
		return exceptions.ErrQueueStorage(err, "move", name)
	}
	exists, err := afero.Exists(q.fs, target)
	if err != nil {
		return exceptions.ErrQueueStorage(err, "move", name)
	}
	if exists {
		return exceptions.ErrQueueStorage(fmt.Errorf("%s already exists", target), "move", name)
	}

	if err := q.fs.Rename(source, target); err != nil {
		q.Log.Error("filesystemAreas.Move error renaming document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.String(constvars.LoggingQueueAreaFromKey, from.String()),
			zap.String(constvars.LoggingQueueAreaToKey, to.String()),
			zap.Error(err),
		)
		return exceptions.ErrQueueStorage(err, "move", name)
	}

	q.Log.Info("filesystemAreas.Move succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormNameKey, name),
		zap.String(constvars.LoggingQueueAreaFromKey, from.String()),
		zap.String(constvars.LoggingQueueAreaToKey, to.String()),
	)
	return nil
}

func (q *filesystemAreas) Read(ctx context.Context, area models.QueueArea, name string) ([]byte, error) {
	if err := checkName("read", name); err != nil {
		return nil, err
	}
	content, err := afero.ReadFile(q.fs, q.Resolve(area, name))
	if err != nil {
		return nil, exceptions.ErrQueueStorage(err, "read", name)
	}
	return content, nil
}

// Rewrite writes content next to the document and renames it over the original, so
// readers see either the old or the new bytes.
func (q *filesystemAreas) Rewrite(ctx context.Context, area models.QueueArea, name string, content []byte) error {
	if err := checkName("rewrite", name); err != nil {
		return err
	}

	target := q.Resolve(area, name)
	info, err := q.fs.Stat(target)
	if err != nil {
		return exceptions.ErrQueueStorage(err, "rewrite", name)
	}

	temp := filepath.Join(filepath.Dir(target), tempName(name, uuid.NewString()))
	if err := afero.WriteFile(q.fs, temp, content, info.Mode().Perm()); err != nil {
		_ = q.fs.Remove(temp)
		return exceptions.ErrQueueStorage(err, "rewrite", name)
	}
	if err := q.fs.Rename(temp, target); err != nil {
		_ = q.fs.Remove(temp)
		return exceptions.ErrQueueStorage(err, "rewrite", name)
	}

	q.Log.Info("filesystemAreas.Rewrite succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
		zap.String(constvars.LoggingFormNameKey, name),
		zap.String(constvars.LoggingQueueAreaKey, area.String()),
	)
	return nil
}

func (q *filesystemAreas) Exists(ctx context.Context, area models.QueueArea, name string) (bool, error) {
	if err := checkName("exists", name); err != nil {
		return false, err
	}
	exists, err := afero.Exists(q.fs, q.Resolve(area, name))
	if err != nil {
		return false, exceptions.ErrQueueStorage(err, "exists", name)
	}
	return exists, nil
}

func (q *filesystemAreas) Locate(ctx context.Context, name string) (models.QueueArea, error) {
	if err := checkName("locate", name); err != nil {
		return "", err
	}

	var found []string
	for _, area := range models.QueueAreas {
		if area == models.QueueAreaArchive {
			continue
		}
		exists, err := q.Exists(ctx, area, name)
		if err != nil {
			return "", err
		}
		if exists {
			found = append(found, area.String())
		}
	}

	archived, err := afero.Glob(q.fs, filepath.Join(q.roots[models.QueueAreaArchive], "*", name))
	if err != nil {
		return "", exceptions.ErrQueueStorage(err, "locate", name)
	}
	if len(archived) > 0 {
		found = append(found, models.QueueAreaArchive.String())
	}

	switch len(found) {
	case 0:
		return "", exceptions.ErrQueueStorage(os.ErrNotExist, "locate", name)
	case 1:
		return models.QueueArea(found[0]), nil
	default:
		return "", exceptions.ErrQueueDocumentInSeveralAreas(name, found)
	}
}

func (q *filesystemAreas) Verify(ctx context.Context) error {
	for _, area := range models.QueueAreas {
		root := q.roots[area]
		info, err := q.fs.Stat(root)
		if err != nil {
			return exceptions.ErrQueueAreaMissing(err, area.String(), root)
		}
		if !info.IsDir() {
			return exceptions.ErrQueueAreaMissing(fmt.Errorf("%s is not a directory", root), area.String(), root)
		}
		q.Log.Info("filesystemAreas.Verify area available",
			zap.String(constvars.LoggingQueueAreaKey, area.String()),
			zap.String(constvars.LoggingAreaLocationKey, root),
		)
	}
	return nil
}
