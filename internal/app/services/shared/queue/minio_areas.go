package queue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const minioNoSuchKey = "NoSuchKey"

type minioAreas struct {
	client   *minio.Client
	bucket   string
	prefixes map[models.QueueArea]string
	now      func() time.Time
	Log      *zap.Logger
}

// NewMinioAreas keeps every area under its own key prefix in one bucket.
func NewMinioAreas(client *minio.Client, queueCfg config.Queue, logger *zap.Logger) contracts.QueueAreas {
	prefixes := areaRoots(queueCfg)
	for area, prefix := range prefixes {
		prefixes[area] = strings.Trim(prefix, "/")
	}
	return &minioAreas{
		client:   client,
		bucket:   queueCfg.Bucket,
		prefixes: prefixes,
		now:      time.Now,
		Log:      logger,
	}
}

func (q *minioAreas) ListPending(ctx context.Context) ([]string, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefix := q.prefixes[models.QueueAreaPending] + "/"
	names := make([]string, 0)
	for object := range q.client.ListObjects(listCtx, q.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			q.Log.Error("minioAreas.ListPending error listing pending prefix",
				zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(ctx)),
				zap.String(constvars.LoggingAreaLocationKey, prefix),
				zap.Error(object.Err),
			)
			return nil, exceptions.ErrQueueStorage(object.Err, "list", prefix)
		}
		// keys ending in "/" are sub-prefixes
		name := strings.TrimPrefix(object.Key, prefix)
		if strings.HasSuffix(object.Key, "/") || !listable(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (q *minioAreas) Resolve(area models.QueueArea, name string) string {
	return joinKey(q.prefixes[area], name)
}

func (q *minioAreas) ArchiveLocation(name string, day time.Time) string {
	return path.Join(q.prefixes[models.QueueAreaArchive], archivePartition(day), name)
}

func (q *minioAreas) Move(ctx context.Context, name string, from, to models.QueueArea) error {
	if to == models.QueueAreaArchive {
		return q.Archive(ctx, name, q.now())
	}
	if err := checkMove(name, from, to); err != nil {
		return err
	}
	return q.relocate(ctx, name, from, to, q.Resolve(from, name), q.Resolve(to, name))
}

func (q *minioAreas) Archive(ctx context.Context, name string, day time.Time) error {
	if err := checkMove(name, models.QueueAreaPending, models.QueueAreaArchive); err != nil {
		return err
	}
	return q.relocate(ctx, name, models.QueueAreaPending, models.QueueAreaArchive, q.Resolve(models.QueueAreaPending, name), q.ArchiveLocation(name, day))
}

// relocate copies source to target and removes source. When source cannot be removed the
// copy is removed again so the document stays in exactly one area.
func (q *minioAreas) relocate(ctx context.Context, name string, from, to models.QueueArea, source, target string) error {
	requestID := utils.RequestIDFrom(ctx)

	if _, err := q.client.StatObject(ctx, q.bucket, source, minio.StatObjectOptions{}); err != nil {
		return exceptions.ErrQueueStorage(err, "move", name)
	}
	exists, err := q.objectExists(ctx, target)
	if err != nil {
		return exceptions.ErrQueueStorage(err, "move", name)
	}
	if exists {
		return exceptions.ErrQueueStorage(fmt.Errorf("%s already exists", target), "move", name)
	}

	_, err = q.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: q.bucket, Object: target},
		minio.CopySrcOptions{Bucket: q.bucket, Object: source},
	)
	if err != nil {
		q.Log.Error("minioAreas.Move error copying document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.Error(err),
		)
		return exceptions.ErrQueueStorage(err, "move", name)
	}

	if err := q.client.RemoveObject(ctx, q.bucket, source, minio.RemoveObjectOptions{}); err != nil {
		q.Log.Error("minioAreas.Move error removing source, rolling back copy",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFormNameKey, name),
			zap.Error(err),
		)
		if rollbackErr := q.client.RemoveObject(ctx, q.bucket, target, minio.RemoveObjectOptions{}); rollbackErr != nil {
			q.Log.Error("minioAreas.Move error rolling back copy",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingFormNameKey, name),
				zap.Error(rollbackErr),
			)
		}
		return exceptions.ErrQueueStorage(err, "move", name)
	}

	q.Log.Info("minioAreas.Move succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFormNameKey, name),
		zap.String(constvars.LoggingQueueAreaFromKey, from.String()),
		zap.String(constvars.LoggingQueueAreaToKey, to.String()),
	)
	return nil
}

func (q *minioAreas) Read(ctx context.Context, area models.QueueArea, name string) ([]byte, error) {
	if err := checkName("read", name); err != nil {
		return nil, err
	}
	object, err := q.client.GetObject(ctx, q.bucket, q.Resolve(area, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, exceptions.ErrQueueStorage(err, "read", name)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		return nil, exceptions.ErrQueueStorage(err, "read", name)
	}
	return content, nil
}

// Rewrite relies on PutObject replacing an object as a whole.
func (q *minioAreas) Rewrite(ctx context.Context, area models.QueueArea, name string, content []byte) error {
	if err := checkName("rewrite", name); err != nil {
		return err
	}
	key := q.Resolve(area, name)
	exists, err := q.objectExists(ctx, key)
	if err != nil {
		return exceptions.ErrQueueStorage(err, "rewrite", name)
	}
	if !exists {
		return exceptions.ErrQueueStorage(os.ErrNotExist, "rewrite", name)
	}

	_, err = q.client.PutObject(ctx, q.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: constvars.MIMEApplicationXML,
	})
	if err != nil {
		return exceptions.ErrQueueStorage(err, "rewrite", name)
	}
	return nil
}

func (q *minioAreas) Exists(ctx context.Context, area models.QueueArea, name string) (bool, error) {
	if err := checkName("exists", name); err != nil {
		return false, err
	}
	exists, err := q.objectExists(ctx, q.Resolve(area, name))
	if err != nil {
		return false, exceptions.ErrQueueStorage(err, "exists", name)
	}
	return exists, nil
}

func (q *minioAreas) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := q.client.StatObject(ctx, q.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == minioNoSuchKey {
		return false, nil
	}
	return false, err
}

func (q *minioAreas) Locate(ctx context.Context, name string) (models.QueueArea, error) {
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

	archived, err := q.archived(ctx, name)
	if err != nil {
		return "", err
	}
	if archived {
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

// archived lists the day partitions of the archive prefix and stats name in each one, so
// the cost grows with the number of days rather than the number of archived documents.
func (q *minioAreas) archived(ctx context.Context, name string) (bool, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	archivePrefix := q.prefixes[models.QueueAreaArchive] + "/"
	for object := range q.client.ListObjects(listCtx, q.bucket, minio.ListObjectsOptions{Prefix: archivePrefix}) {
		if object.Err != nil {
			return false, exceptions.ErrQueueStorage(object.Err, "locate", name)
		}
		if !strings.HasSuffix(object.Key, "/") {
			continue
		}
		exists, err := q.objectExists(ctx, object.Key+name)
		if err != nil {
			return false, exceptions.ErrQueueStorage(err, "locate", name)
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

// Verify checks the bucket; prefixes exist implicitly in object storage.
func (q *minioAreas) Verify(ctx context.Context) error {
	exists, err := q.client.BucketExists(ctx, q.bucket)
	if err != nil {
		return exceptions.ErrQueueAreaMissing(err, "bucket", q.bucket)
	}
	if !exists {
		return exceptions.ErrQueueAreaMissing(fmt.Errorf("bucket %s does not exist", q.bucket), "bucket", q.bucket)
	}
	q.Log.Info("minioAreas.Verify bucket available",
		zap.String(constvars.LoggingAreaLocationKey, q.bucket),
	)
	return nil
}
