package contracts

import (
	"context"
	"mobileforms-service/internal/app/models"
	"time"
)

// QueueAreas is the directory-as-queue abstraction over the four form areas.
type QueueAreas interface {
	// ListPending returns a snapshot of the pending area taken at call time.
	ListPending(ctx context.Context) ([]string, error)
	// Resolve composes the location of name inside area. It never touches storage.
	Resolve(area models.QueueArea, name string) string
	// ArchiveLocation is where name is archived when processed on day.
	ArchiveLocation(name string, day time.Time) string
	// Move relocates name between areas. On failure the source is left intact.
	Move(ctx context.Context, name string, from, to models.QueueArea) error
	// Archive moves name from pending into the archive partition of day.
	Archive(ctx context.Context, name string, day time.Time) error
	Read(ctx context.Context, area models.QueueArea, name string) ([]byte, error)
	// Rewrite atomically replaces the content of name inside area.
	Rewrite(ctx context.Context, area models.QueueArea, name string, content []byte) error
	Exists(ctx context.Context, area models.QueueArea, name string) (bool, error)
	// Locate returns the single area holding name.
	Locate(ctx context.Context, name string) (models.QueueArea, error)
	// Verify checks every configured area is reachable.
	Verify(ctx context.Context) error
}
