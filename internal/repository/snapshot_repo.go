package repository

import (
	"context"

	"github.com/user/course-harvester/internal/entity"
)

// SnapshotSource captures the current state of the download directory.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (entity.DownloadSnapshot, error)
}
