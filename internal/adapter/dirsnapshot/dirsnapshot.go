// Package dirsnapshot records the sizes of the entries of a download directory.
package dirsnapshot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/user/course-harvester/internal/entity"
)

// Source snapshots one directory. It only reads; the browser is the only writer.
type Source struct {
	fs  afero.Fs
	dir string
}

// New creates a Source over dir on fs.
func New(fs afero.Fs, dir string) *Source {
	return &Source{fs: fs, dir: dir}
}

// NewOS creates a Source over dir on the host filesystem.
func NewOS(dir string) *Source {
	return New(afero.NewOsFs(), dir)
}

// Prepare creates the directory if it does not exist yet.
func (s *Source) Prepare() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	return nil
}

// Dir returns the watched directory.
func (s *Source) Dir() string {
	return s.dir
}

// Snapshot maps every top-level entry to its current size.
func (s *Source) Snapshot(ctx context.Context) (entity.DownloadSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	snap := make(entity.DownloadSnapshot, len(infos))
	for _, info := range infos {
		snap[filepath.Join(s.dir, info.Name())] = info.Size()
	}
	return snap, nil
}
