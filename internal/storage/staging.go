// Package storage persists media onto the local filesystem: uploaded bytes are
// staged under a temporary uploads tree and finished artifacts are published
// under a processed tree served at /static.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mansio/internal/media"
)

var kindDirs = map[media.Kind]string{
	media.KindImage: "images",
	media.KindVideo: "videos",
}

// StagedFile is a temporary on-disk copy of one uploaded byte stream. The
// pipeline owns its lifetime and must Release it on every exit path.
type StagedFile struct {
	OriginalName string
	Path         string
	Kind         media.Kind
}

// Store roots the uploads and processed trees at a single base directory.
type Store struct {
	root string
}

// NewStore initializes a Store rooted at root and creates the upload and
// processed directories for every media kind.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root path is required")
	}
	for _, kind := range []media.Kind{media.KindImage, media.KindVideo} {
		for _, tree := range []string{"uploads", "processed"} {
			dir := filepath.Join(root, tree, kindDirs[kind])
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage: ensure %s: %w", dir, err)
			}
		}
	}
	return &Store{root: root}, nil
}

// Root returns the configured base directory.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// UploadDir returns the staging directory for kind.
func (s *Store) UploadDir(kind media.Kind) string {
	return filepath.Join(s.root, "uploads", kindDirs[kind])
}

// ProcessedDir returns the publish directory for kind.
func (s *Store) ProcessedDir(kind media.Kind) string {
	return filepath.Join(s.root, "processed", kindDirs[kind])
}

// Stage writes the full upload stream to a collision-proof path under the
// kind's staging directory in a single pass. A partially written file is
// removed before the error is returned, so no half-written file stays visible.
func (s *Store) Stage(ctx context.Context, r io.Reader, originalName string, kind media.Kind) (StagedFile, error) {
	if err := ctx.Err(); err != nil {
		return StagedFile{}, media.IOErr("request cancelled before staging", err)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	name := "input_" + media.NewToken(time.Now())
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.UploadDir(kind), name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StagedFile{}, media.IOErr("failed to create staged file", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return StagedFile{}, media.IOErr("failed to write staged file", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return StagedFile{}, media.IOErr("failed to flush staged file", err)
	}
	return StagedFile{OriginalName: originalName, Path: path, Kind: kind}, nil
}

// Release deletes the staged file if present. Deleting an already-absent file
// is not an error, so the call is safe to repeat.
func (s *Store) Release(f StagedFile) error {
	if f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: release %s: %w", f.Path, err)
	}
	return nil
}
