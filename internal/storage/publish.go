package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"mansio/internal/media"
)

// PublicPrefix is the URL path under which the processed tree is served.
const PublicPrefix = "/static"

// Publish moves a transform's output into the kind's processed directory under
// publicName and returns the externally addressable URL path. On failure the
// source file is left in place so the output can still be recovered manually.
func (s *Store) Publish(ctx context.Context, src, publicName string, kind media.Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", media.IOErr("request cancelled before publish", err)
	}
	dst := filepath.Join(s.ProcessedDir(kind), publicName)
	if err := os.Rename(src, dst); err != nil {
		// Rename fails across filesystems; fall back to copy then remove.
		if copyErr := copyFile(src, dst); copyErr != nil {
			return "", media.IOErr("failed to publish artifact", copyErr)
		}
		os.Remove(src)
	}
	return PublicPrefix + "/processed/" + kindDirs[kind] + "/" + publicName, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
