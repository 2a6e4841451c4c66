package storage

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"mansio/internal/media"
)

// SweepResult contains the outcome of a stale staging sweep.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a path with its removal error.
type SweepError struct {
	Path  string
	Error error
}

// SweepStale removes staged files older than maxAge from both upload
// directories. Requests release their own staging; this sweep reclaims
// leftovers from crashed or killed processes. Removal errors are logged and
// collected, never escalated.
func (s *Store) SweepStale(maxAge time.Duration, logger zerolog.Logger) SweepResult {
	result := SweepResult{}
	cutoff := time.Now().Add(-maxAge)

	for _, kind := range []media.Kind{media.KindImage, media.KindVideo} {
		dir := s.UploadDir(kind)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
			}
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
				logger.Warn().Err(err).Str("path", path).Msg("failed to remove stale staged file")
				continue
			}
			result.Removed = append(result.Removed, path)
			logger.Info().Str("path", path).Dur("age", time.Since(info.ModTime())).Msg("removed stale staged file")
		}
	}
	return result
}
