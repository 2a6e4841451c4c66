package media

import (
	"path/filepath"
	"strings"
)

var allowedExtensions = map[Kind]map[string]struct{}{
	KindImage: {"png": {}, "jpg": {}, "jpeg": {}, "tiff": {}, "bmp": {}},
	KindVideo: {"mp4": {}, "avi": {}, "mov": {}, "mkv": {}},
}

// ValidateFilename checks that name carries an extension allowed for kind and
// returns the normalized (lowercase, dot-less) extension. It has no side
// effects; callers must not stage a file whose name fails validation.
func ValidateFilename(name string, kind Kind) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", Validationf("missing filename")
	}
	allowed, ok := allowedExtensions[kind]
	if !ok {
		return "", Validationf("unsupported media kind %q", kind)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(trimmed), "."))
	if ext == "" {
		return "", Validationf("invalid %s format for file: %s", kind, name)
	}
	if _, ok := allowed[ext]; !ok {
		return "", Validationf("invalid %s format for file: %s", kind, name)
	}
	return ext, nil
}
