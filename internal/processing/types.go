// Package processing defines the contracts for the external transform
// collaborators. The pipeline treats them as black boxes: one attempt, a
// result path on success, a processing error otherwise.
package processing

import (
	"context"

	"mansio/internal/media"
)

// ImageEnhancer performs brightness correction on a single image,
// format-preserving.
type ImageEnhancer interface {
	EnhanceImage(ctx context.Context, inputPath string) (outputPath string, err error)
}

// VideoEnhancer performs brightness correction and composites the watermark,
// format-preserving.
type VideoEnhancer interface {
	EnhanceVideo(ctx context.Context, inputPath string, wm media.Watermark) (outputPath string, err error)
}

// Stitcher concatenates videos in the given order with the watermark applied.
// Always emits MP4.
type Stitcher interface {
	Stitch(ctx context.Context, orderedInputPaths []string, wm media.Watermark) (outputPath string, err error)
}
