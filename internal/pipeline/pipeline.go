// Package pipeline coordinates one media request end to end: validate the
// upload, stage it, hand it to the transform collaborator, publish the result,
// and release every staged file no matter how the request ends.
package pipeline

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"mansio/internal/media"
	"mansio/internal/middleware"
	"mansio/internal/processing"
	"mansio/internal/storage"
)

// Upload is one raw byte stream with its client-declared filename. It lives
// only for the duration of the request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Artifact is a published result. Watermark is set for video-derived outputs
// only.
type Artifact struct {
	URL       string
	Kind      media.Kind
	Token     string
	Watermark *media.Watermark
}

// Pipeline is built once at startup and shared by all requests; it holds no
// per-request state.
type Pipeline struct {
	store    *storage.Store
	images   processing.ImageEnhancer
	videos   processing.VideoEnhancer
	stitcher processing.Stitcher
	wm       media.Watermark
	logger   zerolog.Logger
	now      func() time.Time
}

// New wires a Pipeline from its collaborators.
func New(store *storage.Store, images processing.ImageEnhancer, videos processing.VideoEnhancer, stitcher processing.Stitcher, wm media.Watermark, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		images:   images,
		videos:   videos,
		stitcher: stitcher,
		wm:       wm,
		logger:   logger,
		now:      time.Now,
	}
}

// EnhanceImage runs the single-image flow and returns the published artifact.
func (p *Pipeline) EnhanceImage(ctx context.Context, up Upload) (Artifact, error) {
	ext, err := media.ValidateFilename(up.Filename, media.KindImage)
	if err != nil {
		return Artifact{}, p.fail(ctx, "validate", up.Filename, err)
	}

	staged, err := p.store.Stage(ctx, up.Content, up.Filename, media.KindImage)
	if err != nil {
		return Artifact{}, p.fail(ctx, "stage", up.Filename, err)
	}
	defer p.release(staged)

	out, err := p.images.EnhanceImage(ctx, staged.Path)
	if err != nil {
		return Artifact{}, p.fail(ctx, "transform", up.Filename, err)
	}

	token := media.NewToken(p.now())
	url, err := p.store.Publish(ctx, out, "enhanced_"+token+"."+ext, media.KindImage)
	if err != nil {
		return Artifact{}, p.fail(ctx, "publish", up.Filename, err)
	}
	return Artifact{URL: url, Kind: media.KindImage, Token: token}, nil
}

// EnhanceVideo runs the single-video flow; the published artifact carries the
// watermark metadata.
func (p *Pipeline) EnhanceVideo(ctx context.Context, up Upload) (Artifact, error) {
	ext, err := media.ValidateFilename(up.Filename, media.KindVideo)
	if err != nil {
		return Artifact{}, p.fail(ctx, "validate", up.Filename, err)
	}

	staged, err := p.store.Stage(ctx, up.Content, up.Filename, media.KindVideo)
	if err != nil {
		return Artifact{}, p.fail(ctx, "stage", up.Filename, err)
	}
	defer p.release(staged)

	out, err := p.videos.EnhanceVideo(ctx, staged.Path, p.wm)
	if err != nil {
		return Artifact{}, p.fail(ctx, "transform", up.Filename, err)
	}

	token := media.NewToken(p.now())
	url, err := p.store.Publish(ctx, out, "enhanced_"+token+"."+ext, media.KindVideo)
	if err != nil {
		return Artifact{}, p.fail(ctx, "publish", up.Filename, err)
	}
	wm := p.wm
	return Artifact{URL: url, Kind: media.KindVideo, Token: token, Watermark: &wm}, nil
}

// StitchVideos merges at least two uploads into one MP4. Inputs are ordered by
// their original filename, lexicographic and stable: callers name files so
// that string order equals playback order. Arrival order and staged-path names
// never influence the ordering.
func (p *Pipeline) StitchVideos(ctx context.Context, ups []Upload) (Artifact, error) {
	if len(ups) < 2 {
		return Artifact{}, p.fail(ctx, "validate", "", media.Validationf("at least 2 videos are required for stitching"))
	}
	// Validate every filename before staging anything.
	for _, up := range ups {
		if _, err := media.ValidateFilename(up.Filename, media.KindVideo); err != nil {
			return Artifact{}, p.fail(ctx, "validate", up.Filename, err)
		}
	}

	staged := make([]storage.StagedFile, 0, len(ups))
	defer func() {
		for _, f := range staged {
			p.release(f)
		}
	}()
	for _, up := range ups {
		f, err := p.store.Stage(ctx, up.Content, up.Filename, media.KindVideo)
		if err != nil {
			return Artifact{}, p.fail(ctx, "stage", up.Filename, err)
		}
		staged = append(staged, f)
	}

	ordered := make([]storage.StagedFile, len(staged))
	copy(ordered, staged)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OriginalName < ordered[j].OriginalName
	})
	paths := make([]string, len(ordered))
	for i, f := range ordered {
		paths[i] = f.Path
	}

	out, err := p.stitcher.Stitch(ctx, paths, p.wm)
	if err != nil {
		return Artifact{}, p.fail(ctx, "transform", "", err)
	}

	token := media.NewShortToken(p.now())
	url, err := p.store.Publish(ctx, out, "mansio_stitched_"+token+".mp4", media.KindVideo)
	if err != nil {
		return Artifact{}, p.fail(ctx, "publish", "", err)
	}
	wm := p.wm
	return Artifact{URL: url, Kind: media.KindVideo, Token: token, Watermark: &wm}, nil
}

// release deletes a staged file. Failures are logged and swallowed so cleanup
// never masks the primary error.
func (p *Pipeline) release(f storage.StagedFile) {
	if err := p.store.Release(f); err != nil {
		p.logger.Warn().Err(err).Str("path", f.Path).Msg("failed to release staged file")
	}
}

// fail logs a request failure with its stage and correlation id, then returns
// the error unchanged for the HTTP boundary to map.
func (p *Pipeline) fail(ctx context.Context, stage, filename string, err error) error {
	evt := p.logger.Error().Err(err).
		Str("request_id", middleware.RequestIDFromContext(ctx)).
		Str("stage", stage).
		Str("error_kind", string(media.KindOf(err)))
	if filename != "" {
		evt = evt.Str("filename", filename)
	}
	evt.Msg("media request failed")
	return err
}
