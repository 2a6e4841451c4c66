package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mansio/internal/media"
	"mansio/internal/storage"
)

type fakeImageEnhancer struct {
	workDir string
	err     error
	calls   int
}

func (f *fakeImageEnhancer) EnhanceImage(_ context.Context, inputPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return copyToWorkDir(f.workDir, inputPath)
}

type fakeVideoEnhancer struct {
	workDir string
	err     error
	gotWM   media.Watermark
}

func (f *fakeVideoEnhancer) EnhanceVideo(_ context.Context, inputPath string, wm media.Watermark) (string, error) {
	f.gotWM = wm
	if f.err != nil {
		return "", f.err
	}
	return copyToWorkDir(f.workDir, inputPath)
}

type fakeStitcher struct {
	workDir  string
	err      error
	calls    int
	contents []string
}

func (f *fakeStitcher) Stitch(_ context.Context, orderedInputPaths []string, _ media.Watermark) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.contents = nil
	for _, p := range orderedInputPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		f.contents = append(f.contents, string(data))
	}
	out := filepath.Join(f.workDir, "stitched_output.mp4")
	if err := os.WriteFile(out, []byte(strings.Join(f.contents, "|")), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func copyToWorkDir(workDir, inputPath string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", err
	}
	out := filepath.Join(workDir, "out_"+filepath.Base(inputPath))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type fixture struct {
	pipeline *Pipeline
	store    *storage.Store
	images   *fakeImageEnhancer
	videos   *fakeVideoEnhancer
	stitcher *fakeStitcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	workDir := t.TempDir()
	images := &fakeImageEnhancer{workDir: workDir}
	videos := &fakeVideoEnhancer{workDir: workDir}
	stitcher := &fakeStitcher{workDir: workDir}
	wm := media.NewWatermark("bibhabasuiitkgp", "2025-03-09 05:59:54")
	return &fixture{
		pipeline: New(store, images, videos, stitcher, wm, zerolog.Nop()),
		store:    store,
		images:   images,
		videos:   videos,
		stitcher: stitcher,
	}
}

func (fx *fixture) stagedCount(t *testing.T, kind media.Kind) int {
	t.Helper()
	entries, err := os.ReadDir(fx.store.UploadDir(kind))
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	return len(entries)
}

func upload(name, content string) Upload {
	return Upload{Filename: name, Content: strings.NewReader(content)}
}

var imageURLPattern = regexp.MustCompile(`^/static/processed/images/enhanced_\d{8}_\d{6}_[0-9a-f-]{36}\.png$`)

func TestEnhanceImageSuccess(t *testing.T) {
	fx := newFixture(t)

	art, err := fx.pipeline.EnhanceImage(context.Background(), upload("photo.png", "pixels"))
	if err != nil {
		t.Fatalf("EnhanceImage returned error: %v", err)
	}
	if !imageURLPattern.MatchString(art.URL) {
		t.Fatalf("artifact URL %q does not match enhanced image pattern", art.URL)
	}
	if art.Watermark != nil {
		t.Fatalf("image artifact carries watermark: %+v", art.Watermark)
	}
	if got := fx.stagedCount(t, media.KindImage); got != 0 {
		t.Fatalf("%d staged files leaked after success", got)
	}
	published := filepath.Join(fx.store.ProcessedDir(media.KindImage), filepath.Base(art.URL))
	if data, err := os.ReadFile(published); err != nil || string(data) != "pixels" {
		t.Fatalf("published artifact wrong: %q, err=%v", data, err)
	}
}

func TestEnhanceImageRejectsBadExtensionWithoutStaging(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.pipeline.EnhanceImage(context.Background(), upload("notes.txt", "x"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if media.KindOf(err) != media.ErrValidation {
		t.Fatalf("error kind = %s, want validation", media.KindOf(err))
	}
	if fx.images.calls != 0 {
		t.Fatal("collaborator invoked for invalid upload")
	}
	if got := fx.stagedCount(t, media.KindImage); got != 0 {
		t.Fatalf("%d files staged for invalid upload", got)
	}
}

func TestEnhanceImageTransformFailureCleansUp(t *testing.T) {
	fx := newFixture(t)
	fx.images.err = errors.New("corrupt file")

	_, err := fx.pipeline.EnhanceImage(context.Background(), upload("photo.png", "x"))
	if err == nil {
		t.Fatal("expected transform error")
	}
	if media.KindOf(err) != media.ErrProcessing {
		t.Fatalf("error kind = %s, want processing", media.KindOf(err))
	}
	if got := fx.stagedCount(t, media.KindImage); got != 0 {
		t.Fatalf("%d staged files leaked after transform failure", got)
	}
}

func TestEnhanceImagePublishFailureKind(t *testing.T) {
	fx := newFixture(t)
	// Remove the processed dir so publish cannot land the artifact.
	if err := os.RemoveAll(fx.store.ProcessedDir(media.KindImage)); err != nil {
		t.Fatalf("remove processed dir: %v", err)
	}

	_, err := fx.pipeline.EnhanceImage(context.Background(), upload("photo.png", "x"))
	if err == nil {
		t.Fatal("expected publish error")
	}
	if media.KindOf(err) != media.ErrIO {
		t.Fatalf("error kind = %s, want io", media.KindOf(err))
	}
	if got := fx.stagedCount(t, media.KindImage); got != 0 {
		t.Fatalf("%d staged files leaked after publish failure", got)
	}
}

func TestEnhanceImageUniqueURLsForSameFilename(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.pipeline.EnhanceImage(ctx, upload("photo.png", "a"))
	if err != nil {
		t.Fatalf("first EnhanceImage: %v", err)
	}
	second, err := fx.pipeline.EnhanceImage(ctx, upload("photo.png", "b"))
	if err != nil {
		t.Fatalf("second EnhanceImage: %v", err)
	}
	if first.URL == second.URL {
		t.Fatalf("published URLs collide: %s", first.URL)
	}
}

func TestEnhanceVideoCarriesWatermark(t *testing.T) {
	fx := newFixture(t)

	art, err := fx.pipeline.EnhanceVideo(context.Background(), upload("clip.mp4", "frames"))
	if err != nil {
		t.Fatalf("EnhanceVideo returned error: %v", err)
	}
	if art.Watermark == nil {
		t.Fatal("video artifact missing watermark")
	}
	if art.Watermark.Brand != "Mansio" {
		t.Fatalf("watermark brand = %q", art.Watermark.Brand)
	}
	if fx.videos.gotWM.User != "bibhabasuiitkgp" {
		t.Fatalf("collaborator watermark user = %q", fx.videos.gotWM.User)
	}
	if !strings.HasPrefix(art.URL, "/static/processed/videos/enhanced_") || !strings.HasSuffix(art.URL, ".mp4") {
		t.Fatalf("unexpected video URL: %s", art.URL)
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d staged files leaked", got)
	}
}

func TestEnhanceVideoTransformFailureCleansUp(t *testing.T) {
	fx := newFixture(t)
	fx.videos.err = errors.New("bad codec")

	_, err := fx.pipeline.EnhanceVideo(context.Background(), upload("clip.mp4", "x"))
	if err == nil {
		t.Fatal("expected transform error")
	}
	if !strings.Contains(err.Error(), "bad codec") {
		t.Fatalf("collaborator message lost: %v", err)
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d staged files leaked after failure", got)
	}
}

func TestStitchOrdersByOriginalFilename(t *testing.T) {
	fx := newFixture(t)

	// Arrival order b, a, c; content equals the original name so the fake can
	// report which staged file it saw at each position.
	_, err := fx.pipeline.StitchVideos(context.Background(), []Upload{
		upload("b.mp4", "b.mp4"),
		upload("a.mp4", "a.mp4"),
		upload("c.mp4", "c.mp4"),
	})
	if err != nil {
		t.Fatalf("StitchVideos returned error: %v", err)
	}
	want := []string{"a.mp4", "b.mp4", "c.mp4"}
	if len(fx.stitcher.contents) != len(want) {
		t.Fatalf("stitcher saw %d inputs, want %d", len(fx.stitcher.contents), len(want))
	}
	for i, w := range want {
		if fx.stitcher.contents[i] != w {
			t.Fatalf("stitch order %v, want %v", fx.stitcher.contents, want)
		}
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d staged files leaked after stitch", got)
	}
}

func TestStitchStableOnDuplicateFilenames(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.pipeline.StitchVideos(context.Background(), []Upload{
		upload("same.mp4", "first"),
		upload("same.mp4", "second"),
	})
	if err != nil {
		t.Fatalf("StitchVideos returned error: %v", err)
	}
	if fx.stitcher.contents[0] != "first" || fx.stitcher.contents[1] != "second" {
		t.Fatalf("duplicate filenames reordered: %v", fx.stitcher.contents)
	}
}

func TestStitchRequiresTwoFiles(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.pipeline.StitchVideos(context.Background(), []Upload{upload("a.mp4", "x")})
	if err == nil {
		t.Fatal("expected validation error for single input")
	}
	if media.KindOf(err) != media.ErrValidation {
		t.Fatalf("error kind = %s, want validation", media.KindOf(err))
	}
	if fx.stitcher.calls != 0 {
		t.Fatal("stitch collaborator invoked for single input")
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d files staged for rejected stitch", got)
	}
}

func TestStitchRejectsAnyBadExtensionBeforeStaging(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.pipeline.StitchVideos(context.Background(), []Upload{
		upload("a.mp4", "x"),
		upload("b.txt", "y"),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if fx.stitcher.calls != 0 {
		t.Fatal("stitch collaborator invoked despite invalid input")
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d files staged despite invalid input", got)
	}
}

func TestStitchFailureReleasesAllInputs(t *testing.T) {
	fx := newFixture(t)
	fx.stitcher.err = errors.New("concat failed")

	_, err := fx.pipeline.StitchVideos(context.Background(), []Upload{
		upload("a.mp4", "x"),
		upload("b.mp4", "y"),
		upload("c.mp4", "z"),
	})
	if err == nil {
		t.Fatal("expected stitch error")
	}
	if got := fx.stagedCount(t, media.KindVideo); got != 0 {
		t.Fatalf("%d staged files leaked after stitch failure", got)
	}
}

func TestStitchOutputName(t *testing.T) {
	fx := newFixture(t)

	art, err := fx.pipeline.StitchVideos(context.Background(), []Upload{
		upload("a.mp4", "x"),
		upload("b.mp4", "y"),
	})
	if err != nil {
		t.Fatalf("StitchVideos returned error: %v", err)
	}
	pattern := regexp.MustCompile(`^/static/processed/videos/mansio_stitched_\d{8}_\d{6}_[0-9a-f]{8}\.mp4$`)
	if !pattern.MatchString(art.URL) {
		t.Fatalf("stitched URL %q does not match naming contract", art.URL)
	}
	if art.Watermark == nil || art.Watermark.Brand != "Mansio" {
		t.Fatalf("stitched artifact watermark wrong: %+v", art.Watermark)
	}
}
