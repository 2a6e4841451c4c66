package processing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mansio/internal/media"
)

// FFmpeg runs the transforms by invoking the ffmpeg binary. Outputs land in
// WorkDir under unique names; the pipeline publishes them from there.
type FFmpeg struct {
	Binary  string
	WorkDir string
}

// NewFFmpeg builds an FFmpeg collaborator writing into workDir.
func NewFFmpeg(workDir string) *FFmpeg {
	return &FFmpeg{Binary: "ffmpeg", WorkDir: workDir}
}

func (f *FFmpeg) EnhanceImage(ctx context.Context, inputPath string) (string, error) {
	out := f.outputPath(filepath.Ext(inputPath))
	args := []string{
		"-y", "-i", inputPath,
		"-vf", "eq=brightness=0.06:contrast=1.1",
		out,
	}
	if err := f.run(ctx, args, out); err != nil {
		return "", err
	}
	return out, nil
}

func (f *FFmpeg) EnhanceVideo(ctx context.Context, inputPath string, wm media.Watermark) (string, error) {
	out := f.outputPath(filepath.Ext(inputPath))
	args := []string{
		"-y", "-i", inputPath,
		"-vf", "eq=brightness=0.04," + drawtext(wm),
		"-c:a", "copy",
		out,
	}
	if err := f.run(ctx, args, out); err != nil {
		return "", err
	}
	return out, nil
}

func (f *FFmpeg) Stitch(ctx context.Context, orderedInputPaths []string, wm media.Watermark) (string, error) {
	list, err := f.writeConcatList(orderedInputPaths)
	if err != nil {
		return "", media.ProcessingErr("failed to prepare stitch input list", err)
	}
	defer os.Remove(list)

	out := f.outputPath(".mp4")
	args := []string{
		"-y", "-f", "concat", "-safe", "0", "-i", list,
		"-vf", drawtext(wm),
		"-c:v", "libx264", "-c:a", "aac",
		out,
	}
	if err := f.run(ctx, args, out); err != nil {
		return "", err
	}
	return out, nil
}

// run executes ffmpeg with args, capturing stderr so a collaborator failure
// surfaces with ffmpeg's own diagnostic preserved.
func (f *FFmpeg) run(ctx context.Context, args []string, out string) error {
	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		if msg := lastLine(stderr.String()); msg != "" {
			return media.ProcessingErr(msg, err)
		}
		return media.ProcessingErr("ffmpeg failed", err)
	}
	return nil
}

func (f *FFmpeg) outputPath(ext string) string {
	return filepath.Join(f.WorkDir, "ffmpeg_"+media.NewToken(time.Now())+strings.ToLower(ext))
}

// writeConcatList materializes the concat demuxer input file, preserving the
// caller's ordering exactly.
func (f *FFmpeg) writeConcatList(paths []string) (string, error) {
	var b strings.Builder
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	list := filepath.Join(f.WorkDir, "concat_"+media.NewToken(time.Now())+".txt")
	if err := os.WriteFile(list, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return list, nil
}

func drawtext(wm media.Watermark) string {
	text := fmt.Sprintf("%s | %s | %s", wm.Brand, wm.User, wm.Timestamp)
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`).Replace(text)
	return "drawtext=text='" + escaped + "':x=w-tw-20:y=h-th-20:fontsize=24:fontcolor=white@0.8:box=1:boxcolor=black@0.4"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
