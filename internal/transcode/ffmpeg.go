package transcode

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"
)

const (
	// Transcodes are CPU and memory heavy; beyond this many at once the
	// encoder starves the delivery path.
	defaultMaxConcurrent = 2
	defaultTimeout       = 30 * time.Minute
)

// FFmpegTranscoder runs the ffmpeg binary as a subprocess. Input is spooled
// to a temp file first because ffmpeg needs a seekable input for mp4, and the
// output container is always mp4.
type FFmpegTranscoder struct {
	binary  string
	tempDir string
	timeout time.Duration
	slots   chan struct{}
}

// NewFFmpegTranscoder configures the subprocess runner. Zero values pick the
// defaults (binary "ffmpeg", OS temp dir, 30m timeout, 2 slots).
func NewFFmpegTranscoder(binary, tempDir string, timeout time.Duration, maxConcurrent int) *FFmpegTranscoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &FFmpegTranscoder{
		binary:  binary,
		tempDir: tempDir,
		timeout: timeout,
		slots:   make(chan struct{}, maxConcurrent),
	}
}

// spoolResult wraps the output file so closing the result removes it.
type spoolResult struct {
	*os.File
}

func (s *spoolResult) Close() error {
	err := s.File.Close()
	if rmErr := os.Remove(s.File.Name()); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

func (t *FFmpegTranscoder) Compress(ctx context.Context, input io.Reader, p Profile) (*Result, error) {
	// Queue on the concurrency limit; give up if the request dies first.
	select {
	case t.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrTranscodeFailed, ctx.Err())
	}
	defer func() { <-t.slots }()

	inFile, err := os.CreateTemp(t.tempDir, "transcode-in-*.video")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input spool: %v", ErrTranscodeFailed, err)
	}
	defer func() {
		inFile.Close()
		os.Remove(inFile.Name())
	}()

	if _, err := io.Copy(inFile, input); err != nil {
		return nil, fmt.Errorf("%w: failed to spool input: %v", ErrTranscodeFailed, err)
	}
	if err := inFile.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to flush input spool: %v", ErrTranscodeFailed, err)
	}

	outFile, err := os.CreateTemp(t.tempDir, "transcode-out-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output spool: %v", ErrTranscodeFailed, err)
	}
	outPath := outFile.Name()
	outFile.Close()

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", inFile.Name(),
		"-c:v", "libx264",
		"-b:v", p.VideoBitrate,
		"-crf", fmt.Sprintf("%d", p.CRF),
		"-vf", fmt.Sprintf("scale=-2:%d", p.TargetHeight),
		"-c:a", "aac",
		"-b:a", p.AudioBitrate,
		"-movflags", "+faststart",
		outPath,
	}

	log.Printf("[FFMPEG] starting transcode profile=%s height=%d", p.Name, p.TargetHeight)
	cmd := exec.CommandContext(runCtx, t.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: timed out after %s", ErrTranscodeFailed, t.timeout)
		}
		log.Printf("[FFMPEG] transcode failed: %v (%s)", err, truncateOutput(out))
		return nil, fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: failed to open output: %v", ErrTranscodeFailed, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: failed to stat output: %v", ErrTranscodeFailed, err)
	}

	log.Printf("[FFMPEG] transcode finished profile=%s size=%d", p.Name, info.Size())
	return &Result{
		Output:      &spoolResult{File: f},
		SizeBytes:   info.Size(),
		ContentType: "video/mp4",
		NameSuffix:  "_compressed",
	}, nil
}

func truncateOutput(out []byte) string {
	const max = 512
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(out)
}
