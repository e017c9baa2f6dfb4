package transcode

import (
	"context"
	"errors"
	"io"
)

// ErrTranscodeFailed marks a transcoder error or timeout. It always aborts
// the upload; storing the original instead would silently break the size and
// quality contract the caller asked for.
var ErrTranscodeFailed = errors.New("transcode failed")

// Result is the output of one compression run. Output streams the compressed
// bytes; Close must be called on every path because it releases the spool
// files behind the stream. The object key gains NameSuffix before the
// extension so compressed uploads are recognizable.
type Result struct {
	Output      io.ReadCloser
	SizeBytes   int64
	ContentType string
	NameSuffix  string
}

// Transcoder is the capability boundary to the external video encoder. The
// codec work happens outside this service; implementations only move bytes in
// and out and enforce the timeout and concurrency limits.
type Transcoder interface {
	Compress(ctx context.Context, input io.Reader, p Profile) (*Result, error)
}
