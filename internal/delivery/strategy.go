package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Strategy selects how identical byte content is framed and paced on the wire.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyChunked   Strategy = "chunked"
	StrategyPaginated Strategy = "paginated"
	StrategyBuffered  Strategy = "buffered"
)

// Clamp bounds and defaults per strategy.
const (
	MinChunkSize     = 64 << 10
	MaxChunkSize     = 2 << 20
	DefaultChunkSize = 512 << 10

	MinPageSize     = 64 << 10
	MaxPageSize     = 1 << 20
	DefaultPageSize = 256 << 10

	MinBufferSize     = 32 << 10
	MaxBufferSize     = 512 << 10
	DefaultBufferSize = 128 << 10

	// Pause inserted between pages by the paginated strategy so slow clients
	// with small playback buffers are not overrun.
	pageDelay = 10 * time.Millisecond
)

// DeliveryPlan is the resolved shape of one response: the strategy, the
// effective chunk/buffer size after clamping, and the byte range actually
// served (possibly truncated from the request to the strategy's maximum).
type DeliveryPlan struct {
	Strategy  Strategy
	ChunkSize int64
	Range     ByteRange
	Total     int64
	Partial   bool // respond 206 with Content-Range
	Truncated bool // served less than requested; client re-requests the rest
}

// Status returns the HTTP status the plan calls for.
func (p DeliveryPlan) Status() int {
	if p.Partial {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

func clamp(v, min, max, def int64) int64 {
	if v <= 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampMax caps an explicit value without a lower bound. Chunked and
// paginated clients may legitimately ask for chunks smaller than the default
// floor; refusing would serve more bytes than they asked for.
func clampMax(v, max, def int64) int64 {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// Plan resolves a strategy, an optional parsed range and a raw size parameter
// into a DeliveryPlan. requested == nil means the whole object; the chunked
// strategy still truncates oversized ranges to its clamped chunk size rather
// than growing the chunk.
func Plan(strategy Strategy, requested *ByteRange, total int64, sizeParam int64) DeliveryPlan {
	plan := DeliveryPlan{Strategy: strategy, Total: total}

	switch strategy {
	case StrategyChunked:
		plan.ChunkSize = clampMax(sizeParam, MaxChunkSize, DefaultChunkSize)
	case StrategyPaginated:
		plan.ChunkSize = clampMax(sizeParam, MaxPageSize, DefaultPageSize)
	case StrategyBuffered:
		plan.ChunkSize = clamp(sizeParam, MinBufferSize, MaxBufferSize, DefaultBufferSize)
	default:
		plan.ChunkSize = DefaultChunkSize
	}

	if requested != nil {
		plan.Partial = true
		plan.Range = *requested
	} else {
		plan.Range = ByteRange{Start: 0, End: total - 1}
	}

	// Chunked serves at most one chunk per request and the client asks for
	// the rest. Paginated serves the whole range, paced one page at a time.
	if strategy == StrategyChunked && plan.Range.Length() > plan.ChunkSize {
		plan.Range.End = plan.Range.Start + plan.ChunkSize - 1
		plan.Truncated = true
		plan.Partial = true
	}

	return plan
}

// Write streams the plan's byte range from src to w. src must be positioned
// at the start of the object; windowing is handled here. The loop stops as
// soon as ctx is cancelled or the client stops accepting writes, so a backend
// stream is never drained for a client that has gone away.
func Write(ctx context.Context, w io.Writer, src io.ReadSeeker, plan DeliveryPlan) error {
	switch plan.Strategy {
	case StrategyDirect:
		return writeDirect(ctx, w, src, plan)
	case StrategyChunked:
		return writeLoop(ctx, w, src, plan, true, 0)
	case StrategyPaginated:
		return writeLoop(ctx, w, src, plan, true, pageDelay)
	case StrategyBuffered:
		return writeBuffered(ctx, w, src, plan)
	default:
		return fmt.Errorf("unknown delivery strategy %q", plan.Strategy)
	}
}

func writeDirect(ctx context.Context, w io.Writer, src io.ReadSeeker, plan DeliveryPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stream := NewPartialStream(src, plan.Range.Start, plan.Range.Length())
	if _, err := io.Copy(w, stream); err != nil {
		return fmt.Errorf("failed to stream object: %w", err)
	}
	return nil
}

func writeLoop(ctx context.Context, w io.Writer, src io.ReadSeeker, plan DeliveryPlan, flush bool, delay time.Duration) error {
	stream := NewPartialStream(src, plan.Range.Start, plan.Range.Length())
	buf := make([]byte, plan.ChunkSize)
	flusher, _ := w.(http.Flusher)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("client write failed: %w", werr)
			}
			if flush && flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read chunk: %w", err)
		}

		if delay > 0 && stream.Position() < stream.Length() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

func writeBuffered(ctx context.Context, w io.Writer, src io.ReadSeeker, plan DeliveryPlan) error {
	stream := NewBufferedPartialStream(src, plan.Range.Start, plan.Range.Length(), int(plan.ChunkSize))
	buf := make([]byte, 32<<10)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("client write failed: %w", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read buffered chunk: %w", err)
		}
	}
}
