package delivery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange marks a malformed or out-of-bounds Range header. Handlers
// must answer 400 and serve no body; falling back to full content would
// surprise a client that explicitly asked for a slice.
var ErrInvalidRange = errors.New("invalid range")

// ByteRange is an inclusive [Start, End] interval within a resource.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses an HTTP Range header value against the known total length.
// A missing header or a non-bytes unit yields (nil, nil): the caller serves
// the full content. Multi-range requests are rejected; only a single range is
// supported.
func ParseRange(spec string, total int64) (*ByteRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	const prefix = "bytes="
	if !strings.HasPrefix(spec, prefix) {
		return nil, nil
	}
	spec = strings.TrimPrefix(spec, prefix)

	if strings.Contains(spec, ",") {
		return nil, fmt.Errorf("%w: multiple ranges are not supported", ErrInvalidRange)
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, fmt.Errorf("%w: missing '-' separator", ErrInvalidRange)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" && endStr == "" {
		return nil, fmt.Errorf("%w: empty range", ErrInvalidRange)
	}

	// Suffix form: bytes=-N means the last N bytes.
	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad suffix length %q", ErrInvalidRange, endStr)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: suffix length must be positive", ErrInvalidRange)
		}
		start := total - n
		if start < 0 {
			start = 0
		}
		return &ByteRange{Start: start, End: total - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start %q", ErrInvalidRange, startStr)
	}

	end := total - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end %q", ErrInvalidRange, endStr)
		}
	}

	if start < 0 || start > end || end >= total {
		return nil, fmt.Errorf("%w: bytes %d-%d outside 0-%d", ErrInvalidRange, start, end, total-1)
	}

	return &ByteRange{Start: start, End: end}, nil
}
