package delivery

import (
	"fmt"
	"net/http"
)

// Headers builds the response headers for a plan. All four strategies share
// this so their framing differences stay isolated from the common range and
// caching semantics. Always advertises Accept-Ranges so clients can probe
// range support on any endpoint.
func Headers(plan DeliveryPlan, contentType, displayName string, attachment bool) http.Header {
	h := http.Header{}
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Content-Length", fmt.Sprintf("%d", plan.Range.Length()))

	if plan.Partial {
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", plan.Range.Start, plan.Range.End, plan.Total))
	}

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	if displayName != "" {
		h.Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, displayName))
	}

	return h
}
