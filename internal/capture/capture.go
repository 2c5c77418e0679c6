// Package capture defines the contract for obtaining a single still image.
// The provider owns any OS-level permission negotiation; the workflow
// controllers only see the three outcomes: an image, a cancellation, or a
// provider fault.
package capture

import (
	"context"
	"errors"
)

// Image is an opaque encoded-image handle: a base64 data URI usable both as
// a transmission payload and a renderable preview. The controllers never
// inspect its contents.
type Image string

// ErrCancelled reports that the user declined or dismissed the capture. It
// is an expected outcome, not a fault; callers return silently to the
// pre-capture state.
var ErrCancelled = errors.New("capture cancelled")

// Provider produces one still image per call. Implementations must resolve
// ErrCancelled (not a generic error) when the user declines, so callers can
// distinguish "try again silently" from "show an error".
type Provider interface {
	Capture(ctx context.Context) (Image, error)
}
