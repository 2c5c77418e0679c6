package workflow

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/example/faceauth/internal/capture"
	"github.com/example/faceauth/internal/faceclient"
	"github.com/example/faceauth/internal/verdict"
)

// VerificationState is the sealed set of states the verification flow moves
// through:
//
//	Capturing → Processing → Result | Failed, then Finished
//
// Capture and submission are chained: a successful capture immediately
// enters processing.
type VerificationState interface {
	verificationState()
}

// Capturing awaits a live photo.
type Capturing struct{}

// Processing marks a verify request in flight for the captured image.
type Processing struct {
	Image capture.Image
}

// VerificationResult holds the interpreted verdict. A verdict exists if and
// only if the flow is in this state.
type VerificationResult struct {
	Image   capture.Image
	Verdict verdict.Verdict
}

// VerificationFailed is a recoverable error state; retry returns to
// capturing so the user can take a fresh photo, not just repeat the network
// call.
type VerificationFailed struct {
	Reason string
}

// VerificationFinished is terminal; the surrounding flow decides what
// happens next.
type VerificationFinished struct{}

func (Capturing) verificationState()            {}
func (Processing) verificationState()           {}
func (VerificationResult) verificationState()   {}
func (VerificationFailed) verificationState()   {}
func (VerificationFinished) verificationState() {}

// Verification drives one verification flow instance.
type Verification struct {
	provider capture.Provider
	client   faceclient.Client
	logger   *zap.Logger

	mu       sync.Mutex
	state    VerificationState
	inFlight bool
}

// NewVerification constructs a controller in the initial capturing state.
func NewVerification(provider capture.Provider, client faceclient.Client, logger *zap.Logger) *Verification {
	return &Verification{
		provider: provider,
		client:   client,
		logger:   logger.Named("verification"),
		state:    Capturing{},
	}
}

// State returns the current state variant.
func (v *Verification) State() VerificationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Capture obtains a live photo and, on success, immediately submits it for
// verification. Cancellation stays silently in capturing; provider faults
// and submission failures surface as a recoverable error. Only one
// capture-and-verify sequence may be outstanding.
func (v *Verification) Capture(ctx context.Context) {
	v.mu.Lock()
	if _, ok := v.state.(Capturing); !ok || v.inFlight {
		v.mu.Unlock()
		return
	}
	v.inFlight = true
	v.mu.Unlock()

	img, err := v.provider.Capture(ctx)

	v.mu.Lock()
	switch {
	case errors.Is(err, capture.ErrCancelled):
		v.inFlight = false
		v.mu.Unlock()
		v.logger.Debug("capture cancelled")
		return
	case err != nil:
		v.inFlight = false
		v.state = VerificationFailed{Reason: genericCaptureError}
		v.mu.Unlock()
		v.logger.Warn("capture failed", zap.Error(err))
		return
	}
	v.state = Processing{Image: img}
	v.mu.Unlock()

	result, err := v.client.Verify(ctx, img)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFlight = false
	if err != nil {
		v.logger.Warn("verification failed", zap.Error(err))
		v.state = VerificationFailed{Reason: failureReason(err, genericVerifyFailure)}
		return
	}
	vd := verdict.Interpret(result)
	v.logger.Info("verification result",
		zap.String("match", vd.MatchedLabel),
		zap.Float64("confidence", vd.Confidence),
		zap.Bool("verified", vd.Verified),
	)
	v.state = VerificationResult{Image: img, Verdict: vd}
}

// Retry resets fully to capturing from a result or failed state, clearing
// the image and verdict.
func (v *Verification) Retry() {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.state.(type) {
	case VerificationResult, VerificationFailed:
		v.state = Capturing{}
	}
}

// Done completes the flow from a result state.
func (v *Verification) Done() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.state.(VerificationResult); ok {
		v.state = VerificationFinished{}
	}
}
