package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/faceauth/internal/capture"
	"github.com/example/faceauth/internal/faceclient"
)

// EnrollmentState is the sealed set of states the enrollment flow moves
// through:
//
//	NameEntry → PhotoCapture → Review → Submitting → Succeeded | Failed
//
// Each variant holds exactly the data valid in that state.
type EnrollmentState interface {
	enrollmentState()
}

// NameEntry collects the identity's name.
type NameEntry struct {
	Name string
	// NameRequired is raised when Continue was requested with a blank name.
	// It clears on the next edit.
	NameRequired bool
}

// PhotoCapture awaits a reference photo. The name survives round trips
// through capture and review.
type PhotoCapture struct {
	Name string
}

// Review shows the collected request for confirmation before submission.
type Review struct {
	Name  string
	Image capture.Image
}

// Submitting marks an enrollment request in flight. Re-entering submit while
// here is a no-op.
type Submitting struct {
	Name  string
	Image capture.Image
}

// EnrollmentSucceeded is terminal; name and image are echoed for the
// confirmation display.
type EnrollmentSucceeded struct {
	Name  string
	Image capture.Image
}

// EnrollmentFailed is a recoverable error state. Stage says where the flow
// resumes on retry; Image is retained only for submit-stage failures.
type EnrollmentFailed struct {
	Stage  ErrorStage
	Name   string
	Image  capture.Image
	Reason string
}

func (NameEntry) enrollmentState()           {}
func (PhotoCapture) enrollmentState()        {}
func (Review) enrollmentState()              {}
func (Submitting) enrollmentState()          {}
func (EnrollmentSucceeded) enrollmentState() {}
func (EnrollmentFailed) enrollmentState()    {}

// Enrollment drives one enrollment flow instance. All methods are safe for
// concurrent use, but the flow models a single logical thread of control:
// only one capture or submission is ever outstanding.
type Enrollment struct {
	provider capture.Provider
	client   faceclient.Client
	logger   *zap.Logger

	mu       sync.Mutex
	state    EnrollmentState
	inFlight bool
}

// NewEnrollment constructs a controller in the initial name-entry state.
func NewEnrollment(provider capture.Provider, client faceclient.Client, logger *zap.Logger) *Enrollment {
	return &Enrollment{
		provider: provider,
		client:   client,
		logger:   logger.Named("enrollment"),
		state:    NameEntry{},
	}
}

// State returns the current state variant.
func (e *Enrollment) State() EnrollmentState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetName records the typed name. Validation is deferred to Continue, so
// keystrokes never surface errors.
func (e *Enrollment) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.state.(NameEntry); ok {
		s.Name = name
		s.NameRequired = false
		e.state = s
	}
}

// Continue advances from name entry to photo capture. A blank (or
// whitespace-only) name keeps the flow in name entry with the validation
// signal raised.
func (e *Enrollment) Continue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.state.(NameEntry)
	if !ok {
		return
	}
	if strings.TrimSpace(s.Name) == "" {
		s.NameRequired = true
		e.state = s
		return
	}
	e.state = PhotoCapture{Name: s.Name}
}

// Capture invokes the provider and advances to review on success.
// Cancellation stays silently in photo capture; a provider fault surfaces as
// a recoverable error. Only one capture may be outstanding.
func (e *Enrollment) Capture(ctx context.Context) {
	e.mu.Lock()
	s, ok := e.state.(PhotoCapture)
	if !ok || e.inFlight {
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.mu.Unlock()

	img, err := e.provider.Capture(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	switch {
	case errors.Is(err, capture.ErrCancelled):
		e.logger.Debug("capture cancelled", zap.String("name", s.Name))
	case err != nil:
		e.logger.Warn("capture failed", zap.Error(err))
		e.state = EnrollmentFailed{Stage: StageCapture, Name: s.Name, Reason: genericCaptureError}
	default:
		e.state = Review{Name: s.Name, Image: img}
	}
}

// Retake returns from review to photo capture, keeping the name.
func (e *Enrollment) Retake() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.state.(Review); ok {
		e.state = PhotoCapture{Name: s.Name}
	}
}

// Back steps one phase backwards: review returns to name entry and a
// submit-stage failure returns to review. The captured data needed by the
// destination state is retained.
func (e *Enrollment) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch s := e.state.(type) {
	case Review:
		e.state = NameEntry{Name: s.Name}
	case EnrollmentFailed:
		if s.Stage == StageSubmit {
			e.state = Review{Name: s.Name, Image: s.Image}
		}
	}
}

// Submit sends the reviewed request to the classification service. Invoking
// it while a submission is already in flight is a no-op.
func (e *Enrollment) Submit(ctx context.Context) {
	e.mu.Lock()
	s, ok := e.state.(Review)
	if !ok || e.inFlight {
		e.mu.Unlock()
		return
	}
	e.state = Submitting{Name: s.Name, Image: s.Image}
	e.inFlight = true
	e.mu.Unlock()

	e.finishSubmit(ctx, s.Name, s.Image)
}

// Retry recovers from a failed state: capture failures return to photo
// capture, submit failures re-enter submission with the retained request.
func (e *Enrollment) Retry(ctx context.Context) {
	e.mu.Lock()
	s, ok := e.state.(EnrollmentFailed)
	if !ok || e.inFlight {
		e.mu.Unlock()
		return
	}
	if s.Stage == StageCapture {
		e.state = PhotoCapture{Name: s.Name}
		e.mu.Unlock()
		return
	}
	e.state = Submitting{Name: s.Name, Image: s.Image}
	e.inFlight = true
	e.mu.Unlock()

	e.finishSubmit(ctx, s.Name, s.Image)
}

func (e *Enrollment) finishSubmit(ctx context.Context, name string, image capture.Image) {
	err := e.client.Enroll(ctx, name, image)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if err != nil {
		e.logger.Warn("enrollment submission failed", zap.String("name", name), zap.Error(err))
		e.state = EnrollmentFailed{
			Stage:  StageSubmit,
			Name:   name,
			Image:  image,
			Reason: failureReason(err, genericEnrollFailure),
		}
		return
	}
	e.logger.Info("enrollment succeeded", zap.String("name", name))
	e.state = EnrollmentSucceeded{Name: name, Image: image}
}
