package workflow

import (
	"context"
	"sync"

	"github.com/example/faceauth/internal/capture"
	"github.com/example/faceauth/internal/faceclient"
)

// stubProvider replays scripted capture outcomes in order.
type stubProvider struct {
	mu       sync.Mutex
	outcomes []captureOutcome
	calls    int
}

type captureOutcome struct {
	image capture.Image
	err   error
}

func (s *stubProvider) Capture(ctx context.Context) (capture.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.outcomes) {
		return "", capture.ErrCancelled
	}
	return s.outcomes[i].image, s.outcomes[i].err
}

func (s *stubProvider) captureCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubClient records enroll/verify calls and returns scripted outcomes.
// When block is set, Enroll signals started and waits until released.
type stubClient struct {
	mu          sync.Mutex
	enrollErr   error
	enrollCalls int
	enrollNames []string

	verifyResult *faceclient.ClassificationResult
	verifyErr    error
	verifyCalls  int

	started chan struct{}
	block   chan struct{}
}

func (s *stubClient) Enroll(ctx context.Context, name string, image capture.Image) error {
	s.mu.Lock()
	s.enrollCalls++
	s.enrollNames = append(s.enrollNames, name)
	started, block := s.started, s.block
	err := s.enrollErr
	s.mu.Unlock()

	if started != nil {
		close(started)
		s.mu.Lock()
		s.started = nil
		s.mu.Unlock()
	}
	if block != nil {
		<-block
	}
	return err
}

func (s *stubClient) Verify(ctx context.Context, image capture.Image) (*faceclient.ClassificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCalls++
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.verifyResult, nil
}

func (s *stubClient) enrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollCalls
}

func (s *stubClient) verifies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyCalls
}
