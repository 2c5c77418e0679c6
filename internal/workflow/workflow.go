// Package workflow implements the enrollment and verification state
// machines. Each controller owns one flow instance: it sequences user input,
// photo capture, submission to the classification service, and result
// interpretation, exposing a sealed state variant per phase so a front end
// only ever renders legal combinations.
package workflow

import (
	"errors"

	"github.com/example/faceauth/internal/faceclient"
)

// ErrorStage identifies which operation a recoverable error interrupted, and
// with it where a retry resumes.
type ErrorStage string

const (
	// StageCapture errors resume at the capture step.
	StageCapture ErrorStage = "capture"
	// StageSubmit errors resume by re-submitting the retained request.
	StageSubmit ErrorStage = "submit"
)

// Generic fallbacks when the service did not report a reason.
const (
	genericEnrollFailure = "Failed to enroll user"
	genericVerifyFailure = "Failed to verify user"
	genericCaptureError  = "Failed to capture photo"
)

// failureReason prefers the service-reported reason over the generic one.
func failureReason(err error, generic string) string {
	var reqErr *faceclient.RequestError
	if errors.As(err, &reqErr) && reqErr.Reason != "" {
		return reqErr.Reason
	}
	return generic
}
