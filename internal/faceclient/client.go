// Package faceclient is the client for the face classification service. It
// encapsulates the JSON wire contract for enrolling reference images and
// verifying live captures, and extracts service-reported reasons from error
// responses.
package faceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/faceauth/internal/capture"
)

// DefaultThreshold is substituted when a verify response omits the
// threshold field, so the value renders as a real number instead of a gap.
const DefaultThreshold = 0.55

// UnknownMatch is substituted when a verify response omits the match label.
const UnknownMatch = "Unknown"

// ClassificationResult is the service's raw verdict on one verification
// attempt. Missing wire fields are already normalised: numerics to zero,
// threshold to DefaultThreshold, match to UnknownMatch.
type ClassificationResult struct {
	Match            string
	Confidence       float64
	CosineSimilarity float64
	Threshold        float64
	Verified         bool
	Message          string
}

// Client is the classification contract consumed by the workflow
// controllers. Both operations are single-shot; each call builds a fresh
// request and nothing is cached client-side.
type Client interface {
	Enroll(ctx context.Context, name string, image capture.Image) error
	Verify(ctx context.Context, image capture.Image) (*ClassificationResult, error)
}

// RequestError carries the reason the service reported for a failed call,
// extracted from its structured error payload when one was present.
type RequestError struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("classification service returned status %d: %s", e.StatusCode, e.Reason)
}

// HTTPClient talks to the classification service over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient builds a client for the service at baseURL. The timeout
// bounds each request end to end.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("faceclient"),
	}
}

type enrollRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type verifyRequest struct {
	Image string `json:"image"`
}

// verifyResponse mirrors the wire shape with pointers so absent fields can
// be told apart from zero values before normalisation.
type verifyResponse struct {
	Match            *string  `json:"match"`
	Confidence       *float64 `json:"confidence"`
	CosineSimilarity *float64 `json:"cosine_similarity"`
	Threshold        *float64 `json:"threshold"`
	Verified         *bool    `json:"verified"`
	Message          string   `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Enroll registers a name with a reference image. Any 2xx response is an
// acknowledgment; the body is not interpreted further.
func (c *HTTPClient) Enroll(ctx context.Context, name string, image capture.Image) error {
	resp, err := c.post(ctx, "/enroll", enrollRequest{Name: name, Image: string(image)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.failure(resp)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Verify submits a live image and returns the service's classification of
// the best-matching enrolled identity.
func (c *HTTPClient) Verify(ctx context.Context, image capture.Image) (*ClassificationResult, error) {
	resp, err := c.post(ctx, "/verify", verifyRequest{Image: string(image)})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, c.failure(resp)
	}

	var wire verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return normalise(wire), nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("send request to classification service: %w", err)
	}
	return resp, nil
}

// failure turns a non-2xx response into a RequestError, preferring the
// service's structured {error} payload over a generic description.
func (c *HTTPClient) failure(resp *http.Response) error {
	reason := fmt.Sprintf("request failed with status %d", resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var payload errorResponse
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Error != "" {
			reason = payload.Error
		}
	}
	c.logger.Warn("service reported failure",
		zap.Int("status", resp.StatusCode),
		zap.String("reason", reason),
	)
	return &RequestError{StatusCode: resp.StatusCode, Reason: reason}
}

func normalise(wire verifyResponse) *ClassificationResult {
	result := &ClassificationResult{
		Match:     UnknownMatch,
		Threshold: DefaultThreshold,
		Message:   wire.Message,
	}
	if wire.Match != nil && *wire.Match != "" {
		result.Match = *wire.Match
	}
	if wire.Confidence != nil {
		result.Confidence = *wire.Confidence
	}
	if wire.CosineSimilarity != nil {
		result.CosineSimilarity = *wire.CosineSimilarity
	}
	if wire.Threshold != nil {
		result.Threshold = *wire.Threshold
	}
	if wire.Verified != nil {
		result.Verified = *wire.Verified
	}
	return result
}
