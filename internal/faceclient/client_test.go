package faceclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/faceauth/internal/capture"
)

const testImage = capture.Image("data:image/jpeg;base64,aGVsbG8=")

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, 2*time.Second, zap.NewNop()), server
}

func TestEnrollSendsWirePayload(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/enroll" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"message":"User 'Alice' enrolled successfully."}`))
	})

	if err := client.Enroll(context.Background(), "Alice", testImage); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if got["name"] != "Alice" {
		t.Fatalf("unexpected name field: %q", got["name"])
	}
	if got["image"] != string(testImage) {
		t.Fatalf("unexpected image field: %q", got["image"])
	}
}

func TestEnrollExtractsServiceError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No face detected"}`))
	})

	err := client.Enroll(context.Background(), "Alice", testImage)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if reqErr.Reason != "No face detected" {
		t.Fatalf("unexpected reason: %q", reqErr.Reason)
	}
	if reqErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", reqErr.StatusCode)
	}
}

func TestEnrollGenericReasonWithoutErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	err := client.Enroll(context.Background(), "Alice", testImage)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if reqErr.Reason != "request failed with status 502" {
		t.Fatalf("unexpected reason: %q", reqErr.Reason)
	}
}

func TestVerifyParsesFullResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"match": "Alice",
			"confidence": 0.92,
			"cosine_similarity": 0.87,
			"threshold": 0.55,
			"verified": true,
			"message": "Best match: Alice with similarity 0.8700"
		}`))
	})

	result, err := client.Verify(context.Background(), testImage)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Match != "Alice" || !result.Verified {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Confidence != 0.92 || result.CosineSimilarity != 0.87 || result.Threshold != 0.55 {
		t.Fatalf("unexpected scores: %+v", result)
	}
}

func TestVerifyDefaultsMissingFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"verified": false}`))
	})

	result, err := client.Verify(context.Background(), testImage)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Match != UnknownMatch {
		t.Fatalf("expected default match, got %q", result.Match)
	}
	if result.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold %v, got %v", DefaultThreshold, result.Threshold)
	}
	if result.Confidence != 0 || result.CosineSimilarity != 0 {
		t.Fatalf("expected zeroed scores, got %+v", result)
	}
	if result.Verified {
		t.Fatal("expected not verified")
	}
}

func TestVerifyExtractsServiceError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No users enrolled yet","match":"Unknown","verified":false}`))
	})

	_, err := client.Verify(context.Background(), testImage)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if reqErr.Reason != "No users enrolled yet" {
		t.Fatalf("unexpected reason: %q", reqErr.Reason)
	}
}

func TestVerifyTransportFailure(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	if _, err := client.Verify(context.Background(), testImage); err == nil {
		t.Fatal("expected transport error")
	}
}
