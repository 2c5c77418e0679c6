package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/faceauth/internal/handlers"
	"github.com/example/faceauth/internal/repository"
	"github.com/example/faceauth/internal/usecase"
)

// slowService blocks status requests until released, so the test can hold a
// request open across the shutdown signal.
type slowService struct {
	started chan struct{}
	release chan struct{}
}

func (s *slowService) EnrollFace(ctx context.Context, name, imageURI string) (string, error) {
	return "", nil
}

func (s *slowService) VerifyFace(ctx context.Context, imageURI string) (*usecase.VerifyOutcome, error) {
	return &usecase.VerifyOutcome{}, nil
}

func (s *slowService) GetResult(ctx context.Context, requestID string) (*repository.VerificationLog, error) {
	return &repository.VerificationLog{}, nil
}

func (s *slowService) Status(ctx context.Context) (*usecase.StatusSummary, error) {
	select {
	case <-s.started:
	default:
		close(s.started)
	}
	<-s.release
	return &usecase.StatusSummary{Threshold: 0.55}, nil
}

func (s *slowService) Threshold() float64 { return 0.55 }

func TestServerGracefulShutdown(t *testing.T) {
	logger := zap.NewNop()

	svc := &slowService{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	defer func() {
		select {
		case <-svc.release:
		default:
			close(svc.release)
		}
	}()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers.RegisterRoutes(router, svc, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	server := &http.Server{Handler: router}

	signalCh := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- serveHTTPServerWithOptions(server, 2*time.Second, logger, listener, signalCh)
	}()

	addr := listener.Addr().String()
	waitForServer(t, addr)

	client := &http.Client{Timeout: 2 * time.Second}
	respCh := make(chan *http.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := client.Get("http://" + addr + "/status")
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not start in time")
	}

	signalCh <- syscall.SIGTERM

	time.Sleep(50 * time.Millisecond)
	close(svc.release)

	select {
	case resp := <-respCh:
		t.Cleanup(func() { resp.Body.Close() })
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("unexpected status: %d body: %s", resp.StatusCode, string(body))
		}
		var parsed map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if parsed["status"] != "running" {
			t.Fatalf("in-flight request returned wrong body: %v", parsed)
		}
	case err := <-errCh:
		t.Fatalf("request failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server did not shutdown cleanly: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not exit after shutdown")
	}
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server %s did not become ready", addr)
}
