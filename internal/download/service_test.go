package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

func TestNewService(t *testing.T) {
	service := NewService("/tmp/downloads")

	if service.outputDir != "/tmp/downloads" {
		t.Errorf("Expected outputDir to be '/tmp/downloads', got '%s'", service.outputDir)
	}
	if service.attempts != MaxAttempts {
		t.Errorf("Expected %d attempts, got %d", MaxAttempts, service.attempts)
	}
}

func TestWithAttempts(t *testing.T) {
	service := NewService("/tmp").WithAttempts(5)
	if service.attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", service.attempts)
	}

	// Values below 1 keep the current budget
	service.WithAttempts(0)
	if service.attempts != 5 {
		t.Errorf("Expected attempts to stay at 5, got %d", service.attempts)
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
	}

	for _, test := range tests {
		result := backoffDelay(test.attempt)
		if result != test.expected {
			t.Errorf("backoffDelay(%d) = %v, expected %v", test.attempt, result, test.expected)
		}
	}
}

func TestRunWithRetry_SucceedsAfterFailures(t *testing.T) {
	service := NewService("/tmp")
	service.attempts = 3

	calls := 0
	service.runner = func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient failure")
		}
		return &ytdlp.Result{}, nil
	}

	// Shrink the backoff window for the test run
	done := make(chan error, 1)
	go func() {
		_, err := service.runWithRetry(context.Background(), nil, "https://example.com/v")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected success after retries, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Retry loop did not finish in time")
	}

	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestRunWithRetry_ExhaustsAttempts(t *testing.T) {
	service := NewService("/tmp")
	service.attempts = 2

	calls := 0
	service.runner = func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
		calls++
		return nil, errors.New("permanent failure")
	}

	_, err := service.runWithRetry(context.Background(), nil, "https://example.com/v")
	if err == nil {
		t.Fatal("Expected error after exhausting attempts, got nil")
	}
	if calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
}

func TestRunWithRetry_HonorsCancellation(t *testing.T) {
	service := NewService("/tmp")

	ctx, cancel := context.WithCancel(context.Background())
	service.runner = func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
		cancel()
		return nil, errors.New("failed attempt")
	}

	_, err := service.runWithRetry(ctx, nil, "https://example.com/v")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtractFilePath_NoResult(t *testing.T) {
	if _, err := extractFilePath(nil); err == nil {
		t.Error("Expected error for nil result, got nil")
	}
}

func TestVideoJob_Label(t *testing.T) {
	job := &VideoJob{URL: "https://example.com/v"}
	if job.Label() != VideoJobLabel {
		t.Errorf("Expected label '%s', got '%s'", VideoJobLabel, job.Label())
	}
}

func TestAudioJob_Label(t *testing.T) {
	job := &AudioJob{URL: "https://example.com/v"}
	if job.Label() != AudioJobLabel {
		t.Errorf("Expected label '%s', got '%s'", AudioJobLabel, job.Label())
	}
}
