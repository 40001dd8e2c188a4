package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"myopia-screening-service/config"

	"github.com/sirupsen/logrus"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fundus.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func newTestClient(baseURL string, timeout time.Duration) *InferenceClient {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	return NewInferenceClient(config.MLConfig{BaseURL: baseURL, Timeout: timeout}, log)
}

func TestPredictSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file form field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prediction":"MYOPIA","confidence":85.5,"probability_myopia":0.855,"probability_normal":0.145}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, err := client.Predict(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "MYOPIA" {
		t.Errorf("prediction = %q, want MYOPIA", result.Prediction)
	}
	if result.Confidence != 85.5 {
		t.Errorf("confidence = %v, want 85.5", result.Confidence)
	}
	if result.ProbabilityMyopia != 0.855 {
		t.Errorf("probability_myopia = %v, want 0.855", result.ProbabilityMyopia)
	}
}

func TestPredictNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), writeTestImage(t))

	var inferenceErr *InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected *InferenceError, got %v", err)
	}
	if inferenceErr.Timeout {
		t.Error("a 500 response must not be flagged as timeout")
	}
}

func TestPredictMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prediction":`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), writeTestImage(t))

	var inferenceErr *InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected *InferenceError, got %v", err)
	}
}

func TestPredictUnknownLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prediction":"GLAUCOMA","confidence":90}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), writeTestImage(t))
	if err == nil {
		t.Fatal("expected error for unknown prediction label")
	}
}

func TestPredictTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50*time.Millisecond)
	_, err := client.Predict(context.Background(), writeTestImage(t))

	var inferenceErr *InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected *InferenceError, got %v", err)
	}
	if !inferenceErr.Timeout {
		t.Error("client timeout must be flagged as timeout")
	}
}
