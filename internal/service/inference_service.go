package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"myopia-screening-service/config"

	"github.com/sirupsen/logrus"
)

// InferenceResult is the parsed response of the myopia model service.
// Confidence is on the service's 0-100 scale; normalization to [0,1]
// happens when the prediction record is built.
type InferenceResult struct {
	Prediction        string  `json:"prediction"`
	Confidence        float64 `json:"confidence"`
	ProbabilityMyopia float64 `json:"probability_myopia"`
	ProbabilityNormal float64 `json:"probability_normal"`
}

// InferenceClient talks to the external myopia model service. It is
// constructed once at bootstrap and injected wherever predictions run.
type InferenceClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

func NewInferenceClient(cfg config.MLConfig, log *logrus.Logger) *InferenceClient {
	return &InferenceClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Predict sends the image at imagePath to the model service as a
// multipart upload and parses the classification response. A single
// attempt is made; every failure mode comes back as *InferenceError.
func (c *InferenceClient) Predict(ctx context.Context, imagePath string) (*InferenceResult, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("open image: %w", err)}
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("build multipart form: %w", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("copy image into form: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("finalize multipart form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &body)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timeout := isTimeout(err)
		c.log.Warnf("ML service request failed (timeout=%v): %v", timeout, err)
		return nil, &InferenceError{Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnf("ML service returned status %d", resp.StatusCode)
		return nil, &InferenceError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var result InferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &InferenceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if result.Prediction != "" &&
		result.Prediction != "MYOPIA" && result.Prediction != "NORMAL" {
		return nil, &InferenceError{Err: fmt.Errorf("unknown prediction label %q", result.Prediction)}
	}
	if result.Prediction == "" {
		return nil, &InferenceError{Err: errors.New("response missing prediction label")}
	}

	return &result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
