package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const fetchTimeout = 30 * time.Second

// HTTPImageFetcher downloads an examination image from its blob store
// URL into a scoped temporary file. The returned cleanup func removes
// the file; callers defer it immediately so the temp copy is released
// on every exit path, including inference failures.
type HTTPImageFetcher struct {
	httpClient *http.Client
	log        *logrus.Logger
}

func NewHTTPImageFetcher(log *logrus.Logger) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		log:        log,
	}
}

func (f *HTTPImageFetcher) FetchToTemp(ctx context.Context, imageURL string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", nil, &UpstreamError{Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &UpstreamError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	tmp, err := os.CreateTemp("", "exam-image-*.jpg")
	if err != nil {
		return "", nil, &UpstreamError{Err: fmt.Errorf("create temp file: %w", err)}
	}

	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			f.log.Warnf("Failed to remove temp image %s: %v", tmp.Name(), err)
		}
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, &UpstreamError{Err: fmt.Errorf("download image: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, &UpstreamError{Err: fmt.Errorf("flush temp file: %w", err)}
	}

	return tmp.Name(), cleanup, nil
}
