package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/store"
)

// Uploader stores photo bytes and returns a publicly readable reference URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// HTTPUploader implements Uploader against a drive-style blob service.
type HTTPUploader struct {
	baseURL string
	token   string
	folder  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPUploader builds an uploader from configuration.
func NewHTTPUploader(cfg config.BlobConfig, logger *zap.Logger) *HTTPUploader {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPUploader{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		folder:  cfg.Folder,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type uploadResponse struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// Upload posts the file and returns its public link. The service grants
// anyone-with-the-link read access on upload.
func (u *HTTPUploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	const op = "blob.upload"

	endpoint := fmt.Sprintf("%s/files?folder=%s&name=%s",
		u.baseURL, url.QueryEscape(u.folder), url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", store.NewTerminal(op, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", store.NewTransient(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", store.NewTransient(op, fmt.Errorf("remote status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", store.NewTerminal(op, fmt.Errorf("remote status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", store.NewTerminal(op, fmt.Errorf("decode response: %w", err))
	}
	if out.Link == "" {
		return "", store.NewTerminal(op, fmt.Errorf("blob service returned no link for %q", name))
	}

	u.logger.Info("photo uploaded", zap.String("name", name), zap.String("blob_id", out.ID))
	return out.Link, nil
}
