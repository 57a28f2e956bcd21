package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/pagelake/pagelake/internal/domain"
)

// ClientConfig holds configuration for the storage API client.
type ClientConfig struct {
	// Endpoint is the storage API URL. Chunk uploads POST to it; chunk
	// listings GET it with bucket/prefix query parameters.
	Endpoint string
	Bucket   string
	BasePath string
	Token    string
	Timeout  time.Duration
}

// Client talks to the remote object-storage API. It never retries; retry
// policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
}

// NewClient creates a storage API client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// UploadResponse is the decoded JSON reply for a successful chunk upload.
type UploadResponse map[string]any

// Upload ships chunk bytes as a single authenticated multipart request.
// Transport errors and non-2xx replies come back as TRANSPORT_ERROR.
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.WriteField("bucket", c.cfg.Bucket); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.WriteField("base_path", c.cfg.BasePath); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeTransport, "chunk upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewDomainError(
			domain.ErrCodeTransport,
			fmt.Sprintf("chunk upload returned status %d: %s", resp.StatusCode, string(excerpt)),
		)
	}

	var decoded UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeTransport, "failed to decode upload response", err)
	}

	return decoded, nil
}

type listingResponse struct {
	TotalFiles int `json:"total_files"`
}

// CountChunks returns how many chunk files the remote store already holds
// under the given key prefix.
func (c *Client) CountChunks(ctx context.Context, prefix string) (int, error) {
	listURL, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return 0, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	q := listURL.Query()
	q.Set("bucket", c.cfg.Bucket)
	q.Set("prefix", prefix)
	listURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create listing request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeTransport, "remote chunk listing failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, domain.NewDomainError(
			domain.ErrCodeTransport,
			fmt.Sprintf("remote chunk listing returned status %d", resp.StatusCode),
		)
	}

	var decoded listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeTransport, "failed to decode listing response", err)
	}

	return decoded.TotalFiles, nil
}
