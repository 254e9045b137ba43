package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Source produces the raw bytes of a content document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, Format, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}

// FileSource reads a document from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, "", fmt.Errorf("read content file: %w", err)
	}
	return data, FormatFromName(s.Path), nil
}

// maxDocumentBytes bounds how much of a remote response is read.
const maxDocumentBytes = 8 << 20

// HTTPSource fetches a document over HTTP(S).
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

func NewHTTPSource(rawURL string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPSource{
		url:        rawURL,
		httpClient: httpClient,
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("content source non-200: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read content body: %w", err)
	}

	format := FormatJSON
	if u, err := url.Parse(s.url); err == nil {
		format = FormatFromName(u.Path)
	}
	return data, format, nil
}
