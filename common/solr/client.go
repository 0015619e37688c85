package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Logger interface for client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client talks to the Solr JSON update API. The base URL points at the
// Solr root (e.g. http://localhost:8983/solr); the collection is chosen
// per call.
type Client struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

// NewClient creates a new Solr client
func NewClient(baseURL string, timeout time.Duration, logger Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Add writes a batch of documents to the collection
func (c *Client) Add(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	body, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}

	c.logger.Debug("solr add", "collection", collection, "documents", len(docs))
	return c.post(ctx, collection, body)
}

// Commit makes previously added documents visible to searches
func (c *Client) Commit(ctx context.Context, collection string) error {
	c.logger.Debug("solr commit", "collection", collection)
	return c.post(ctx, collection, []byte(`{"commit":{}}`))
}

func (c *Client) post(ctx context.Context, collection string, body []byte) error {
	url := fmt.Sprintf("%s/%s/update", c.baseURL, collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("solr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("solr returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
