package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ClientConfig configures the file-conversion engine client.
type ClientConfig struct {
	EngineURL string
	Timeout   time.Duration
}

// Client converts a report to PDF through the external conversion engine.
type Client struct {
	cfg    ClientConfig
	client *http.Client
	md     goldmark.Markdown
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		// GFM for the statement and sensitivity tables.
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

const documentStyle = `body { font-family: Georgia, serif; margin: 40px; color: #1a1a1a; }
h1 { border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
h2 { margin-top: 28px; border-bottom: 1px solid #ccc; padding-bottom: 4px; }
table { border-collapse: collapse; width: 100%; margin: 12px 0; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; font-size: 13px; }
th { background: #f2f2f2; }`

// RenderHTML converts report markdown into a complete standalone HTML
// document the conversion engine can print.
func (c *Client) RenderHTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return fmt.Sprintf(
		"<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n%s</body>\n</html>\n",
		title, documentStyle, body.String()), nil
}

type convertRequest struct {
	HTML     string `json:"html"`
	Filename string `json:"filename"`
}

// Convert posts the HTML document to the conversion engine and returns the
// PDF bytes.
func (c *Client) Convert(ctx context.Context, html, filename string) ([]byte, error) {
	if c.cfg.EngineURL == "" {
		return nil, fmt.Errorf("file conversion engine not configured")
	}

	payload, err := json.Marshal(convertRequest{HTML: html, Filename: filename})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EngineURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("conversion engine returned status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
