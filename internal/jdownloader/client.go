// Package jdownloader submits download links to a running JDownloader
// instance through its local Click'n'Load intake. The links land in the
// linkgrabber as a named package; queue management stays in JDownloader.
package jdownloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
)

const linkSource = "https://torbox.app"

// Client talks to the Click'n'Load endpoint, by default on 127.0.0.1:9666.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the intake at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Ping checks that JDownloader is listening.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/jdcheck.js", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jdownloader unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "jdownloader") {
		return fmt.Errorf("unexpected jdcheck response: %d", resp.StatusCode)
	}
	return nil
}

// AddLinks stages urls in the linkgrabber as one package named pkg.
func (c *Client) AddLinks(ctx context.Context, pkg string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	form := url.Values{}
	form.Set("urls", strings.Join(urls, "\n"))
	form.Set("package", pkg)
	form.Set("source", linkSource)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/flash/add",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jdownloader unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	answer := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(strings.ToLower(answer), "success") {
		return fmt.Errorf("jdownloader refused links: %d %q", resp.StatusCode, answer)
	}

	logging.Info("links staged in jdownloader",
		zap.String("package", pkg),
		zap.Int("links", len(urls)))
	return nil
}
