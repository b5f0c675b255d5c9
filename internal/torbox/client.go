package torbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/retry"
)

const (
	apiPrefix = "/v1/api"
	listLimit = 1000
)

// ErrLinkUnavailable means the API answered but produced no usable download
// link for the requested file.
var ErrLinkUnavailable = errors.New("download link unavailable")

// Client calls the TorBox API with retry on transient failures.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	retryConfig retry.Config
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	RetryConfig retry.Config
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.torbox.app"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retryConfig: cfg.RetryConfig,
	}
}

// listResponse is the envelope of GET /v1/api/torrents/mylist.
type listResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Detail  string    `json:"detail"`
	Data    []Torrent `json:"data"`
}

// linkResponse is the envelope of GET /v1/api/torrents/requestdl.
type linkResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Data    string `json:"data"`
}

// ListTorrents fetches the account's torrent list. File entries with no name
// or a negative size are dropped at this boundary.
func (c *Client) ListTorrents(ctx context.Context) ([]Torrent, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(listLimit))
	q.Set("offset", "0")
	q.Set("bypass_cache", "true")
	endpoint := c.baseURL + apiPrefix + "/torrents/mylist?" + q.Encode()

	torrents, err := retry.DoWithResult(ctx, c.retryConfig, func() ([]Torrent, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode >= 500 {
				return nil, retry.Retryable(fmt.Errorf("torbox returned %d", resp.StatusCode))
			}
			return nil, fmt.Errorf("torbox returned %d", resp.StatusCode)
		}

		var lr listResponse
		if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
			return nil, fmt.Errorf("decode torrent list: %w", err)
		}
		if !lr.Success {
			return nil, fmt.Errorf("torbox refused list request: %s", apiFailure(lr.Error, lr.Detail))
		}
		return lr.Data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}

	for i := range torrents {
		torrents[i].Files = c.validFiles(torrents[i])
	}
	logging.Debug("fetched torrent list", zap.Int("torrents", len(torrents)))
	return torrents, nil
}

// RequestDownloadLink resolves a time-limited download URL for one file.
// ErrLinkUnavailable is returned when the API answers but cannot produce a
// link right now.
func (c *Client) RequestDownloadLink(ctx context.Context, torrentID, fileID int64) (string, error) {
	q := url.Values{}
	q.Set("token", c.apiKey)
	q.Set("torrent_id", strconv.FormatInt(torrentID, 10))
	q.Set("file_id", strconv.FormatInt(fileID, 10))
	endpoint := c.baseURL + apiPrefix + "/torrents/requestdl?" + q.Encode()

	link, err := retry.DoWithResult(ctx, c.retryConfig, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return "", err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return "", retry.Retryable(fmt.Errorf("torbox returned %d", resp.StatusCode))
		}

		var lr linkResponse
		if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
			return "", fmt.Errorf("decode link response: %w", err)
		}
		if resp.StatusCode != http.StatusOK || !lr.Success || lr.Data == "" {
			reason := apiFailure(lr.Error, lr.Detail)
			logging.Debug("no download link",
				zap.Int64("torrent_id", torrentID),
				zap.Int64("file_id", fileID),
				zap.String("reason", reason))
			return "", fmt.Errorf("%w: %s", ErrLinkUnavailable, reason)
		}
		return lr.Data, nil
	})
	if err != nil {
		return "", err
	}

	logging.Debug("resolved download link",
		zap.Int64("torrent_id", torrentID),
		zap.Int64("file_id", fileID),
		zap.String("url", c.maskKey(link)))
	return link, nil
}

// validFiles drops malformed file entries instead of letting them reach the
// browser.
func (c *Client) validFiles(t Torrent) []File {
	files := t.Files
	kept := files[:0]
	for _, f := range files {
		if !f.valid() {
			logging.Warn("dropping malformed file entry",
				zap.Int64("torrent_id", t.ID),
				zap.Int64("file_id", f.ID),
				zap.String("name", f.Name))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// maskKey hides the API key in strings destined for logs.
func (c *Client) maskKey(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "***API_KEY***")
}

func apiFailure(apiErr, detail string) string {
	switch {
	case apiErr != "" && detail != "":
		return apiErr + ": " + detail
	case apiErr != "":
		return apiErr
	case detail != "":
		return detail
	default:
		return "no reason given"
	}
}
