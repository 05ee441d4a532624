package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rreader/types"
)

// ReaderClient is a thin HTTP client for the reader API
type ReaderClient struct {
	baseURL string
	client  *http.Client
}

func NewReaderClient(baseURL string) *ReaderClient {
	return &ReaderClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ListFeeds fetches all subscriptions with their health state
func (c *ReaderClient) ListFeeds() ([]*types.Feed, error) {
	resp, err := c.client.Get(c.baseURL + "/api/feeds")
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Feeds []*types.Feed `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.Feeds, nil
}

// RefreshFeed queues a forced fetch for one feed
func (c *ReaderClient) RefreshFeed(feedID int64) error {
	url := fmt.Sprintf("%s/api/feeds/%d/refresh", c.baseURL, feedID)
	resp, err := c.client.Post(url, "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// EnableFeed re-enables a disabled feed
func (c *ReaderClient) EnableFeed(feedID int64) error {
	url := fmt.Sprintf("%s/api/feeds/%d/enable", c.baseURL, feedID)
	resp, err := c.client.Post(url, "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("failed to enable feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
