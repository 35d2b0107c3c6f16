// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marchanero/scholar-engine/internal/httputil"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// serpAPIBase is the SerpAPI search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

const (
	engineName       = "google_scholar_author"
	processingStatus = "Processing"
	maxBodyBytes     = 16 << 20
)

// PageRequest identifies one page of an author's article list.
type PageRequest struct {
	AuthorID  string
	Offset    int
	PageSize  int
	SortOrder string
}

// Page is a fetched page together with the HTTP status that produced it.
// Status is zero when no response was received.
type Page struct {
	Status   int
	Response *RawResponse
}

// Fetcher retrieves a single page and classifies the outcome.
type Fetcher interface {
	FetchPage(ctx context.Context, req PageRequest) httputil.Outcome[Page]
}

// Client fetches google_scholar_author pages from SerpAPI.
type Client struct {
	HTTP      *http.Client
	APIKey    string
	UserAgent string
	// BaseURL overrides serpAPIBase when set.
	BaseURL string
}

// NewClient builds a Client from crawl configuration.
func NewClient(cfg types.CrawlConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		BaseURL:   cfg.BaseURL,
	}
}

// FetchPage issues one request. Transport failures, 5xx responses,
// undecodable bodies, and pages still being processed upstream are
// retryable. Quota exhaustion, rejected requests, and provider error
// messages are fatal.
func (c *Client) FetchPage(ctx context.Context, pr PageRequest) httputil.Outcome[Page] {
	base := c.BaseURL
	if base == "" {
		base = serpAPIBase
	}

	params := url.Values{
		"engine":    {engineName},
		"author_id": {pr.AuthorID},
		"start":     {strconv.Itoa(pr.Offset)},
		"num":       {strconv.Itoa(pr.PageSize)},
		"hl":        {"en"},
		"api_key":   {c.APIKey},
	}
	if pr.SortOrder != "" {
		params.Set("sort", pr.SortOrder)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return httputil.Fatal(Page{}, fmt.Errorf("creating request: %w", err))
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// The URL carries the credential; report only the failure kind.
		return retryable(Page{}, fmt.Errorf("requesting offset %d: %w", pr.Offset, unwrapURLError(err)))
	}
	defer resp.Body.Close()

	page := Page{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return retryable(page, fmt.Errorf("reading response body: %w", err))
	}

	var raw RawResponse
	decodeErr := json.Unmarshal(body, &raw)

	if resp.StatusCode == http.StatusTooManyRequests || (decodeErr == nil && IsQuotaMessage(raw.Error)) {
		return httputil.Fatal(page, fmt.Errorf("%w: %s", ErrRateLimitExceeded, providerMessage(raw.Error, resp.StatusCode)))
	}

	switch httputil.ClassifyStatus(resp.StatusCode) {
	case httputil.ClassRetryable:
		return retryable(page, fmt.Errorf("provider returned HTTP %d", resp.StatusCode))
	case httputil.ClassFatal:
		return httputil.Fatal(page, fmt.Errorf("%w: %s", ErrRequestRejected, providerMessage(raw.Error, resp.StatusCode)))
	}

	if decodeErr != nil {
		return retryable(page, fmt.Errorf("decoding response: %w", decodeErr))
	}
	if raw.SearchMetadata.Status == processingStatus {
		return retryable(page, fmt.Errorf("search %s still processing", raw.SearchMetadata.ID))
	}
	if raw.Error != "" {
		if strings.Contains(strings.ToLower(raw.Error), noResultsMarker) {
			raw.Error = ""
			raw.Articles = nil
			page.Response = &raw
			return httputil.OK(page)
		}
		return httputil.Fatal(page, fmt.Errorf("%w: %s", ErrMalformedResponse, raw.Error))
	}

	page.Response = &raw
	return httputil.OK(page)
}

func retryable(p Page, err error) httputil.Outcome[Page] {
	return httputil.Outcome[Page]{Value: p, Class: httputil.ClassRetryable, Err: err}
}

func providerMessage(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", status)
}

// unwrapURLError drops the request URL from a *url.Error.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
