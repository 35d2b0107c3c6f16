// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl implements the paginated author-article crawl against
// SerpAPI's google_scholar_author engine under a hard per-run request
// ceiling.
//
// A crawl stops after a successful page when any of the following holds,
// checked in this order: the page is empty, the page is shorter than the
// page size, the provider reports no next page, or the request ceiling is
// reached. Only the last case (and quota exhaustion or a malformed page
// after the first) leaves the crawl partial with a continuation offset.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/marchanero/scholar-engine/internal/httputil"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// Defaults applied by Crawl when the configuration leaves a field zero.
const (
	DefaultPageSize     = 100
	DefaultMaxRequests  = 5
	DefaultSortOrder    = "pubdate"
	DefaultMaxAttempts  = 3
	DefaultRequestDelay = time.Second
)

// now is the clock used for request records. Tests may replace it.
var now = time.Now

// RequestRecord describes one HTTP attempt.
type RequestRecord struct {
	AuthorID string
	Offset   int
	Attempt  int
	Status   int
	Class    httputil.Class
	Err      error
	Duration time.Duration
	At       time.Time
}

// RequestRecorder persists request attempts. Implementations must not
// retain the record's error beyond the call.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, r RequestRecord) error
}

// Recorders fans a record out to several recorders, returning the first
// error after calling all of them.
type Recorders []RequestRecorder

// RecordRequest implements RequestRecorder.
func (rs Recorders) RecordRequest(ctx context.Context, r RequestRecord) error {
	var first error
	for _, rec := range rs {
		if rec == nil {
			continue
		}
		if err := rec.RecordRequest(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Result is everything a crawl gathered. On error it still holds whatever
// was accumulated before the failure.
type Result struct {
	Author     *RawAuthor
	CitedBy    *RawCitedByTable
	Articles   []RawArticle
	Pagination types.PaginationState
}

// WithDefaults fills zero fields of cfg with the package defaults.
func WithDefaults(cfg types.CrawlConfig) types.CrawlConfig {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.SortOrder == "" {
		cfg.SortOrder = DefaultSortOrder
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.StartOffset < 0 {
		cfg.StartOffset = 0
	}
	return cfg
}

// Crawl requests pages for authorID from cfg.StartOffset until a stop
// condition holds. Every HTTP attempt, retries included, counts against
// cfg.MaxRequests and is reported to rec, which may be nil.
func Crawl(ctx context.Context, f Fetcher, authorID string, cfg types.CrawlConfig, rec RequestRecorder, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if authorID == "" {
		return Result{}, fmt.Errorf("%w: empty author id", ErrRequestRejected)
	}
	cfg = WithDefaults(cfg)

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	state := types.PaginationState{
		StartOffset: cfg.StartOffset,
		PageSize:    cfg.PageSize,
		SortOrder:   cfg.SortOrder,
		MaxRequests: cfg.MaxRequests,
	}
	var res Result
	offset := cfg.StartOffset

	for {
		pr := PageRequest{AuthorID: authorID, Offset: offset, PageSize: cfg.PageSize, SortOrder: cfg.SortOrder}
		policy := httputil.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Allow:       func() bool { return state.RequestCount < cfg.MaxRequests },
			OnRetry: func(attempt int, wait time.Duration, err error) {
				logger.Warn("page fetch failed, retrying",
					zap.Int("offset", offset),
					zap.Int("attempt", attempt),
					zap.Duration("backoff", wait),
					zap.Error(err))
			},
		}

		out, _ := httputil.Retry(ctx, policy, func(ctx context.Context, attempt int) httputil.Outcome[Page] {
			if err := limiter.Wait(ctx); err != nil {
				return httputil.Fatal(Page{}, err)
			}
			state.RequestCount++
			start := now()
			o := f.FetchPage(ctx, pr)
			record(ctx, rec, logger, RequestRecord{
				AuthorID: authorID,
				Offset:   offset,
				Attempt:  attempt,
				Status:   o.Value.Status,
				Class:    o.Class,
				Err:      o.Err,
				Duration: now().Sub(start),
				At:       start,
			})
			return o
		})

		first := state.PagesProcessed == 0

		if out.Class != httputil.ClassOK {
			res.Pagination = state
			return stopOnFailure(res, out, first, offset, logger)
		}

		page := out.Value.Response
		if page == nil {
			page = &RawResponse{}
		}
		if first && page.Author == nil {
			state.MarkPartial(types.StopMalformedPage, offset)
			return Result{Pagination: state}, fmt.Errorf("%w: first page has no author block", ErrMalformedResponse)
		}

		state.PagesProcessed++
		if first {
			res.Author = page.Author
			res.CitedBy = page.CitedBy
		}
		res.Articles = append(res.Articles, page.Articles...)

		n := len(page.Articles)
		logger.Info("page fetched",
			zap.Int("offset", offset),
			zap.Int("articles", n),
			zap.Int("requests", state.RequestCount),
			zap.Int("max_requests", cfg.MaxRequests))

		switch {
		case n == 0:
			state.MarkComplete(types.StopEmptyPage)
		case n < cfg.PageSize:
			state.MarkComplete(types.StopShortPage)
		case !page.Pagination.HasNext():
			state.MarkComplete(types.StopNoNextPage)
		case state.RequestCount >= cfg.MaxRequests:
			state.MarkPartial(types.StopRequestBudget, offset+cfg.PageSize)
			logger.Warn("request ceiling reached, crawl is partial",
				zap.Int("continue_from", offset+cfg.PageSize))
		default:
			offset += cfg.PageSize
			continue
		}

		res.Pagination = state
		return res, nil
	}
}

// stopOnFailure maps a failed page outcome to the crawl result. A malformed
// page after the first is a page-level stop, not a run failure.
func stopOnFailure(res Result, out httputil.Outcome[Page], first bool, offset int, logger *zap.Logger) (Result, error) {
	state := &res.Pagination
	switch {
	case out.Class == httputil.ClassFatal && errors.Is(out.Err, ErrRateLimitExceeded):
		state.MarkPartial(types.StopQuotaExhausted, offset)
		logger.Error("provider quota exhausted",
			zap.Int("offset", offset),
			zap.Int("articles_kept", len(res.Articles)))
		return res, out.Err

	case out.Class == httputil.ClassFatal && errors.Is(out.Err, ErrMalformedResponse):
		state.MarkPartial(types.StopMalformedPage, offset)
		if first {
			return Result{Pagination: *state}, out.Err
		}
		logger.Warn("malformed page, stopping crawl", zap.Int("offset", offset), zap.Error(out.Err))
		return res, nil

	case out.Class == httputil.ClassFatal && errors.Is(out.Err, ErrRequestRejected):
		state.MarkPartial(types.StopRequestRejected, offset)
		return res, out.Err

	case errors.Is(out.Err, context.Canceled), errors.Is(out.Err, context.DeadlineExceeded):
		state.MarkPartial(types.StopTransientError, offset)
		return res, out.Err

	default:
		state.MarkPartial(types.StopTransientError, offset)
		return res, fmt.Errorf("%w: offset %d: %w", ErrTransientNetwork, offset, out.Err)
	}
}

func record(ctx context.Context, rec RequestRecorder, logger *zap.Logger, r RequestRecord) {
	if rec == nil {
		return
	}
	if err := rec.RecordRequest(ctx, r); err != nil {
		logger.Warn("recording request failed", zap.Error(err))
	}
}
