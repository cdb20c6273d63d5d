// Package rss fetches and parses syndicated feeds.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/robdiste97/telegram-offerte-bot/internal/retry"
)

const (
	fetchAttempts   = 2
	fetchRetryDelay = 3 * time.Second
)

// Fetcher downloads feeds with a bounded per-request timeout.
type Fetcher struct {
	parser *gofeed.Parser
	retry  retry.Config
}

// NewFetcher builds a Fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &Fetcher{
		parser: p,
		retry:  retry.Config{Attempts: fetchAttempts, Delay: fetchRetryDelay},
	}
}

// Fetch downloads and parses one feed, retrying once with a fixed delay on
// failure. Callers treat an error as "skip this source for the cycle".
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]*gofeed.Item, error) {
	var items []*gofeed.Item

	err := retry.Do(ctx, f.retry, func() error {
		feed, err := f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			return fmt.Errorf("parse feed %s: %w", url, err)
		}
		items = feed.Items
		return nil
	})
	return items, err
}
