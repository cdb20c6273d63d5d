// Package app wires the candidate pipeline and the scheduler loop that
// drives it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/robdiste97/telegram-offerte-bot/internal/config"
	"github.com/robdiste97/telegram-offerte-bot/internal/logger"
	"github.com/robdiste97/telegram-offerte-bot/internal/metrics"
	"github.com/robdiste97/telegram-offerte-bot/internal/offers"
	"github.com/robdiste97/telegram-offerte-bot/internal/state"
	"github.com/robdiste97/telegram-offerte-bot/internal/window"
)

const (
	// maxItemsPerSource bounds the work done per feed per cycle.
	maxItemsPerSource = 25

	// errorSleep is the fixed pause after a failed or panicked cycle.
	errorSleep = 30 * time.Second

	// disabledSleep paces the degraded loop when posting is configured off.
	disabledSleep = 5 * time.Minute
)

// Clock supplies the current time; tests swap it out.
type Clock func() time.Time

// Fetcher pulls raw entries from one feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]*gofeed.Item, error)
}

// Sender publishes one message and reports the raw API status and body.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) (int, string, error)
}

// Deps lists what the bot needs. Clock and Sleep default to the real thing.
type Deps struct {
	Fetcher Fetcher
	Sender  Sender
	Store   state.Store
	Clock   Clock
	Sleep   func(ctx context.Context, d time.Duration)
}

// Bot runs the fetch -> filter -> dedup -> rank -> publish pipeline on a
// fixed schedule. All posting state lives on its single loop goroutine.
type Bot struct {
	cfg     *config.Config
	fetcher Fetcher
	sender  Sender
	store   state.Store
	clock   Clock
	sleep   func(ctx context.Context, d time.Duration)
}

// New assembles a Bot from its dependencies.
func New(cfg *config.Config, deps Deps) *Bot {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Bot{
		cfg:     cfg,
		fetcher: deps.Fetcher,
		sender:  deps.Sender,
		store:   deps.Store,
		clock:   clock,
		sleep:   sleep,
	}
}

// CycleResult tells the loop what one cycle did, so it can pick its sleep.
type CycleResult struct {
	// Idle means the cycle was gated by the posting window or the daily
	// quota and nothing was fetched or attempted.
	Idle      bool
	Published int
}

// RunCycle executes one poll cycle. State is persisted after every mutation:
// once on day rollover and once per successful publish.
func (b *Bot) RunCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()
	defer metrics.Global.RecordCycle(start)

	now := b.clock().In(b.cfg.Location())

	st, err := b.store.Load(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("load state: %w", err)
	}

	if st.RolloverIfNewDay(now) {
		if err := b.store.Save(ctx, st); err != nil {
			return CycleResult{}, fmt.Errorf("save state: %w", err)
		}
		logger.Info("new posting day", "day", st.Day)
	}

	if !window.InAny(b.cfg.ParsedWindows(), now) {
		logger.Debug("outside posting windows", "time", now.Format("15:04"))
		return CycleResult{Idle: true}, nil
	}
	if !st.HasQuota(b.cfg.MaxPostsPerDay) {
		logger.Debug("daily quota exhausted", "posts_today", st.PostsToday)
		return CycleResult{Idle: true}, nil
	}

	candidates := b.collect(ctx, &st)
	offers.SortByRank(candidates)
	logger.Info("cycle candidates ready", "count", len(candidates))

	// Publish in rank order until the quota runs out. The fingerprint is
	// recorded and the state saved right after each success, so a restart
	// mid-cycle cannot repost what already went out.
	var res CycleResult
	for _, c := range candidates {
		if !st.HasQuota(b.cfg.MaxPostsPerDay) {
			break
		}

		status, body, err := b.sender.SendMessage(ctx, b.cfg.Channel(), FormatOffer(c))
		if err != nil || status != http.StatusOK {
			metrics.Global.IncSendFailure()
			if err != nil {
				logger.Error("send failed", "source", c.Source, "err", err)
			} else {
				logger.Error("telegram rejected message", "status", status, "body", body)
			}
			// back off before bothering the API again
			b.sleep(ctx, b.cfg.Cooldown())
			continue
		}

		st.PostsToday++
		st.Record(c.Fingerprint)
		if err := b.store.Save(ctx, st); err != nil {
			return res, fmt.Errorf("save state: %w", err)
		}
		metrics.Global.IncPublished()
		res.Published++
		logger.Info("published offer", "title", c.Title, "source", c.Source, "posts_today", st.PostsToday)

		b.sleep(ctx, b.cfg.Cooldown())
	}

	return res, nil
}

// collect fetches every enabled source and returns the candidates that
// survive normalization, keyword filtering and deduplication. Sources are
// visited in rank order, so when the same offer appears in two feeds the
// better-ranked copy is the one kept.
func (b *Bot) collect(ctx context.Context, st *state.PostingState) []offers.Candidate {
	filter := offers.KeywordFilter{
		RequiredAny: b.cfg.Filters.RequiredKeywordsAny,
		Blocked:     b.cfg.Filters.BlockedKeywords,
	}

	seen := make(map[string]struct{})
	var out []offers.Candidate

	for _, src := range b.cfg.EnabledSources() {
		items, err := b.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			metrics.Global.IncFetchError()
			logger.Warn("source fetch failed, skipping", "source", src.Name, "err", err)
			continue
		}
		if len(items) > maxItemsPerSource {
			items = items[:maxItemsPerSource]
		}

		for _, item := range items {
			metrics.Global.AddEntriesProcessed(1)

			c, ok := offers.FromItem(item, src, b.cfg.Filters.MaxTitleLen)
			if !ok {
				continue
			}
			if !filter.Passes(c.Title, c.Summary) {
				metrics.Global.IncFilteredOut()
				continue
			}
			if _, dup := seen[c.Fingerprint]; dup {
				metrics.Global.IncDuplicateSuppressed()
				continue
			}
			if st.Seen(c.Fingerprint) {
				metrics.Global.IncDuplicateSuppressed()
				continue
			}

			seen[c.Fingerprint] = struct{}{}
			out = append(out, c)
		}
		logger.Debug("source collected", "source", src.Name, "items", len(items))
	}

	return out
}

// Run drives the loop until ctx is cancelled. No error inside a cycle ever
// terminates it; the only way posting stops is the explicit disabled state
// for broken credentials.
func (b *Bot) Run(ctx context.Context) {
	if err := b.cfg.PostingIssue(); err != nil {
		b.runDisabled(ctx, err)
		return
	}

	logger.Info("scheduler loop started",
		"sources", len(b.cfg.EnabledSources()),
		"channel", b.cfg.Channel(),
		"max_posts_per_day", b.cfg.MaxPostsPerDay)

	for {
		res, err := b.safeCycle(ctx)

		var d time.Duration
		switch {
		case err != nil:
			metrics.Global.SetError(err.Error())
			logger.Error("cycle failed", "err", err)
			d = errorSleep
		case res.Idle:
			d = b.cfg.IdleInterval()
		default:
			d = b.cfg.PollInterval()
		}

		select {
		case <-ctx.Done():
			logger.Info("scheduler loop stopped")
			return
		case <-time.After(d):
		}
	}
}

// safeCycle keeps a panicking cycle from taking down the loop.
func (b *Bot) safeCycle(ctx context.Context) (res CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return b.RunCycle(ctx)
}

// runDisabled keeps the process alive (health checks keep passing) while
// posting is configured off, instead of exiting or spinning.
func (b *Bot) runDisabled(ctx context.Context, cause error) {
	metrics.Global.SetPostingEnabled(false)
	logger.Error("posting disabled, loop idling", "reason", cause)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(disabledSleep):
			logger.Warn("posting still disabled", "reason", cause)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
