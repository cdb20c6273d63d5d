// Package offers holds the candidate model for the posting pipeline: building
// candidates out of raw feed entries, keyword filtering, fingerprinting and
// rank ordering.
package offers

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/robdiste97/telegram-offerte-bot/internal/config"
	"github.com/robdiste97/telegram-offerte-bot/internal/text"
)

// Candidate is one deal considered for publishing in the current cycle.
type Candidate struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	Rank        int
	Fingerprint string
}

// Fingerprint derives the stable identity hash used for duplicate
// suppression: sha256 over normalized title + "|" + trimmed link.
func Fingerprint(title, link string) string {
	payload := text.Normalize(title) + "|" + strings.TrimSpace(link)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FromItem turns a raw feed entry into a Candidate. Entries without a usable
// title or link are dropped (ok = false).
func FromItem(item *gofeed.Item, src config.Source, maxTitleLen int) (Candidate, bool) {
	title := text.Truncate(text.StripHTML(item.Title), maxTitleLen)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return Candidate{}, false
	}

	return Candidate{
		Title:       title,
		Link:        link,
		Summary:     text.StripHTML(item.Description),
		Source:      src.Name,
		Rank:        src.Rank,
		Fingerprint: Fingerprint(title, link),
	}, true
}

// KeywordFilter applies the configured required/blocked keyword rules.
type KeywordFilter struct {
	RequiredAny []string
	Blocked     []string
}

// Passes checks title+summary against the rules, case-insensitively. A blocked
// keyword rejects the candidate even when a required one matches too.
func (f KeywordFilter) Passes(title, summary string) bool {
	haystack := strings.ToLower(title + " " + summary)
	if len(f.RequiredAny) > 0 && !containsAny(haystack, f.RequiredAny) {
		return false
	}
	return !containsAny(haystack, f.Blocked)
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// SortByRank orders candidates ascending by source rank. The sort is stable:
// candidates with equal rank keep their encounter order.
func SortByRank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rank < candidates[j].Rank
	})
}
