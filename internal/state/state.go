// Package state owns the persisted posting state: the rolling day counter and
// the bounded ledger of recently published fingerprints.
package state

import "time"

const (
	// historyCap bounds the ledger after every append.
	historyCap = 1000
	// rolloverHistoryCap is the smaller cap applied on day rollover, so the
	// ledger cannot grow without bound across weeks of uptime while still
	// blocking immediate reposts.
	rolloverHistoryCap = 400

	dayLayout = "2006-01-02"
)

// PostingState is the single mutable record the scheduler loop owns. It is
// read, mutated and persisted on one goroutine only.
type PostingState struct {
	Day          string   `json:"day"`
	PostsToday   int      `json:"posts_today"`
	RecentHashes []string `json:"recent_hashes"`
}

// RolloverIfNewDay resets the daily counter the first time a new calendar day
// is observed (now must already be in the posting timezone) and shrinks the
// ledger to its rollover cap. Calling it again on the same day is a no-op.
// It reports whether anything changed.
func (s *PostingState) RolloverIfNewDay(now time.Time) bool {
	day := now.Format(dayLayout)
	if day == s.Day {
		return false
	}
	s.Day = day
	s.PostsToday = 0
	s.RecentHashes = trimTail(s.RecentHashes, rolloverHistoryCap)
	return true
}

// HasQuota reports whether another post is allowed today.
func (s *PostingState) HasQuota(maxPerDay int) bool {
	return s.PostsToday < maxPerDay
}

// Seen reports whether a fingerprint is in the ledger.
func (s *PostingState) Seen(fp string) bool {
	for _, h := range s.RecentHashes {
		if h == fp {
			return true
		}
	}
	return false
}

// Record appends a fingerprint to the ledger, evicting the oldest entries
// once the cap is exceeded. Callers record only after a successful publish.
func (s *PostingState) Record(fp string) {
	s.RecentHashes = append(s.RecentHashes, fp)
	s.RecentHashes = trimTail(s.RecentHashes, historyCap)
}

func trimTail(hashes []string, limit int) []string {
	if len(hashes) <= limit {
		return hashes
	}
	trimmed := make([]string, limit)
	copy(trimmed, hashes[len(hashes)-limit:])
	return trimmed
}
