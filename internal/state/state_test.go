package state

import (
	"fmt"
	"testing"
	"time"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

func TestRolloverIfNewDay(t *testing.T) {
	t.Run("new day resets counter and trims ledger", func(t *testing.T) {
		st := PostingState{Day: "2024-01-01", PostsToday: 2}
		for i := 0; i < rolloverHistoryCap+100; i++ {
			st.RecentHashes = append(st.RecentHashes, fmt.Sprintf("fp-%d", i))
		}

		if !st.RolloverIfNewDay(day(2024, 1, 2)) {
			t.Fatal("RolloverIfNewDay() should report a change")
		}
		if st.Day != "2024-01-02" {
			t.Errorf("Day = %q", st.Day)
		}
		if st.PostsToday != 0 {
			t.Errorf("PostsToday = %d, want 0", st.PostsToday)
		}
		if len(st.RecentHashes) != rolloverHistoryCap {
			t.Errorf("ledger size = %d, want %d", len(st.RecentHashes), rolloverHistoryCap)
		}
		// the newest entries survive
		if st.RecentHashes[len(st.RecentHashes)-1] != fmt.Sprintf("fp-%d", rolloverHistoryCap+99) {
			t.Error("rollover should keep the most recent fingerprints")
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		st := PostingState{Day: "2024-01-02", PostsToday: 3, RecentHashes: []string{"a"}}
		if st.RolloverIfNewDay(day(2024, 1, 2)) {
			t.Error("RolloverIfNewDay() should be a no-op on the same day")
		}
		if st.PostsToday != 3 || len(st.RecentHashes) != 1 {
			t.Error("no-op rollover must not touch the state")
		}
	})

	t.Run("quota available again after rollover", func(t *testing.T) {
		st := PostingState{Day: "2024-01-01", PostsToday: 2}
		if st.HasQuota(2) {
			t.Fatal("quota should be exhausted before rollover")
		}
		st.RolloverIfNewDay(day(2024, 1, 2))
		if !st.HasQuota(2) {
			t.Error("quota should be available after rollover")
		}
	})
}

func TestHasQuota(t *testing.T) {
	st := PostingState{PostsToday: 0}
	if !st.HasQuota(1) {
		t.Error("HasQuota(1) with 0 posts should be true")
	}
	st.PostsToday = 1
	if st.HasQuota(1) {
		t.Error("HasQuota(1) with 1 post should be false")
	}
	if st.HasQuota(0) {
		t.Error("HasQuota(0) should always be false")
	}
}

func TestLedger(t *testing.T) {
	t.Run("record then seen", func(t *testing.T) {
		var st PostingState
		if st.Seen("abc") {
			t.Error("empty ledger should not contain anything")
		}
		st.Record("abc")
		if !st.Seen("abc") {
			t.Error("recorded fingerprint must be a member immediately after")
		}
	})

	t.Run("cap is enforced with FIFO eviction", func(t *testing.T) {
		var st PostingState
		for i := 0; i < historyCap+50; i++ {
			st.Record(fmt.Sprintf("fp-%d", i))
		}
		if len(st.RecentHashes) != historyCap {
			t.Errorf("ledger size = %d, want %d", len(st.RecentHashes), historyCap)
		}
		if st.Seen("fp-0") {
			t.Error("oldest fingerprint should have been evicted")
		}
		if !st.Seen(fmt.Sprintf("fp-%d", historyCap+49)) {
			t.Error("newest fingerprint must still be present")
		}
	})
}
