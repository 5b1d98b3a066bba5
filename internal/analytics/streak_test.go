package analytics

import (
	"testing"

	"github.com/r0zar/streakwatch/internal/core/domain"
)

const gapTolerance = 25_920

func claimsAt(blocks ...uint64) []domain.Event {
	claims := make([]domain.Event, 0, len(blocks))
	for i, b := range blocks {
		claims = append(claims, domain.Event{
			Type:  domain.EventTypeClaim,
			TxID:  string(rune('a' + i)),
			Block: b,
		})
	}
	return claims
}

func TestStreaks_Empty(t *testing.T) {
	got := Streaks(nil, gapTolerance)
	if got.CurrentStreak != 0 || got.MaxStreak != 0 {
		t.Errorf("expected {0,0}, got %+v", got)
	}
}

func TestStreaks_SingleClaim(t *testing.T) {
	got := Streaks(claimsAt(5000), gapTolerance)
	if got.CurrentStreak != 1 || got.MaxStreak != 1 {
		t.Errorf("expected {1,1}, got %+v", got)
	}
}

func TestStreaks_FourConsecutiveClaims(t *testing.T) {
	got := Streaks(claimsAt(0, 1000, 2000, 3000), gapTolerance)
	if got.CurrentStreak != 4 || got.MaxStreak != 4 {
		t.Errorf("expected {4,4}, got %+v", got)
	}
}

func TestStreaks_GapResetsCurrentButKeepsMax(t *testing.T) {
	// Three consecutive claims, a long gap, then two more.
	claims := claimsAt(0, 17_280, 34_560, 200_000, 217_280)

	got := Streaks(claims, gapTolerance)
	if got.MaxStreak != 3 {
		t.Errorf("expected max streak 3, got %d", got.MaxStreak)
	}
	if got.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", got.CurrentStreak)
	}
}

func TestStreaks_OrderIndependent(t *testing.T) {
	shuffled := claimsAt(2000, 0, 3000, 1000)

	got := Streaks(shuffled, gapTolerance)
	if got.CurrentStreak != 4 || got.MaxStreak != 4 {
		t.Errorf("expected {4,4} regardless of input order, got %+v", got)
	}
}

func TestStreaks_CurrentNeverExceedsMax(t *testing.T) {
	cases := [][]uint64{
		{},
		{10},
		{0, 1000, 60_000},
		{0, 30_000, 31_000, 32_000},
		{0, 1000, 2000, 100_000, 101_000, 200_000},
	}
	for _, blocks := range cases {
		got := Streaks(claimsAt(blocks...), gapTolerance)
		if got.CurrentStreak < 0 || got.MaxStreak < 0 {
			t.Errorf("negative streak for %v: %+v", blocks, got)
		}
		if got.CurrentStreak > got.MaxStreak {
			t.Errorf("current > max for %v: %+v", blocks, got)
		}
	}
}
