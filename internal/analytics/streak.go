// Package analytics derives per-user and global views from the decoded event
// history: consecutive-day streaks, distribution-rate estimates and the
// aggregated analytics objects served to callers.
package analytics

import (
	"sort"

	"github.com/r0zar/streakwatch/internal/core/domain"
)

// StreakResult holds the consecutive-period streak lengths for one user.
// CurrentStreak never exceeds MaxStreak.
type StreakResult struct {
	CurrentStreak int
	MaxStreak     int
}

// Streaks computes current and maximum consecutive-period streaks from a
// user's claim events, accepted in any order.
//
// Two claims are consecutive when their block gap stays within gapTolerance,
// which is wider than the strict one-period interval to allow timing slack.
// The max streak is a forward scan; the current streak walks backward from
// the most recent claim and stops at the first gap violation.
func Streaks(claims []domain.Event, gapTolerance uint64) StreakResult {
	if len(claims) == 0 {
		return StreakResult{}
	}
	if len(claims) == 1 {
		return StreakResult{CurrentStreak: 1, MaxStreak: 1}
	}

	sorted := make([]domain.Event, len(claims))
	copy(sorted, claims)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Block < sorted[j].Block
	})

	maxStreak, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Block-sorted[i-1].Block <= gapTolerance {
			run++
		} else {
			run = 1
		}
		if run > maxStreak {
			maxStreak = run
		}
	}

	current := 1
	for i := len(sorted) - 1; i > 0; i-- {
		if sorted[i].Block-sorted[i-1].Block > gapTolerance {
			break
		}
		current++
	}

	return StreakResult{CurrentStreak: current, MaxStreak: maxStreak}
}
