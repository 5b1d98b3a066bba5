package analytics

import (
	"github.com/r0zar/streakwatch/internal/core/domain"
)

// RateEstimate is a projected daily distribution rate with the window it was
// derived from and a qualitative confidence label.
type RateEstimate struct {
	DailyRate  float64
	Method     domain.RateMethod
	Confidence domain.Confidence
	PeriodDays int
}

// RateConfig parameterizes the estimator.
type RateConfig struct {
	BlocksPerDay      uint64
	FallbackDailyRate float64
}

// EstimateDailyRate projects the program's daily distribution rate from the
// global claim history, measured against the current chain tip.
//
// Windows are tried richest-data first: a 7-period window (≥2 claims), a
// 30-period window (≥3 claims), the all-time span (≥1 claim), and finally a
// fixed fallback so early in the program's life the system still returns a
// usable number. Adding recent claims can only move the selection toward a
// higher-priority window, never away from it.
func EstimateDailyRate(claims []domain.Event, tipHeight uint64, cfg RateConfig) RateEstimate {
	if in7 := claimsSince(claims, tipHeight, 7*cfg.BlocksPerDay); len(in7) >= 2 {
		confidence := domain.ConfidenceMedium
		if len(in7) >= 7 {
			confidence = domain.ConfidenceHigh
		}
		return RateEstimate{
			DailyRate:  sumAmounts(in7) / 7,
			Method:     domain.RateMethodRecent7Day,
			Confidence: confidence,
			PeriodDays: 7,
		}
	}

	if in30 := claimsSince(claims, tipHeight, 30*cfg.BlocksPerDay); len(in30) >= 3 {
		confidence := domain.ConfidenceLow
		if len(in30) >= 15 {
			confidence = domain.ConfidenceMedium
		}
		return RateEstimate{
			DailyRate:  sumAmounts(in30) / 30,
			Method:     domain.RateMethodRecent30Day,
			Confidence: confidence,
			PeriodDays: 30,
		}
	}

	if len(claims) >= 1 {
		return historicalEstimate(claims, cfg)
	}

	return RateEstimate{
		DailyRate:  cfg.FallbackDailyRate,
		Method:     domain.RateMethodFallback,
		Confidence: domain.ConfidenceLow,
		PeriodDays: 0,
	}
}

// historicalEstimate spreads the all-time claimed total over the block span
// between the oldest and newest claim, converted to period units. A single
// claim carries no span, so its amount stands in as the rate directly.
func historicalEstimate(claims []domain.Event, cfg RateConfig) RateEstimate {
	if len(claims) == 1 {
		return RateEstimate{
			DailyRate:  float64(claims[0].Amount),
			Method:     domain.RateMethodHistorical,
			Confidence: domain.ConfidenceLow,
			PeriodDays: 1,
		}
	}

	oldest, newest := claims[0].Block, claims[0].Block
	for _, c := range claims[1:] {
		if c.Block < oldest {
			oldest = c.Block
		}
		if c.Block > newest {
			newest = c.Block
		}
	}

	spanDays := int((newest - oldest) / cfg.BlocksPerDay)
	periodDays := spanDays
	if periodDays < 1 {
		periodDays = 1
	}

	confidence := domain.ConfidenceLow
	if spanDays >= 7 {
		confidence = domain.ConfidenceMedium
	}

	return RateEstimate{
		DailyRate:  sumAmounts(claims) / float64(periodDays),
		Method:     domain.RateMethodHistorical,
		Confidence: confidence,
		PeriodDays: periodDays,
	}
}

// claimsSince filters claims whose block falls within the trailing window of
// the given length, guarding against underflow near genesis.
func claimsSince(claims []domain.Event, tipHeight, windowBlocks uint64) []domain.Event {
	var start uint64
	if tipHeight > windowBlocks {
		start = tipHeight - windowBlocks
	}

	var in []domain.Event
	for _, c := range claims {
		if c.Block >= start {
			in = append(in, c)
		}
	}
	return in
}

func sumAmounts(claims []domain.Event) float64 {
	var total float64
	for _, c := range claims {
		total += float64(c.Amount)
	}
	return total
}
