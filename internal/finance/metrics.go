package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// achievementPct is current/target*100 rounded to one decimal, or 0 when
// no positive target is set.
func achievementPct(current float64, target int64) float64 {
	if target <= 0 {
		return 0
	}
	return decimal.NewFromFloat(current).
		Div(decimal.NewFromInt(target)).
		Mul(hundred).
		Round(1).
		InexactFloat64()
}

// dailyChangePct is (current-previous)/previous*100 rounded to two decimals.
func dailyChangePct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	prev := decimal.NewFromFloat(previous)
	return decimal.NewFromFloat(current).
		Sub(prev).
		Div(prev).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}

// newSnapshot combines a resolved entry with its closes.
func newSnapshot(rs ResolvedSymbol, c Closes) QuoteSnapshot {
	return QuoteSnapshot{
		DisplayName:    rs.Entry.DisplayName,
		Code:           rs.Code,
		Symbol:         c.Symbol,
		CurrentClose:   int64(c.Current),
		TargetPrice:    rs.Entry.TargetPrice,
		AchievementPct: achievementPct(c.Current, rs.Entry.TargetPrice),
		DailyChangePct: dailyChangePct(c.Current, c.Previous),
	}
}
