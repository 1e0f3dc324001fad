package finance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoData is returned when no venue candidate yields two closes.
var ErrNoData = errors.New("no data found")

// KRX venues, primary exchange first.
var DefaultCandidates = []QuoteCandidate{".KS", ".KQ"}

const DefaultQuoteTimeout = 5 * time.Second

// QuoteAdapter fetches the last two closes of a code, trying each venue
// suffix in order. The first candidate with enough history wins.
type QuoteAdapter struct {
	Source     HistorySource
	Candidates []QuoteCandidate
	Timeout    time.Duration
	Logger     *zap.Logger
}

func NewQuoteAdapter(src HistorySource, candidates []QuoteCandidate, timeout time.Duration, logger *zap.Logger) *QuoteAdapter {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	if timeout <= 0 {
		timeout = DefaultQuoteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteAdapter{Source: src, Candidates: candidates, Timeout: timeout, Logger: logger}
}

// FetchLastTwoCloses returns the latest and previous close for code.
// Candidate failures of any kind count as "no data" for that candidate.
func (a *QuoteAdapter) FetchLastTwoCloses(ctx context.Context, code string) (Closes, error) {
	for _, suffix := range a.Candidates {
		if ctx.Err() != nil {
			return Closes{}, ErrNoData
		}
		symbol := code + string(suffix)
		closes, err := a.try(ctx, symbol)
		if err != nil {
			a.Logger.Debug("candidate failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		current, previous, ok := lastTwo(closes)
		if !ok {
			a.Logger.Debug("candidate history too short", zap.String("symbol", symbol), zap.Int("points", len(closes)))
			continue
		}
		return Closes{Current: current, Previous: previous, Symbol: symbol}, nil
	}
	return Closes{}, ErrNoData
}

func (a *QuoteAdapter) try(ctx context.Context, symbol string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	return a.Source.DailyCloses(ctx, symbol)
}
