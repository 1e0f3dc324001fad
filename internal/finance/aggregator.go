package finance

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 6

// QuoteFetcher is the part of QuoteAdapter the aggregator depends on.
type QuoteFetcher interface {
	FetchLastTwoCloses(ctx context.Context, code string) (Closes, error)
}

// Aggregator turns a watchlist into snapshots. Entries that cannot be
// resolved or quoted are dropped with a diagnostic; a refresh never fails.
type Aggregator struct {
	Quotes      QuoteFetcher
	Concurrency int
	Logger      *zap.Logger
	now         func() time.Time
}

func NewAggregator(quotes QuoteFetcher, concurrency int, logger *zap.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{Quotes: quotes, Concurrency: concurrency, Logger: logger, now: time.Now}
}

// result is the outcome for one watchlist index.
type result struct {
	snap *QuoteSnapshot
	diag *Diagnostic
}

// Aggregate resolves and quotes every entry, fetching concurrently and
// reporting snapshots in watchlist order.
func (a *Aggregator) Aggregate(ctx context.Context, resolver *Resolver, watchlist []WatchlistEntry) Report {
	results := make([]result, len(watchlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Concurrency)
	for i, entry := range watchlist {
		rs := resolver.Resolve(entry)
		if !rs.OK {
			a.Logger.Info("unresolved entry", zap.String("name", entry.DisplayName))
			results[i].diag = &Diagnostic{Kind: DiagUnresolved, Name: entry.DisplayName, Detail: ErrUnresolvedSymbol.Error()}
			continue
		}
		g.Go(func() error {
			c, err := a.Quotes.FetchLastTwoCloses(gctx, rs.Code)
			if err != nil {
				d := Diagnostic{Kind: DiagNoData, Name: entry.DisplayName, Code: rs.Code, Detail: err.Error()}
				a.Logger.Info(d.String())
				results[i].diag = &d
				return nil
			}
			s := newSnapshot(rs, c)
			results[i].snap = &s
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{
		Snapshots:      make([]QuoteSnapshot, 0, len(watchlist)),
		DirectoryReady: true,
		GeneratedAt:    a.now(),
	}
	for _, r := range results {
		if r.snap != nil {
			rep.Snapshots = append(rep.Snapshots, *r.snap)
		}
		if r.diag != nil {
			rep.Diagnostics = append(rep.Diagnostics, *r.diag)
		}
	}
	a.Logger.Info("refresh done",
		zap.Int("entries", len(watchlist)),
		zap.Int("snapshots", len(rep.Snapshots)),
		zap.Int("dropped", len(rep.Diagnostics)))
	return rep
}
