package finance

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const directoryKey = "directory"

// DirectoryProvider loads a full directory from upstream.
type DirectoryProvider interface {
	Load(ctx context.Context) (*Directory, error)
}

// EngineConfig carries the tunables and capability flags of an Engine.
type EngineConfig struct {
	DirectoryTTL time.Duration
	QuoteTTL     time.Duration
	// RefreshTimeout bounds one shared refresh, independent of the
	// caller that started it.
	RefreshTimeout time.Duration
	// DirectoryLookup resolves names through the listing directory. When
	// false, watchlist names must be listing codes.
	DirectoryLookup bool
}

// Engine is the process-wide quote engine: it owns the directory cache and
// the report cache, and is shared by every chat.
type Engine struct {
	cfg         EngineConfig
	directory   DirectoryProvider
	aggregator  *Aggregator
	directories *TTLCache[*Directory]
	reports     *TTLCache[Report]
	logger      *zap.Logger
}

func NewEngine(cfg EngineConfig, directory DirectoryProvider, aggregator *Aggregator, logger *zap.Logger) *Engine {
	if cfg.DirectoryTTL <= 0 {
		cfg.DirectoryTTL = DefaultDirectoryTTL
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = DefaultQuoteTTL
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:         cfg,
		directory:   directory,
		aggregator:  aggregator,
		directories: NewTTLCache[*Directory](),
		reports:     NewTTLCache[Report](),
		logger:      logger,
	}
}

// Directory returns the cached directory, loading it when missing or
// expired. If a reload fails the previous directory keeps being served.
func (e *Engine) Directory(ctx context.Context) (*Directory, error) {
	dir, err := e.directories.GetOrCompute(ctx, directoryKey, e.cfg.DirectoryTTL, e.directory.Load)
	if err == nil {
		return dir, nil
	}
	if stale, ok := e.directories.Stale(directoryKey); ok && stale.Len() > 0 {
		e.logger.Warn("directory reload failed, serving previous listing", zap.Error(err), zap.Int("records", stale.Len()))
		return stale, nil
	}
	if dir == nil {
		dir = NewDirectory(nil)
	}
	return dir, err
}

// Refresh returns the report for watchlist. Results are cached for the
// quote TTL under a fingerprint of the watchlist contents, so any edit to
// the list misses the cache.
//
// The report is shared with every caller waiting on the same key, so it is
// computed on a context detached from ctx's cancellation and bounded by
// RefreshTimeout instead. A refresh that runs out of time is not cached.
func (e *Engine) Refresh(ctx context.Context, watchlist []WatchlistEntry) Report {
	key := Fingerprint(watchlist)
	rep, _ := e.reports.GetOrCompute(ctx, key, e.cfg.QuoteTTL, func(ctx context.Context) (Report, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.RefreshTimeout)
		defer cancel()
		rep, err := e.compute(ctx, watchlist)
		if err == nil && ctx.Err() != nil {
			e.logger.Warn("refresh timed out, not caching", zap.Duration("timeout", e.cfg.RefreshTimeout))
			err = ctx.Err()
		}
		return rep, err
	})
	return rep
}

// compute builds a fresh report. A report made without a directory is
// returned with an error so that it is not cached.
func (e *Engine) compute(ctx context.Context, watchlist []WatchlistEntry) (Report, error) {
	logger := e.logger.With(zap.String("refresh", uuid.NewString()))
	agg := *e.aggregator
	agg.Logger = logger

	if !e.cfg.DirectoryLookup {
		return agg.Aggregate(ctx, NewCodeResolver(), watchlist), nil
	}
	dir, err := e.Directory(ctx)
	if err != nil {
		logger.Error("directory not ready", zap.Error(err))
		rep := agg.Aggregate(ctx, NewResolver(dir), watchlist)
		rep.DirectoryReady = false
		rep.Diagnostics = append([]Diagnostic{{Kind: DiagDirectoryUnavailable, Detail: err.Error()}}, rep.Diagnostics...)
		return rep, err
	}
	return agg.Aggregate(ctx, NewResolver(dir), watchlist), nil
}

// LookupEnabled reports whether names are resolved through the directory.
func (e *Engine) LookupEnabled() bool { return e.cfg.DirectoryLookup }

// ClearCaches empties both caches; the next Refresh or Directory call
// goes upstream.
func (e *Engine) ClearCaches() {
	e.directories.Clear()
	e.reports.Clear()
	e.logger.Info("caches cleared")
}

// Fingerprint hashes the trimmed names and targets of watchlist, in order.
func Fingerprint(watchlist []WatchlistEntry) string {
	var b strings.Builder
	for _, entry := range watchlist {
		b.WriteString(strings.TrimSpace(entry.DisplayName))
		b.WriteByte(0)
		b.WriteString(strconv.FormatInt(entry.TargetPrice, 10))
		b.WriteByte(0x1f)
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16) + "-" + strconv.Itoa(len(watchlist))
}

// IsDirectoryUnavailable reports whether err means no listing could be loaded.
func IsDirectoryUnavailable(err error) bool {
	return errors.Is(err, ErrDirectoryUnavailable)
}
