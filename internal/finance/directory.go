package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrDirectoryUnavailable is returned when neither the unified listing nor
// any sub-listing produced records.
var ErrDirectoryUnavailable = errors.New("symbol directory unavailable")

// Listing segments understood by ListingSource implementations.
const (
	SegmentAll    = "ALL"
	SegmentKOSPI  = "STK"
	SegmentKOSDAQ = "KSQ"
)

// ListingSource returns the name/code pairs of one market segment.
type ListingSource interface {
	Listing(ctx context.Context, segment string) ([]DirectoryRecord, error)
}

// Directory is an immutable snapshot of a market listing.
type Directory struct {
	records []DirectoryRecord
	byName  map[string]string
}

// NewDirectory builds a directory from records, trimming names and
// dropping duplicate codes (first occurrence wins).
func NewDirectory(records []DirectoryRecord) *Directory {
	d := &Directory{
		records: make([]DirectoryRecord, 0, len(records)),
		byName:  make(map[string]string, len(records)),
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		code := strings.TrimSpace(r.Code)
		name := strings.TrimSpace(r.Name)
		if code == "" || name == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		d.records = append(d.records, DirectoryRecord{Name: name, Code: code})
		if _, ok := d.byName[name]; !ok {
			d.byName[name] = code
		}
	}
	return d
}

// Len returns the number of records.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the records.
func (d *Directory) Records() []DirectoryRecord {
	if d == nil {
		return nil
	}
	out := make([]DirectoryRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Search returns up to limit records whose name contains term, shortest
// names first. It helps users pick a name; resolution never uses it.
func (d *Directory) Search(term string, limit int) []DirectoryRecord {
	term = strings.TrimSpace(term)
	if d == nil || term == "" {
		return nil
	}
	var out []DirectoryRecord
	for _, r := range d.records {
		if strings.Contains(r.Name, term) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len([]rune(out[i].Name)) < len([]rune(out[j].Name))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DirectoryLoader loads a directory from a listing source, falling back to
// the sub-listings when the unified listing fails or comes back empty.
type DirectoryLoader struct {
	Source      ListingSource
	Unified     string
	SubListings []string
	Logger      *zap.Logger
}

// NewDirectoryLoader returns a loader for the KRX layout: the unified
// listing first, then KOSPI and KOSDAQ.
func NewDirectoryLoader(src ListingSource, logger *zap.Logger) *DirectoryLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryLoader{
		Source:      src,
		Unified:     SegmentAll,
		SubListings: []string{SegmentKOSPI, SegmentKOSDAQ},
		Logger:      logger,
	}
}

// Load fetches a full directory. When every attempt fails it returns an
// empty directory and ErrDirectoryUnavailable.
func (l *DirectoryLoader) Load(ctx context.Context) (*Directory, error) {
	records, err := l.Source.Listing(ctx, l.Unified)
	if err == nil && len(records) > 0 {
		dir := NewDirectory(records)
		l.Logger.Info("directory loaded", zap.String("segment", l.Unified), zap.Int("records", dir.Len()))
		return dir, nil
	}
	if err != nil {
		l.Logger.Warn("unified listing failed", zap.String("segment", l.Unified), zap.Error(err))
	} else {
		l.Logger.Warn("unified listing empty", zap.String("segment", l.Unified))
	}

	var merged []DirectoryRecord
	var errs []error
	for _, seg := range l.SubListings {
		recs, err := l.Source.Listing(ctx, seg)
		if err != nil {
			l.Logger.Warn("sub-listing failed", zap.String("segment", seg), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", seg, err))
			continue
		}
		merged = append(merged, recs...)
	}
	dir := NewDirectory(merged)
	if dir.Len() == 0 {
		if len(errs) == 0 {
			return dir, ErrDirectoryUnavailable
		}
		return dir, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, errors.Join(errs...))
	}
	l.Logger.Info("directory loaded from sub-listings", zap.Strings("segments", l.SubListings), zap.Int("records", dir.Len()))
	return dir, nil
}
