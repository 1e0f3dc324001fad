package finance

import (
	"fmt"
	"time"
)

// WatchlistEntry is one row of a user's watchlist: an instrument name and a target price.
type WatchlistEntry struct {
	DisplayName string
	TargetPrice int64
}

// DirectoryRecord maps a listed instrument name to its exchange code.
type DirectoryRecord struct {
	Name string
	Code string
}

// ResolvedSymbol is the outcome of looking an entry up in the directory.
type ResolvedSymbol struct {
	Entry WatchlistEntry
	Code  string
	OK    bool
}

// QuoteCandidate is a venue suffix appended to a code, e.g. ".KS" for KOSPI.
type QuoteCandidate string

// Closes holds the two most recent daily closes and the symbol that produced them.
type Closes struct {
	Current  float64
	Previous float64
	Symbol   string
}

// QuoteSnapshot is the per-entry result handed to the UI.
type QuoteSnapshot struct {
	DisplayName    string  `json:"name"`
	Code           string  `json:"code"`
	Symbol         string  `json:"symbol"`
	CurrentClose   int64   `json:"current"`
	TargetPrice    int64   `json:"target"`
	AchievementPct float64 `json:"achievement_pct"`
	DailyChangePct float64 `json:"daily_change_pct"`
}

// DiagKind classifies why an entry is missing from a report.
type DiagKind string

const (
	DiagDirectoryUnavailable DiagKind = "directory_unavailable"
	DiagUnresolved           DiagKind = "unresolved"
	DiagNoData               DiagKind = "no_data"
)

// Diagnostic records an entry dropped from a refresh.
type Diagnostic struct {
	Kind   DiagKind `json:"kind"`
	Name   string   `json:"name,omitempty"`
	Code   string   `json:"code,omitempty"`
	Detail string   `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagUnresolved:
		return fmt.Sprintf("%s: could not resolve", d.Name)
	case DiagNoData:
		return fmt.Sprintf("(%s, %s): no data found", d.Name, d.Code)
	case DiagDirectoryUnavailable:
		return "directory not ready: " + d.Detail
	}
	return string(d.Kind)
}

// Report is the result of one Refresh.
type Report struct {
	Snapshots      []QuoteSnapshot `json:"snapshots"`
	Diagnostics    []Diagnostic    `json:"diagnostics"`
	DirectoryReady bool            `json:"directory_ready"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields).
// Closes are pointers since Yahoo reports null for sessions without a print.
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GmtOffset int    `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// yahooSparkResp mirrors Yahoo v7 spark fallback (trimmed)
type yahooSparkResp struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64    `json:"timestamp"`
				Close     []*float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"spark"`
}

// cacheEntry is a cached value with its expiry.
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL defaults: listings rarely change, quotes should look live.
const (
	DefaultDirectoryTTL = time.Hour
	DefaultQuoteTTL     = 60 * time.Second

	DefaultRefreshTimeout = 30 * time.Second
)
