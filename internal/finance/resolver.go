package finance

import (
	"errors"
	"strings"
)

// ErrUnresolvedSymbol marks a watchlist name with no directory record.
var ErrUnresolvedSymbol = errors.New("unresolved symbol")

// Resolver maps watchlist names to codes by exact, case-sensitive match on
// the trimmed name. Build one per directory load.
type Resolver struct {
	byName map[string]string
	// passthrough resolves bare 6-digit codes to themselves, for
	// watchlists whose names already are codes.
	passthrough bool
}

func NewResolver(dir *Directory) *Resolver {
	r := &Resolver{byName: map[string]string{}}
	if dir != nil {
		r.byName = dir.byName
	}
	return r
}

// NewCodeResolver returns a resolver that needs no directory: an entry
// resolves only when its name is itself a listing code.
func NewCodeResolver() *Resolver {
	return &Resolver{byName: map[string]string{}, passthrough: true}
}

func (r *Resolver) Resolve(entry WatchlistEntry) ResolvedSymbol {
	name := strings.TrimSpace(entry.DisplayName)
	if code, ok := r.byName[name]; ok {
		return ResolvedSymbol{Entry: entry, Code: code, OK: true}
	}
	if r.passthrough && isListingCode(name) {
		return ResolvedSymbol{Entry: entry, Code: name, OK: true}
	}
	return ResolvedSymbol{Entry: entry}
}

// isListingCode reports whether s looks like a KRX short code: six
// characters, digits or upper-case letters, starting with a digit.
func isListingCode(s string) bool {
	if len(s) != 6 || s[0] < '0' || s[0] > '9' {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
