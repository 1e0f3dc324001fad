package storage

import (
	"database/sql"
	"errors"
	"strings"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"watchlistBot/internal/finance"
)

// ErrExists is returned when adding a name already on the chat's watchlist.
var ErrExists = errors.New("entry already on the watchlist")

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
}

type Store struct {
	db   DB
	seed []finance.WatchlistEntry
}

// DefaultSeed is the watchlist a chat starts with.
var DefaultSeed = []finance.WatchlistEntry{{DisplayName: "삼성전자", TargetPrice: 80000}}

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chats(
		chat_id INTEGER PRIMARY KEY, created_at INTEGER
	);
	CREATE TABLE IF NOT EXISTS watchlist(
		chat_id INTEGER, position INTEGER, name TEXT, target INTEGER,
		PRIMARY KEY(chat_id, name)
	)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db, seed: DefaultSeed} }

// WithSeed replaces the entries a new chat starts with.
func (s *Store) WithSeed(seed []finance.WatchlistEntry) *Store {
	s.seed = seed
	return s
}

// Watchlist returns the chat's entries in insertion order. A chat seen for
// the first time is seeded with the default entries.
func (s *Store) Watchlist(chatID int64, now int64) ([]finance.WatchlistEntry, error) {
	res, err := s.db.Exec(`INSERT OR IGNORE INTO chats(chat_id, created_at) VALUES(?, ?)`, chatID, now)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		for _, e := range s.seed {
			if err := s.AddEntry(chatID, e); err != nil && !errors.Is(err, ErrExists) {
				return nil, err
			}
		}
	}

	return s.entries(chatID)
}

// SavedWatchlist returns the chat's entries without seeding. found is false
// for a chat the bot has never seen.
func (s *Store) SavedWatchlist(chatID int64) (entries []finance.WatchlistEntry, found bool, err error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chats WHERE chat_id=?`, chatID).Scan(&n); err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	entries, err = s.entries(chatID)
	return entries, true, err
}

func (s *Store) entries(chatID int64) ([]finance.WatchlistEntry, error) {
	rows, err := s.db.Query(`SELECT name, target FROM watchlist WHERE chat_id=? ORDER BY position ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []finance.WatchlistEntry
	for rows.Next() {
		var e finance.WatchlistEntry
		if err := rows.Scan(&e.DisplayName, &e.TargetPrice); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddEntry appends an entry to the end of the chat's watchlist.
func (s *Store) AddEntry(chatID int64, e finance.WatchlistEntry) error {
	name := strings.TrimSpace(e.DisplayName)
	var pos int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM watchlist WHERE chat_id=?`, chatID).Scan(&pos); err != nil {
		return err
	}
	res, err := s.db.Exec(`INSERT OR IGNORE INTO watchlist(chat_id, position, name, target) VALUES(?,?,?,?)`,
		chatID, pos, name, e.TargetPrice)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExists
	}
	return nil
}

// RemoveEntry deletes name from the chat's watchlist and reports whether it was there.
func (s *Store) RemoveEntry(chatID int64, name string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM watchlist WHERE chat_id=? AND name=?`, chatID, strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetTarget updates the target price of name and reports whether it was there.
func (s *Store) SetTarget(chatID int64, name string, target int64) (bool, error) {
	res, err := s.db.Exec(`UPDATE watchlist SET target=? WHERE chat_id=? AND name=?`, target, chatID, strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
