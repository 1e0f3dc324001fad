package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"watchlistBot/internal/finance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	return NewStore(db)
}

func names(entries []finance.WatchlistEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.DisplayName)
	}
	return out
}

func TestStore_SeedsNewChat(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Watchlist(1, 100)
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSeed) {
		t.Errorf("Watchlist() = %v, want %v", got, DefaultSeed)
	}

	// A chat that removed everything stays empty.
	if ok, err := s.RemoveEntry(1, "삼성전자"); err != nil || !ok {
		t.Fatalf("RemoveEntry() = %v, %v", ok, err)
	}
	got, err = s.Watchlist(1, 200)
	if err != nil || len(got) != 0 {
		t.Errorf("Watchlist() after removal = %v, %v, want empty", got, err)
	}
}

func TestStore_AddKeepsOrder(t *testing.T) {
	s := newTestStore(t).WithSeed(nil)
	for _, e := range []finance.WatchlistEntry{
		{DisplayName: "카카오", TargetPrice: 60000},
		{DisplayName: " SK하이닉스 ", TargetPrice: 200000},
		{DisplayName: "에코프로", TargetPrice: 120000},
	} {
		if err := s.AddEntry(7, e); err != nil {
			t.Fatalf("AddEntry(%v) error = %v", e, err)
		}
	}
	if err := s.AddEntry(7, finance.WatchlistEntry{DisplayName: "카카오", TargetPrice: 1}); !errors.Is(err, ErrExists) {
		t.Errorf("AddEntry() duplicate error = %v, want ErrExists", err)
	}
	if _, err := s.RemoveEntry(7, "SK하이닉스"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEntry(7, finance.WatchlistEntry{DisplayName: "NAVER", TargetPrice: 250000}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Watchlist(7, 100)
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if want := []string{"카카오", "에코프로", "NAVER"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("Watchlist() = %v, want %v", names(got), want)
	}
}

func TestStore_SetTarget(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Watchlist(3, 100); err != nil {
		t.Fatal(err)
	}
	ok, err := s.SetTarget(3, "삼성전자", 95000)
	if err != nil || !ok {
		t.Fatalf("SetTarget() = %v, %v, want true", ok, err)
	}
	ok, err = s.SetTarget(3, "없는회사", 1)
	if err != nil || ok {
		t.Errorf("SetTarget() of a missing name = %v, %v, want false", ok, err)
	}
	got, _ := s.Watchlist(3, 100)
	if len(got) != 1 || got[0].TargetPrice != 95000 {
		t.Errorf("Watchlist() = %v, want target 95000", got)
	}
}

func TestStore_ChatsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddEntry(1, finance.WatchlistEntry{DisplayName: "카카오", TargetPrice: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Watchlist(2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, DefaultSeed) {
		t.Errorf("Watchlist(2) = %v, want only the seed", got)
	}
}

func TestStore_SavedWatchlistDoesNotSeed(t *testing.T) {
	s := newTestStore(t)
	got, found, err := s.SavedWatchlist(9)
	if err != nil || found || got != nil {
		t.Fatalf("SavedWatchlist() of an unknown chat = %v, %v, %v, want nil, false, nil", got, found, err)
	}
	if _, found, _ := s.SavedWatchlist(9); found {
		t.Error("SavedWatchlist() created the chat")
	}

	if _, err := s.Watchlist(9, 100); err != nil {
		t.Fatal(err)
	}
	got, found, err = s.SavedWatchlist(9)
	if err != nil || !found || !reflect.DeepEqual(got, DefaultSeed) {
		t.Errorf("SavedWatchlist() = %v, %v, %v, want the seed", got, found, err)
	}
}
