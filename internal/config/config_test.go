package config

import (
	"reflect"
	"testing"
	"time"

	"watchlistBot/internal/finance"
)

func TestLoadEngine_Defaults(t *testing.T) {
	for _, k := range []string{"DIRECTORY_TTL", "QUOTE_TTL", "QUOTE_TIMEOUT", "REFRESH_TIMEOUT", "QUOTE_CONCURRENCY", "QUOTE_SUFFIXES", "DIRECTORY_LOOKUP"} {
		t.Setenv(k, "")
	}
	eng, err := LoadEngine()
	if err != nil {
		t.Fatalf("LoadEngine() error = %v", err)
	}
	want := Engine{
		DirectoryTTL:    time.Hour,
		QuoteTTL:        60 * time.Second,
		QuoteTimeout:    finance.DefaultQuoteTimeout,
		RefreshTimeout:  finance.DefaultRefreshTimeout,
		Concurrency:     finance.DefaultConcurrency,
		Suffixes:        []finance.QuoteCandidate{".KS", ".KQ"},
		DirectoryLookup: true,
	}
	if !reflect.DeepEqual(eng, want) {
		t.Errorf("LoadEngine() = %+v, want %+v", eng, want)
	}
}

func TestLoadEngine_Overrides(t *testing.T) {
	t.Setenv("DIRECTORY_TTL", "30m")
	t.Setenv("QUOTE_TTL", "15s")
	t.Setenv("QUOTE_TIMEOUT", "2s")
	t.Setenv("REFRESH_TIMEOUT", "20s")
	t.Setenv("QUOTE_CONCURRENCY", "3")
	t.Setenv("QUOTE_SUFFIXES", "kq, .KS")
	t.Setenv("DIRECTORY_LOOKUP", "false")
	eng, err := LoadEngine()
	if err != nil {
		t.Fatalf("LoadEngine() error = %v", err)
	}
	want := Engine{
		DirectoryTTL:   30 * time.Minute,
		QuoteTTL:       15 * time.Second,
		QuoteTimeout:   2 * time.Second,
		RefreshTimeout: 20 * time.Second,
		Concurrency:    3,
		Suffixes:       []finance.QuoteCandidate{".KQ", ".KS"},
	}
	if !reflect.DeepEqual(eng, want) {
		t.Errorf("LoadEngine() = %+v, want %+v", eng, want)
	}
}

func TestLoadEngine_Invalid(t *testing.T) {
	tests := []struct{ key, value string }{
		{"QUOTE_TTL", "soon"},
		{"QUOTE_TTL", "-1s"},
		{"REFRESH_TIMEOUT", "0s"},
		{"QUOTE_CONCURRENCY", "0"},
		{"QUOTE_SUFFIXES", " , "},
		{"DIRECTORY_LOOKUP", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadEngine(); err == nil {
				t.Errorf("LoadEngine() with %s=%q expected error", tt.key, tt.value)
			}
		})
	}
}
