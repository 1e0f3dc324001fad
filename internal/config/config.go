package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"watchlistBot/internal/finance"
)

type Config struct {
	TelegramToken    string
	WebhookPublicURL string
	OpenAIKey        string
	Port             string
	DBPath           string
	LogLevel         string
	ListingURL       string
	BoardToken       string
	Engine           Engine
}

// Engine holds the quote engine settings.
type Engine struct {
	DirectoryTTL    time.Duration
	QuoteTTL        time.Duration
	QuoteTimeout    time.Duration
	RefreshTimeout  time.Duration
	Concurrency     int
	Suffixes        []finance.QuoteCandidate
	DirectoryLookup bool
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() Config {
	_ = godotenv.Load()
	eng, err := LoadEngine()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return Config{
		TelegramToken:    mustEnv("TELEGRAM_BOT_TOKEN"),
		WebhookPublicURL: mustEnv("WEBHOOK_PUBLIC_URL"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		Port:             envOr("PORT", "9095"),
		DBPath:           envOr("DB_PATH", "/app/data/watchlist.db"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		ListingURL:       envOr("LISTING_URL", finance.DefaultListingURL),
		BoardToken:       os.Getenv("BOARD_TOKEN"),
		Engine:           eng,
	}
}

// LoadEngine reads the engine settings, defaulting every missing key.
func LoadEngine() (Engine, error) {
	eng := Engine{
		DirectoryTTL:    finance.DefaultDirectoryTTL,
		QuoteTTL:        finance.DefaultQuoteTTL,
		QuoteTimeout:    finance.DefaultQuoteTimeout,
		RefreshTimeout:  finance.DefaultRefreshTimeout,
		Concurrency:     finance.DefaultConcurrency,
		Suffixes:        finance.DefaultCandidates,
		DirectoryLookup: true,
	}
	var err error
	if eng.DirectoryTTL, err = durationEnv("DIRECTORY_TTL", eng.DirectoryTTL); err != nil {
		return eng, err
	}
	if eng.QuoteTTL, err = durationEnv("QUOTE_TTL", eng.QuoteTTL); err != nil {
		return eng, err
	}
	if eng.QuoteTimeout, err = durationEnv("QUOTE_TIMEOUT", eng.QuoteTimeout); err != nil {
		return eng, err
	}
	if eng.RefreshTimeout, err = durationEnv("REFRESH_TIMEOUT", eng.RefreshTimeout); err != nil {
		return eng, err
	}
	if v := os.Getenv("QUOTE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return eng, fmt.Errorf("invalid QUOTE_CONCURRENCY %q", v)
		}
		eng.Concurrency = n
	}
	if v := os.Getenv("QUOTE_SUFFIXES"); v != "" {
		eng.Suffixes = ParseSuffixes(v)
		if len(eng.Suffixes) == 0 {
			return eng, fmt.Errorf("invalid QUOTE_SUFFIXES %q", v)
		}
	}
	if v := os.Getenv("DIRECTORY_LOOKUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return eng, fmt.Errorf("invalid DIRECTORY_LOOKUP %q", v)
		}
		eng.DirectoryLookup = b
	}
	return eng, nil
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("invalid %s %q", k, v)
	}
	return d, nil
}

// ParseSuffixes splits a comma separated suffix list, adding the leading
// dot when missing.
func ParseSuffixes(s string) []finance.QuoteCandidate {
	var out []finance.QuoteCandidate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, finance.QuoteCandidate(strings.ToUpper(part)))
	}
	return out
}
