package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"watchlistBot/internal/finance"
	"watchlistBot/internal/storage"
)

func NewHTTPMux(webhook http.HandlerFunc, board http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/telegram/webhook", webhook)
	mux.HandleFunc("GET /api/board", board)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	return mux
}

// Refresher is the part of the engine the board endpoint needs.
type Refresher interface {
	Refresh(ctx context.Context, watchlist []finance.WatchlistEntry) finance.Report
}

// BoardHandler serves the report of a chat's watchlist as JSON (GET /api/board?chat=ID).
// When token is set requests must carry it as a bearer token. Only chats
// that already talked to the bot are served; nothing is written.
func BoardHandler(store *storage.Store, engine Refresher, token string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		chatID, err := strconv.ParseInt(r.URL.Query().Get("chat"), 10, 64)
		if err != nil {
			http.Error(w, "chat must be a numeric id", http.StatusBadRequest)
			return
		}
		entries, found, err := store.SavedWatchlist(chatID)
		if err != nil {
			logger.Error("board: load watchlist", zap.Int64("chat_id", chatID), zap.Error(err))
			http.Error(w, "watchlist unavailable", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "unknown chat", http.StatusNotFound)
			return
		}
		rep := engine.Refresh(r.Context(), entries)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rep); err != nil {
			logger.Warn("board: encode", zap.Error(err))
		}
	}
}

func ListenAndServe(addr string, mux *http.ServeMux) error {
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return srv.ListenAndServe()
}
