package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"watchlistBot/internal/finance"
	"watchlistBot/internal/openai"
	"watchlistBot/internal/storage"
)

var (
	// /add NAME TARGET (name may contain spaces, target may use thousands separators)
	reAdd = regexp.MustCompile(`^/add(?:@[\w_]+)?\s+(.+?)\s+(\d[\d,]*)$`)
	// /target NAME PRICE
	reTarget = regexp.MustCompile(`^/target(?:@[\w_]+)?\s+(.+?)\s+(\d[\d,]*)$`)
	// /remove NAME
	reRemove = regexp.MustCompile(`^/remove(?:@[\w_]+)?\s+(.+)$`)
	// /search TERM
	reSearch = regexp.MustCompile(`^/search(?:@[\w_]+)?\s+(.+)$`)
	reList   = regexp.MustCompile(`^/list(?:@[\w_]+)?$`)
	reBoard  = regexp.MustCompile(`^/board(?:@[\w_]+)?$`)
	// /refresh drops the caches first
	reRefresh = regexp.MustCompile(`^/refresh(?:@[\w_]+)?$`)
	reChart   = regexp.MustCompile(`^/chart(?:@[\w_]+)?$`)
	reBrief   = regexp.MustCompile(`^/brief(?:@[\w_]+)?$`)
	reHelp    = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

const (
	commandTimeout = 45 * time.Second
	searchLimit    = 10
)

// command is a parsed chat command.
type command struct {
	name  string
	arg   string
	price int64
}

// parseCommand recognises the bot commands in txt.
func parseCommand(txt string) (command, bool) {
	txt = strings.TrimSpace(txt)
	switch {
	case reAdd.MatchString(txt):
		g := reAdd.FindStringSubmatch(txt)
		p, err := parsePrice(g[2])
		if err != nil {
			return command{}, false
		}
		return command{name: "add", arg: strings.TrimSpace(g[1]), price: p}, true
	case reTarget.MatchString(txt):
		g := reTarget.FindStringSubmatch(txt)
		p, err := parsePrice(g[2])
		if err != nil {
			return command{}, false
		}
		return command{name: "target", arg: strings.TrimSpace(g[1]), price: p}, true
	case reRemove.MatchString(txt):
		return command{name: "remove", arg: strings.TrimSpace(reRemove.FindStringSubmatch(txt)[1])}, true
	case reSearch.MatchString(txt):
		return command{name: "search", arg: strings.TrimSpace(reSearch.FindStringSubmatch(txt)[1])}, true
	case reList.MatchString(txt):
		return command{name: "list"}, true
	case reBoard.MatchString(txt):
		return command{name: "board"}, true
	case reRefresh.MatchString(txt):
		return command{name: "refresh"}, true
	case reChart.MatchString(txt):
		return command{name: "chart"}, true
	case reBrief.MatchString(txt):
		return command{name: "brief"}, true
	case reHelp.MatchString(txt):
		return command{name: "help"}, true
	}
	return command{}, false
}

func parsePrice(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}

// sender is the part of tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handlers struct {
	api     sender
	store   *storage.Store
	engine  *finance.Engine
	briefer *openai.Briefer
	logger  *zap.Logger
}

func NewHandlers(api sender, store *storage.Store, engine *finance.Engine, briefer *openai.Briefer, logger *zap.Logger) *Handlers {
	return &Handlers{
		api:     api,
		store:   store,
		engine:  engine,
		briefer: briefer,
		logger:  logger,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	cmd, ok := parseCommand(m.Text)
	if !ok {
		return
	}
	chatID := m.Chat.ID
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	h.logger.Info("command", zap.Int64("chat_id", chatID), zap.String("cmd", cmd.name))

	switch cmd.name {
	case "add":
		h.handleAdd(ctx, chatID, cmd.arg, cmd.price)
	case "remove":
		h.handleRemove(chatID, cmd.arg)
	case "target":
		h.handleTarget(chatID, cmd.arg, cmd.price)
	case "list":
		h.handleList(chatID)
	case "search":
		h.handleSearch(ctx, chatID, cmd.arg)
	case "board":
		h.handleBoard(ctx, chatID)
	case "refresh":
		h.engine.ClearCaches()
		h.handleBoard(ctx, chatID)
	case "chart":
		h.handleChart(ctx, chatID)
	case "brief":
		h.handleBrief(ctx, chatID)
	case "help":
		h.handleHelp(chatID)
	}
}

func (h *Handlers) watchlist(chatID int64) ([]finance.WatchlistEntry, bool) {
	entries, err := h.store.Watchlist(chatID, time.Now().Unix())
	if err != nil {
		h.logger.Error("load watchlist", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(chatID, "Couldn’t load your watchlist, please try again.")
		return nil, false
	}
	if len(entries) == 0 {
		h.reply(chatID, "Your watchlist is empty. Add a stock with /add NAME TARGET, e.g. /add 삼성전자 80000")
		return nil, false
	}
	return entries, true
}

func (h *Handlers) handleAdd(ctx context.Context, chatID int64, name string, target int64) {
	// Make sure the chat is seeded before its first explicit addition.
	if _, err := h.store.Watchlist(chatID, time.Now().Unix()); err != nil {
		h.reply(chatID, "Add failed: "+err.Error())
		return
	}
	err := h.store.AddEntry(chatID, finance.WatchlistEntry{DisplayName: name, TargetPrice: target})
	if errors.Is(err, storage.ErrExists) {
		h.reply(chatID, fmt.Sprintf("%s is already on your watchlist, use /target to change its target.", name))
		return
	}
	if err != nil {
		h.reply(chatID, "Add failed: "+err.Error())
		return
	}
	msg := fmt.Sprintf("Added %s with target %s.", name, finance.Won(target))
	// Warn early about names the directory does not know.
	if !h.engine.LookupEnabled() {
		h.reply(chatID, msg)
		return
	}
	if dir, err := h.engine.Directory(ctx); err == nil && dir.Len() > 0 {
		if rs := finance.NewResolver(dir).Resolve(finance.WatchlistEntry{DisplayName: name}); !rs.OK {
			msg += " This name is not in the listing yet, see /search " + name
		}
	}
	h.reply(chatID, msg)
}

func (h *Handlers) handleRemove(chatID int64, name string) {
	ok, err := h.store.RemoveEntry(chatID, name)
	switch {
	case err != nil:
		h.reply(chatID, "Remove failed: "+err.Error())
	case !ok:
		h.reply(chatID, name+" is not on your watchlist.")
	default:
		h.reply(chatID, "Removed "+name+".")
	}
}

func (h *Handlers) handleTarget(chatID int64, name string, target int64) {
	ok, err := h.store.SetTarget(chatID, name, target)
	switch {
	case err != nil:
		h.reply(chatID, "Update failed: "+err.Error())
	case !ok:
		h.reply(chatID, name+" is not on your watchlist.")
	default:
		h.reply(chatID, fmt.Sprintf("Target for %s set to %s.", name, finance.Won(target)))
	}
}

func (h *Handlers) handleList(chatID int64) {
	entries, ok := h.watchlist(chatID)
	if !ok {
		return
	}
	var b strings.Builder
	b.WriteString("📋 Watchlist\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s • target %s\n", i+1, e.DisplayName, finance.Won(e.TargetPrice))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *Handlers) handleSearch(ctx context.Context, chatID int64, term string) {
	dir, err := h.engine.Directory(ctx)
	if finance.IsDirectoryUnavailable(err) {
		h.reply(chatID, "The symbol directory is not ready yet, try again shortly.")
		return
	}
	hits := dir.Search(term, searchLimit)
	if len(hits) == 0 {
		h.reply(chatID, "No listed name contains "+term+".")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 %s\n", term)
	for _, r := range hits {
		fmt.Fprintf(&b, "%s (%s)\n", r.Name, r.Code)
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *Handlers) board(ctx context.Context, chatID int64) (finance.Report, bool) {
	entries, ok := h.watchlist(chatID)
	if !ok {
		return finance.Report{}, false
	}
	return h.engine.Refresh(ctx, entries), true
}

func (h *Handlers) handleBoard(ctx context.Context, chatID int64) {
	rep, ok := h.board(ctx, chatID)
	if !ok {
		return
	}
	h.reply(chatID, finance.FormatBoard(rep))
}

func (h *Handlers) handleChart(ctx context.Context, chatID int64) {
	rep, ok := h.board(ctx, chatID)
	if !ok {
		return
	}
	img, err := finance.MakeBoardChart(rep.Snapshots, rep.GeneratedAt)
	if err != nil {
		h.reply(chatID, "Chart failed: "+err.Error())
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "board.png", Bytes: img})
	photo.Caption = fmt.Sprintf("Target achievement • %d stocks", len(rep.Snapshots))
	h.send(photo)
}

func (h *Handlers) handleBrief(ctx context.Context, chatID int64) {
	if h.briefer == nil {
		h.reply(chatID, "Briefs are not enabled on this bot.")
		return
	}
	rep, ok := h.board(ctx, chatID)
	if !ok {
		return
	}
	out, err := h.briefer.Brief(ctx, rep)
	if err != nil {
		h.reply(chatID, "Brief failed: "+err.Error())
		return
	}
	h.reply(chatID, out)
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /board - Current price, daily change and target achievement for your watchlist\n" +
		"- /refresh - Same as /board but fetches fresh quotes now\n" +
		"- /chart - Achievement bar chart\n" +
		"- /add NAME TARGET - Add a stock by its listed name, e.g. /add 삼성전자 80000\n" +
		"- /target NAME PRICE - Change a target\n" +
		"- /remove NAME - Remove a stock\n" +
		"- /list - Show your watchlist\n" +
		"- /search TERM - Find listed names containing TERM\n" +
		"- /brief - Short commentary on the board\n" +
		"\nQuotes are cached for a minute; the listing is refreshed hourly."
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handlers) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.logger.Warn("telegram send failed", zap.Error(err))
	}
}
