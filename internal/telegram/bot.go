package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"watchlistBot/internal/finance"
	"watchlistBot/internal/openai"
	"watchlistBot/internal/storage"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	h      *Handlers
	logger *zap.Logger
}

func NewBot(token, webhookURL string, store *storage.Store, engine *finance.Engine, openAIKey string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	// set webhook
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	logger.Info("telegram: webhook set", zap.String("url", webhookURL))

	var briefer *openai.Briefer
	if openAIKey != "" {
		briefer = openai.NewBriefer(openAIKey)
	}
	h := NewHandlers(api, store, engine, briefer, logger)

	return &Bot{api: api, h: h, logger: logger}, nil
}

// Webhook HTTP handler (registered at /telegram/webhook)
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if update.Message != nil {
		b.logger.Debug("webhook: message",
			zap.Int64("chat_id", update.Message.Chat.ID),
			zap.String("text", update.Message.Text))
		go b.h.HandleMessage(update.Message)
	} else {
		b.logger.Debug("webhook: non-message update received")
	}
	w.WriteHeader(http.StatusOK)
}
