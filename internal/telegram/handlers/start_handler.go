package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "start", text: welcomeMsg}.Handle
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "help", text: usageMsg}.Handle
}

// staticHandler answers a command with fixed text.
type staticHandler struct {
	deps HandlerDeps
	name string
	text string
}

func (h staticHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.logger().With(zap.String("handler", h.name))

	if update.Message == nil {
		log.Warn("Received update without message", zap.Int64("update_id", update.ID))
		return
	}
	chatID := update.Message.Chat.ID

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.text}); err != nil {
		log.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}
	log.Debug("Sent message", zap.Int64("chat_id", chatID))
}
