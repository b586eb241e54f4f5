// Package telegram wires the optional Telegram front end.
package telegram

import (
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/telegram/handlers"
)

// NewTelegramBot creates a go-telegram/bot instance for token.
func NewTelegramBot(token string, log *zap.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", zap.Error(err))
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created", zap.String("token_prefix", tokenPrefix(token)))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// applyMiddleware wraps handler so that mw[0] is the outermost layer.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers every handler in registered with b.
func RegisterHandlers(b *bot.Bot, log *zap.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("handler_registry")

	if len(registered) == 0 {
		log.Warn("No handlers provided for registration")
		return nil
	}

	for name, h := range registered {
		if h.Handler == nil {
			log.Warn("Skipping nil handler", zap.String("name", name))
			continue
		}
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, applyMiddleware(h.Handler, h.Middleware))
		log.Debug("Registered handler",
			zap.String("name", name),
			zap.String("pattern", h.Pattern),
			zap.Int("middleware_count", len(h.Middleware)))
	}

	log.Info("Registered Telegram handlers", zap.Int("count", len(registered)))
	return nil
}
