// Package logger provides structured logging for IntillaSense.
// It builds zap loggers with configurable level and encoding and
// supplies request logging middleware for the HTTP and Telegram front ends.
package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New creates a zap logger with the specified level and format.
// If jsonOutput is true, logs are JSON encoded, otherwise human readable console lines.
// The logger also replaces zap's globals.
func New(levelStr string, jsonOutput bool) (*zap.Logger, error) {
	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(levelStr))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	zap.ReplaceGlobals(log)
	return log, nil
}

// GinMiddleware logs every HTTP request after it has been served.
func GinMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
		}
		if reqID, ok := c.Get(RequestIDKey); ok {
			fields = append(fields, zap.Any("request_id", reqID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}

// RequestIDKey is the gin context key holding the request id, if any.
const RequestIDKey = "request_id"

// TelegramMiddleware logs information about incoming Telegram updates.
func TelegramMiddleware(log *zap.Logger) bot.Middleware {
	log = log.Named("telegram")
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			entry := log.With(zap.Int64("update_id", update.ID))
			if msg := update.Message; msg != nil {
				text := msg.Text
				if text == "" {
					text = msg.Caption
				}
				entry = entry.With(
					zap.Int("message_id", msg.ID),
					zap.Int64("chat_id", msg.Chat.ID),
					zap.Bool("has_photo", len(msg.Photo) > 0),
					zap.String("text_preview", truncateString(text, 50)),
				)
				if msg.From != nil {
					entry = entry.With(zap.Int64("user_id", msg.From.ID))
				}
			}

			entry.Debug("Processing update")
			next(ctx, b, update)
			entry.Info("Finished processing update", zap.Duration("duration", time.Since(startTime)))
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
