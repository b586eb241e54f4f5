package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/farm"
)

// NewFarmsHandler returns a handler for the /farms command.
func NewFarmsHandler(deps HandlerDeps) bot.HandlerFunc {
	return farmsHandler{deps}.Handle
}

type farmsHandler struct {
	deps HandlerDeps
}

func (h farmsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.logger().With(zap.String("handler", "farms"))

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	text := RenderFarms(h.deps.Service.Catalog().Profiles())
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.Error("Failed to send farm list", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// RenderFarms formats the farm profiles as a plain text list.
func RenderFarms(profiles []farm.Profile) string {
	if len(profiles) == 0 {
		return noFarmsMsg
	}

	var sb strings.Builder
	for i, p := range profiles {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s (%s), %.1f acres\n", int(p.ID), p.Name, p.Location, p.Acreage)
		if crop := p.PreviousCrop(); crop != "" {
			fmt.Fprintf(&sb, "   Previous crop: %s\n", crop)
		}
		for _, eq := range p.Equipment {
			fmt.Fprintf(&sb, "   - %s, %s: $%.2f/acre ($%.2f total)\n", eq.Implement, eq.Owner, eq.CostPerAcre, eq.TotalCost)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
