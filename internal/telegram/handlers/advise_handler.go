package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/recommend"
)

const (
	aiProcessingTimeout = 3 * time.Minute
	sendMessageTimeout  = 10 * time.Second
)

// ErrBadCommand is returned for /advise commands that cannot be parsed.
var ErrBadCommand = errors.New("bad /advise command")

// NewAdviseHandler returns a handler for /advise, either as a text message
// or as a photo caption.
func NewAdviseHandler(deps HandlerDeps) bot.HandlerFunc {
	return adviseHandler{deps}.Handle
}

type adviseHandler struct {
	deps HandlerDeps
}

func (h adviseHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.logger().With(zap.String("handler", "advise"))

	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	log = log.With(zap.Int64("chat_id", chatID), zap.Int("message_id", msg.ID))

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	farmNum, question, err := ParseAdviseCommand(text)
	if err != nil {
		log.Info("Rejected /advise command", zap.Error(err))
		h.reply(ctx, b, msg, adviseUsageMsg)
		return
	}

	req := recommend.NewChatRequest(farmNum, question)
	req.Channel = recommend.ChannelTelegram
	req.RequestID = fmt.Sprintf("tg-%d", update.ID)

	if photo, ok := LargestPhoto(msg.Photo); ok {
		data, err := DownloadPhoto(ctx, b, h.deps, photo.FileID)
		if err != nil {
			log.Error("Photo download failed", zap.Error(err), zap.String("file_id", photo.FileID))
			h.reply(ctx, b, msg, photoErrorMsg)
			return
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()
	res, err := h.deps.Service.Handle(aiCtx, req)
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		h.reply(ctx, b, msg, "I can't answer that: "+err.Error())
		return
	case err != nil:
		log.Error("Recommendation failed", zap.Error(err))
		h.reply(ctx, b, msg, generalErrorMsg)
		return
	}

	log.Info("Answered /advise", zap.String("request_id", res.RequestID), zap.Int("farm_id", farmNum))
	h.reply(ctx, b, msg, RenderReply(res.Reply))
}

func (h adviseHandler) reply(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	_, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		h.deps.logger().Error("Failed to send reply", zap.Error(err), zap.Int64("chat_id", msg.Chat.ID))
	}
}

// ParseAdviseCommand splits "/advise <farm> <question>" into its parts.
// The command may carry a bot username suffix. The question may be empty
// when a photo is attached.
func ParseAdviseCommand(text string) (int, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("%w: empty message", ErrBadCommand)
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	if cmd != "/advise" {
		return 0, "", fmt.Errorf("%w: unexpected command %q", ErrBadCommand, fields[0])
	}
	if len(fields) < 2 {
		return 0, "", fmt.Errorf("%w: missing farm number", ErrBadCommand)
	}
	farmNum, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: farm number %q is not a number", ErrBadCommand, fields[1])
	}

	rest := strings.TrimPrefix(strings.TrimSpace(text), fields[0])
	rest = strings.TrimPrefix(strings.TrimSpace(rest), fields[1])
	return farmNum, strings.TrimSpace(rest), nil
}

// LargestPhoto picks the highest resolution size of a photo.
func LargestPhoto(sizes []models.PhotoSize) (models.PhotoSize, bool) {
	var best models.PhotoSize
	found := false
	for _, p := range sizes {
		if !found || p.Width*p.Height > best.Width*best.Height {
			best = p
			found = true
		}
	}
	return best, found
}

// RenderReply formats a model reply as plain text for a chat message.
func RenderReply(reply *advisor.Reply) string {
	if reply == nil {
		return generalErrorMsg
	}
	if reply.Mode == advisor.ModeText || reply.Recommendation == nil {
		return truncate(reply.Text)
	}
	rec := reply.Recommendation

	var sb strings.Builder
	sb.WriteString(rec.ResponseToUser)
	sb.WriteString("\n\nRecommended: ")
	writeChoice(&sb, rec.PrimaryOption)
	if len(rec.AlternativeOptions) > 0 {
		sb.WriteString("\n\nAlternatives:")
		for _, alt := range rec.AlternativeOptions {
			sb.WriteString("\n- ")
			writeChoice(&sb, alt)
		}
	}

	w := rec.OptimalTillageDates
	fmt.Fprintf(&sb, "\n\nWhen: %s to %s. %s", w.StartDate, w.EndDate, w.Rationale)

	f := rec.Factors
	fmt.Fprintf(&sb, "\n\nFactors: soil %s, rainfall %s, previous crop %s", f.SoilType, f.RainfallTrend, f.PreviousCrop)

	if len(rec.Benefits) > 0 {
		sb.WriteString("\n\nBenefits:")
		for _, benefit := range rec.Benefits {
			sb.WriteString("\n- ")
			sb.WriteString(benefit)
		}
	}

	if rec.Explanation != "" {
		sb.WriteString("\n\n")
		sb.WriteString(rec.Explanation)
	}
	return truncate(sb.String())
}

func writeChoice(sb *strings.Builder, c advisor.EquipmentChoice) {
	fmt.Fprintf(sb, "%s with %s (%s), $%.2f/acre, $%.2f total", c.Method, c.Equipment, c.Owner, c.CostPerAcre, c.TotalCost)
}

// maxMessageRunes is Telegram's message length limit.
const maxMessageRunes = 4096

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageRunes {
		return s
	}
	return string(r[:maxMessageRunes-3]) + "..."
}
