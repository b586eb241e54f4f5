package recommend

import (
	"encoding/json"
	"strings"

	"github.com/edgard/intillasense/internal/advisor"
)

// ChatRequest is a farmer's question as received from any front end.
type ChatRequest struct {
	FarmNum     int               `json:"farmNum"`
	Text        string            `json:"text"         validate:"max=8000"`
	Voice       string            `json:"voice"        validate:"max=8000"`
	Image       string            `json:"image"`
	ChatHistory []json.RawMessage `json:"chat_history" validate:"max=100"`
	Mode        string            `json:"mode"`

	// Channel names the front end; empty means HTTP.
	Channel string `json:"-"`
	// RequestID correlates the exchange with front end logs; empty means
	// a fresh id is generated.
	RequestID string `json:"-"`
}

// NewChatRequest returns a request for farmNum and text without an image.
func NewChatRequest(farmNum int, text string) ChatRequest {
	return ChatRequest{FarmNum: farmNum, Text: text, Image: advisor.NoImage}
}

// question joins the typed text and the voice transcript.
func (r ChatRequest) question() string {
	var parts []string
	for _, p := range []string{r.Text, r.Voice} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

func (r ChatRequest) channel() string {
	if r.Channel == "" {
		return ChannelHTTP
	}
	return r.Channel
}
