// Package advisor talks to the hosted completion endpoint. It turns a farm
// context, the farmer's question, an optional field photo and prior chat
// turns into a prompt, and returns either raw model text or a decoded
// TillageRecommendation.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/edgard/intillasense/internal/farm"
)

// Errors returned by Complete and the request helpers.
var (
	ErrMissingAPIKey   = errors.New("completion API key is not configured")
	ErrSchemaViolation = errors.New("model reply does not match the recommendation schema")
	ErrEmptyResponse   = errors.New("model returned an empty response")
	ErrInvalidImage    = errors.New("invalid image payload")
	ErrInvalidHistory  = errors.New("invalid chat history")
)

var tracer = otel.Tracer("github.com/edgard/intillasense/internal/advisor")

// Mode selects how the model reply is constrained.
type Mode string

// Supported response modes.
const (
	ModeStructured Mode = "structured"
	ModeText       Mode = "text"
)

// ParseMode maps a request value to a Mode. An empty value yields def.
func ParseMode(s string, def Mode) (Mode, error) {
	switch Mode(s) {
	case "":
		return def, nil
	case ModeStructured, ModeText:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown response mode %q", s)
	}
}

// Request is everything needed for one completion.
type Request struct {
	Farm    farm.Context
	Text    string
	Image   *Image
	History []json.RawMessage
	Mode    Mode
	Now     time.Time
}

// Reply is the model answer. Text always carries the raw content;
// Recommendation is set only in structured mode.
type Reply struct {
	Mode           Mode
	Text           string
	Recommendation *TillageRecommendation
	Model          string
}

// Client sends completion requests to a model provider.
type Client interface {
	Complete(ctx context.Context, req Request) (*Reply, error)
}

// finish turns raw model output into a Reply for the requested mode.
func finish(mode Mode, model, raw string) (*Reply, error) {
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	reply := &Reply{Mode: mode, Text: raw, Model: model}
	if mode != ModeStructured {
		return reply, nil
	}
	rec, err := DecodeRecommendation([]byte(raw))
	if err != nil {
		return nil, err
	}
	reply.Recommendation = rec
	return reply, nil
}
