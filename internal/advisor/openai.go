package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
)

// openAIClient implements Client against any OpenAI-compatible chat
// completion endpoint.
type openAIClient struct {
	api         *openai.Client
	hasKey      bool
	model       string
	temperature float32
	cfg         config.AIConfig
	retry       retryPolicy
	log         *zap.Logger
}

// NewOpenAIClient creates a Client for the OpenAI chat completion API.
// A missing API key is not an error here; Complete reports it.
func NewOpenAIClient(cfg config.AIConfig, log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}

	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oaiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &openAIClient{
		api:         openai.NewClientWithConfig(oaiCfg),
		hasKey:      cfg.HasAPIKey(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		cfg:         cfg,
		retry:       retryPolicy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		log:         log.Named("advisor").With(zap.String("provider", "openai")),
	}
	c.log.Info("OpenAI client initialized", zap.String("model", cfg.Model), zap.String("base_url", oaiCfg.BaseURL))
	return c
}

// Complete implements Client.
func (c *openAIClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "advisor.openai.Complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("llm.mode", string(req.Mode)),
		attribute.Bool("request.has_image", req.Image != nil),
		attribute.Int("farm.id", int(req.Farm.FarmID)),
	)

	if !c.hasKey {
		span.SetStatus(codes.Error, ErrMissingAPIKey.Error())
		return nil, ErrMissingAPIKey
	}

	chatReq, err := c.buildRequest(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.log.Debug("Requesting chat completion",
		zap.Int("messages", len(chatReq.Messages)),
		zap.Bool("has_image", req.Image != nil),
		zap.String("mode", string(req.Mode)))

	resp, err := callWithRetries(ctx, c.log, c.retry, func() (openai.ChatCompletionResponse, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.api.CreateChatCompletion(attemptCtx, chatReq)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		c.log.Error("Chat completion failed", zap.Error(err))
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", resp.Usage.CompletionTokens),
	)
	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return nil, ErrEmptyResponse
	}

	reply, err := finish(req.Mode, resp.Model, strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("Unusable completion", zap.Error(err), zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
		return nil, err
	}
	return reply, nil
}

func (c *openAIClient) buildRequest(req Request) (openai.ChatCompletionRequest, error) {
	messages, err := buildOpenAIMessages(req)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
	if req.Mode == ModeStructured {
		schema, err := RecommendationSchema()
		if err != nil {
			return openai.ChatCompletionRequest{}, fmt.Errorf("recommendation schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        recommendationSchemaName,
				Description: "Tillage recommendation for the farmer's question",
				Schema:      schema,
				Strict:      true,
			},
		}
	}
	return chatReq, nil
}

// buildOpenAIMessages lays out the system instruction, the optional history
// message and the user turn. The user turn is a single text part, or a text
// part followed by an image_url part when a photo is attached.
func buildOpenAIMessages(req Request) ([]openai.ChatCompletionMessage, error) {
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(req),
	}}

	history, err := BuildHistoryMessage(req.History)
	if err != nil {
		return nil, err
	}
	if history != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: history,
		})
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Text}}
	if req.Image != nil {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    req.Image.DataURL(),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})
	return messages, nil
}
