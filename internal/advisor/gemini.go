package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/edgard/intillasense/internal/config"
)

var equipmentChoiceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"method":      {Type: genai.TypeString, Description: "Tillage method, e.g. strip-till"},
		"equipment":   {Type: genai.TypeString, Description: "Implement or service performing the work"},
		"owner":       {Type: genai.TypeString, Enum: []string{"FARMER", "CO-OP HIRED"}, Description: "Who operates the equipment"},
		"costPerAcre": {Type: genai.TypeNumber, Description: "Cost in US dollars per acre"},
		"totalCost":   {Type: genai.TypeNumber, Description: "Cost per acre multiplied by the farm acreage"},
	},
	Required:         []string{"method", "equipment", "owner", "costPerAcre", "totalCost"},
	PropertyOrdering: []string{"method", "equipment", "owner", "costPerAcre", "totalCost"},
}

var recommendationGenaiSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"responseToUser": {Type: genai.TypeString, Description: "Direct answer to the user's latest question"},
		"benefits": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Benefits of the primary option",
		},
		"factors": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"soilType":      {Type: genai.TypeString, Description: "Dominant soil type of the field"},
				"rainfallTrend": {Type: genai.TypeString, Enum: []string{"increasing", "decreasing", "stable"}, Description: "Recent rainfall trend"},
				"previousCrop":  {Type: genai.TypeString, Description: "Crop grown in the previous season"},
			},
			Required:    []string{"soilType", "rainfallTrend", "previousCrop"},
			Description: "Field factors the recommendation is based on",
		},
		"primaryOption": equipmentChoiceSchema,
		"alternativeOptions": {
			Type:        genai.TypeArray,
			Items:       equipmentChoiceSchema,
			Description: "Exactly two alternative tillage options",
		},
		"explanation": {Type: genai.TypeString, Description: "Narrative summary of the recommendation"},
		"optimalTillageDates": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"startDate": {Type: genai.TypeString, Description: "Window start, YYYY-MM-DD"},
				"endDate":   {Type: genai.TypeString, Description: "Window end, YYYY-MM-DD"},
				"rationale": {Type: genai.TypeString, Description: "Why this window was chosen"},
			},
			Required:    []string{"startDate", "endDate", "rationale"},
			Description: "Best window to perform the tillage",
		},
	},
	Required: []string{"responseToUser", "benefits", "factors", "primaryOption", "alternativeOptions", "explanation", "optimalTillageDates"},
	PropertyOrdering: []string{
		"responseToUser", "factors", "primaryOption", "alternativeOptions",
		"benefits", "optimalTillageDates", "explanation",
	},
}

// geminiClient implements Client with the Gemini API.
type geminiClient struct {
	api         *genai.Client
	model       string
	temperature float32
	retry       retryPolicy
	log         *zap.Logger
}

// NewGeminiClient creates a Client for the Gemini API. Without an API key
// the client is still returned and every Complete call fails with
// ErrMissingAPIKey.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &geminiClient{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry:       retryPolicy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		log:         log.Named("advisor").With(zap.String("provider", "gemini")),
	}

	if !cfg.HasAPIKey() {
		c.log.Warn("Gemini API key not configured, completions will fail until it is set")
		return c, nil
	}

	timeout := cfg.Timeout
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
			Timeout: &timeout,
		},
	}
	api, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.api = api

	c.log.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return c, nil
}

// Complete implements Client.
func (c *geminiClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "advisor.gemini.Complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("llm.mode", string(req.Mode)),
		attribute.Bool("request.has_image", req.Image != nil),
		attribute.Int("farm.id", int(req.Farm.FarmID)),
	)

	if c.api == nil {
		span.SetStatus(codes.Error, ErrMissingAPIKey.Error())
		return nil, ErrMissingAPIKey
	}

	contents, genCfg, err := c.buildRequest(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.log.Debug("Requesting content generation",
		zap.Bool("has_image", req.Image != nil),
		zap.String("mode", string(req.Mode)))

	resp, err := callWithRetries(ctx, c.log, c.retry, func() (*genai.GenerateContentResponse, error) {
		return c.api.Models.GenerateContent(ctx, c.model, contents, genCfg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content generation failed")
		c.log.Error("Gemini content generation failed", zap.Error(err))
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("Gemini returned no usable content", zap.Error(err))
		return nil, err
	}

	reply, err := finish(req.Mode, c.model, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return reply, nil
}

func (c *geminiClient) buildRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	instruction := systemPrompt(req)
	history, err := BuildHistoryMessage(req.History)
	if err != nil {
		return nil, nil, err
	}
	if history != "" {
		instruction += "\n\n" + history
	}

	temp := c.temperature
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       &temp,
	}
	if req.Mode == ModeStructured {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = recommendationGenaiSchema
	}

	return []*genai.Content{buildGeminiUserContent(req)}, genCfg, nil
}

// buildGeminiUserContent returns the user turn: a text part, plus the inline
// image bytes when a photo is attached.
func buildGeminiUserContent(req Request) *genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason = fb.BlockReasonMessage
		}
		return "", fmt.Errorf("request blocked by safety filter: %s", reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" && resp.Candidates[0].FinishReason != genai.FinishReasonStop {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, resp.Candidates[0].FinishReason)
		}
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Text()), nil
}
