// Package recommend handles one advice request end to end: it validates the
// request, assembles the farm context, calls the completion client and
// records the exchange metadata.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/database"
	"github.com/edgard/intillasense/internal/farm"
)

// ErrInvalidRequest marks failures caused by the caller's input.
var ErrInvalidRequest = errors.New("invalid request")

var tracer = otel.Tracer("github.com/edgard/intillasense/internal/recommend")

// Channels a request can arrive on.
const (
	ChannelHTTP     = "http"
	ChannelTelegram = "telegram"
	ChannelCLI      = "cli"
)

// Deps are the collaborators of a Service. Store may be nil, in which case
// no exchanges are recorded.
type Deps struct {
	Logger    *zap.Logger
	Config    config.AIConfig
	Assembler *farm.Assembler
	Client    advisor.Client
	Store     database.Store
	Now       func() time.Time
}

// Result is a completed advice request.
type Result struct {
	RequestID string
	Farm      farm.Context
	Reply     *advisor.Reply
}

// Service turns ChatRequests into model replies.
type Service struct {
	log         *zap.Logger
	assembler   *farm.Assembler
	client      advisor.Client
	store       database.Store
	provider    string
	defaultMode advisor.Mode
	now         func() time.Time
	validate    *validator.Validate
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	mode := advisor.Mode(deps.Config.ResponseMode)
	if mode == "" {
		mode = advisor.ModeStructured
	}
	return &Service{
		log:         log.Named("recommend"),
		assembler:   deps.Assembler,
		client:      deps.Client,
		store:       deps.Store,
		provider:    deps.Config.Provider,
		defaultMode: mode,
		now:         now,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Catalog exposes the farm profiles the service advises on.
func (s *Service) Catalog() *farm.Catalog {
	return s.assembler.Catalog()
}

// Handle runs one request. Errors wrapping ErrInvalidRequest are the
// caller's fault; anything else is an internal or upstream failure.
func (s *Service) Handle(ctx context.Context, req ChatRequest) (*Result, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx, span := tracer.Start(ctx, "recommend.Handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.id", requestID),
		attribute.String("request.channel", req.channel()),
		attribute.Int("farm.id", req.FarmNum),
	)

	log := s.log.With(zap.String("request_id", requestID), zap.String("channel", req.channel()), zap.Int("farm_id", req.FarmNum))

	advReq, err := s.prepare(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		log.Info("Rejected request", zap.Error(err))
		s.record(ctx, log, requestID, req, s.rejected(req), nil, err, 0)
		return nil, err
	}

	fc, err := s.assembler.Assemble(farm.ID(req.FarmNum))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "farm context unavailable")
		s.record(ctx, log, requestID, req, advReq, nil, err, 0)
		return nil, fmt.Errorf("assemble farm context: %w", err)
	}
	if fc.IsEmpty() {
		log.Info("No profile for farm, answering without farm context")
	}
	advReq.Farm = fc

	start := time.Now()
	reply, err := s.client.Complete(ctx, advReq)
	latency := time.Since(start)
	s.record(ctx, log, requestID, req, advReq, reply, err, latency)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		log.Error("Completion failed", zap.Error(err), zap.Duration("latency", latency))
		return nil, err
	}

	log.Info("Request answered", zap.String("mode", string(reply.Mode)), zap.Duration("latency", latency))
	return &Result{RequestID: requestID, Farm: fc, Reply: reply}, nil
}

// prepare validates req and converts it to an advisor.Request without
// farm context.
func (s *Service) prepare(req ChatRequest) (advisor.Request, error) {
	if err := s.validate.Struct(req); err != nil {
		return advisor.Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	mode, err := advisor.ParseMode(strings.TrimSpace(req.Mode), s.defaultMode)
	if err != nil {
		return advisor.Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	img, err := advisor.ParseImage(req.Image)
	if err != nil {
		return advisor.Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	text := NormalizeText(req.question())
	if text == "" && img == nil {
		return advisor.Request{}, fmt.Errorf("%w: text, voice or image is required", ErrInvalidRequest)
	}

	if _, err := advisor.BuildHistoryMessage(req.ChatHistory); err != nil {
		return advisor.Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return advisor.Request{
		Text:    text,
		Image:   img,
		History: req.ChatHistory,
		Mode:    mode,
		Now:     s.now(),
	}, nil
}

// rejected describes a request that failed validation, for the exchange log.
func (s *Service) rejected(req ChatRequest) advisor.Request {
	mode, err := advisor.ParseMode(strings.TrimSpace(req.Mode), s.defaultMode)
	if err != nil {
		mode = s.defaultMode
	}
	return advisor.Request{
		Text:    NormalizeText(req.question()),
		History: req.ChatHistory,
		Mode:    mode,
	}
}

// record stores the exchange metadata. Failures are logged and dropped.
func (s *Service) record(ctx context.Context, log *zap.Logger, requestID string, req ChatRequest, advReq advisor.Request, reply *advisor.Reply, callErr error, latency time.Duration) {
	if s.store == nil {
		return
	}

	ex := &database.Exchange{
		RequestID:     requestID,
		Channel:       req.channel(),
		FarmID:        req.FarmNum,
		Mode:          string(advReq.Mode),
		Provider:      s.provider,
		TextLength:    len(advReq.Text),
		HasImage:      advReq.Image != nil,
		HistoryTurns:  len(advReq.History),
		Status:        database.StatusOK,
		LatencyMS:     latency.Milliseconds(),
		CreatedUnixMS: s.now().UnixMilli(),
	}
	if reply != nil {
		ex.Model = reply.Model
	}
	if callErr != nil {
		ex.Status = database.StatusError
		ex.ErrorClass = ErrorClass(callErr)
	}

	// The exchange is logged even when the caller has gone away.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.SaveExchange(saveCtx, ex); err != nil {
		log.Warn("Failed to record exchange", zap.Error(err))
	}
}

// ErrorClass maps an error to the short label stored with an exchange.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, advisor.ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, advisor.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, advisor.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, farm.ErrResourceUnavailable):
		return "resource_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream"
	}
}
