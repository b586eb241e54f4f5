package advisor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// retryPolicy bounds how often a failed completion is re-sent.
// MaxRetries of zero means a single attempt.
type retryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// callWithRetries runs call until it succeeds, returns a non-transient
// error, or the retry budget is exhausted.
func callWithRetries[T any](ctx context.Context, log *zap.Logger, p retryPolicy, call func() (T, error)) (T, error) {
	attempts := uint(1)
	if p.MaxRetries > 0 {
		attempts += uint(p.MaxRetries)
	}

	return retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < attempts {
				log.Warn("Completion failed, retrying", zap.Uint("attempt", n+1), zap.Uint("max_attempts", attempts), zap.Error(err))
			}
		}),
	)
}

// isTransient reports whether err is worth retrying: rate limits, server
// errors and network failures.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrMissingAPIKey) {
		return false
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return retryableStatus(oaiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
