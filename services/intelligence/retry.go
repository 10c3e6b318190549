package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	gax "github.com/googleapis/gax-go/v2"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryPolicy is jittered exponential backoff: each pause is drawn at
// random up to a bound that starts at MinWait and doubles up to MaxWait.
type RetryPolicy struct {
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 6, MinWait: time.Second, MaxWait: 60 * time.Second}

// retryer counts attempts and hands transient errors to the gax backoff.
type retryer struct {
	attempts int
	made     int
	backoff  gax.Backoff
	logger   *zap.Logger
	op       string
}

func (p RetryPolicy) retryer(logger *zap.Logger, op string) *retryer {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &retryer{
		attempts: attempts,
		backoff:  gax.Backoff{Initial: p.MinWait, Max: p.MaxWait, Multiplier: 2},
		logger:   logger,
		op:       op,
	}
}

func (r *retryer) Retry(err error) (time.Duration, bool) {
	r.made++
	if r.made >= r.attempts || !transient(err) {
		return 0, false
	}
	pause := r.backoff.Pause()
	r.logger.Warn("Retrying after transient error",
		zap.String("op", r.op), zap.Int("attempt", r.made), zap.Duration("wait", pause), zap.Error(err))
	return pause, true
}

// transient reports whether err is worth another attempt: rate limits,
// server-side failures, timeouts and network errors. Anything else,
// including errors the client raises itself, is permanent.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return retryableHTTP(code)
		}
		if s := apiErr.GRPCStatus(); s != nil {
			return retryableCode(s.Code())
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableHTTP(gErr.Code)
	}
	if s, ok := status.FromError(err); ok {
		return retryableCode(s.Code())
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableHTTP(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func retryableCode(c codes.Code) bool {
	switch c {
	case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
		return true
	}
	return false
}

func withRetry(ctx context.Context, p RetryPolicy, logger *zap.Logger, op string, fn func() error) error {
	return gax.Invoke(ctx, func(context.Context, gax.CallSettings) error {
		return fn()
	}, gax.WithRetry(func() gax.Retryer {
		return p.retryer(logger, op)
	}))
}
