// Package httpclient builds the retrying HTTP client used for outbound
// calls to push services and the categorization API.
package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 15 * time.Second
	retryWaitMin   = 500 * time.Millisecond
	retryWaitMax   = 5 * time.Second
)

// New returns a client that retries connection errors and 5xx responses up
// to retryMax times. The returned client is a plain *http.Client.
func New(retryMax int, timeout time.Duration) *http.Client {
	return NewRetryable(retryMax, timeout).StandardClient()
}

// NewRetryable returns the underlying retryablehttp client.
func NewRetryable(retryMax int, timeout time.Duration) *retryablehttp.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if retryMax < 0 {
		retryMax = 0
	}

	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{Timeout: timeout}
	c.RetryMax = retryMax
	c.RetryWaitMin = retryWaitMin
	c.RetryWaitMax = retryWaitMax
	c.Logger = &retryLogger{logger: log.Logger.With().Str("component", "httpclient").Logger()}

	return c
}

// retryLogger adapts zerolog to retryablehttp
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
