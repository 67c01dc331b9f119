// Package reporting sends panics and server errors to Sentry.
package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const hubKey = "duo-sentry-hub"

// Init configures the Sentry client. Without a DSN, nothing is reported
// and Init returns false.
func Init(dsn, environment, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return false, fmt.Errorf("could not initialize sentry: %w", err)
	}

	log.Info().Str("environment", environment).Msg("Error reporting enabled")
	return true, nil
}

// Flush waits for buffered events to be sent.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// Middleware attaches a hub to every request, reports panics and responses
// with a server error status.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		hub.Scope().SetTag("request-id", requestid.Get(c))

		c.Set(hubKey, hub)
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		defer func() {
			if err := recover(); err != nil {
				hub.RecoverWithContext(c.Request.Context(), err)
				hub.Flush(2 * time.Second)
				panic(err)
			}
		}()

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			for _, e := range c.Errors {
				hub.CaptureException(e.Err)
			}

			if len(c.Errors) == 0 {
				hub.CaptureMessage(fmt.Sprintf("%s %s returned %d", c.Request.Method, c.FullPath(), c.Writer.Status()))
			}
		}
	}
}

// CaptureError reports an error with the hub of the context, or the global
// hub if the context has none.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}

	sentry.CaptureException(err)
}
