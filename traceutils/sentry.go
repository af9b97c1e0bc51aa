package traceutils

import (
	"context"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// CaptureException reports err to the hub sentrygin bound to the request,
// tagged with the matched route
func CaptureException(c *gin.Context, err error) {
	if err == nil {
		return
	}

	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", c.FullPath())
		hub.CaptureException(err)
	})
}

// CaptureContextException reports err with tags to the hub bound to ctx, or to
// the process hub when ctx carries none. Used outside of gin handlers.
func CaptureContextException(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

func AddScopeTag(c *gin.Context, key, value string) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.Scope().SetTag(key, value)
	}
}

func SetHandlerTag(c *gin.Context, handler string) {
	AddScopeTag(c, "handler", handler)
}
