package router

import (
	"time"

	tg "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Interceptor claims text updates that belong to an in-flight conversation
// flow (a pending owner reply, a draft under composition) before menu and
// fallback routing run.
type Interceptor interface {
	Active(c tele.Context) bool
	Handle(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds handlers for plain text and media routing. Text flows
// through the interceptor, then registry command/alias lookup (reply keyboard
// labels register as aliases), then the registry text fallback.
func TextRoutes(interceptor Interceptor, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if interceptor != nil && interceptor.Active(c) {
			return handleWithSummary(c, "flow", start, func() error {
				return interceptor.Handle(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if interceptor != nil && interceptor.Active(c) {
			return handleWithSummary(c, "flow_media", start, func() error {
				return interceptor.Handle(c)
			})
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", nil)
		return nil
	}

	routes := []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
	for _, endpoint := range []string{tele.OnPhoto, tele.OnDocument, tele.OnSticker, tele.OnVoice, tele.OnVideo} {
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler)),
		})
	}
	return routes
}
