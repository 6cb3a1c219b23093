package router

import (
	"time"

	tg "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/callbacks"
	"github.com/relaydesk/relaybot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
	// Guard runs before the generic ack. Returning false stops dispatch;
	// the guard answers the query itself, typically with an alert.
	// Telegram honours only the first answer per query, so a denial alert
	// must go out before anything else responds.
	Guard func(c tele.Context, key string) bool
}

// CallbackRoute returns a handler that routes callbacks through the registry.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		if opts.Guard != nil && !opts.Guard(c, key) {
			extras = append(extras, slog.String("reason", "denied"))
			return handleWithSummary(c, name, start, func() error { return nil }, extras...)
		}

		_ = c.Respond()

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, func() error {
				if fallback != nil {
					return fallback(c)
				}
				return nil
			}, extras...)
		}

		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
