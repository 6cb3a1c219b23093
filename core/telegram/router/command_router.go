package router

import (
	"github.com/relaydesk/relaybot/core/logger"
	tg "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	OwnerID       int64
	OnOwnerReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Admin-only commands additionally pass the owner gate.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	ownerOpts := middleware.OwnerOptions{
		OwnerID:  opts.OwnerID,
		OnReject: opts.OnOwnerReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = middleware.OwnerOnlyMiddleware(ownerOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
