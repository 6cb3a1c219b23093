package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/relaydesk/relaybot/core/config"
	"github.com/relaydesk/relaybot/core/logger"
	coretelegram "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/router"
	"github.com/relaydesk/relaybot/core/telegram/sender"
	"github.com/relaydesk/relaybot/internal/admin"
	"github.com/relaydesk/relaybot/internal/countdown"
	"github.com/relaydesk/relaybot/internal/health"
	"github.com/relaydesk/relaybot/internal/metrics"
	"github.com/relaydesk/relaybot/internal/relay"
	"github.com/relaydesk/relaybot/internal/session"
	"github.com/relaydesk/relaybot/internal/store"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// settingAdminGroup is the persisted key for routing request cards to a
// group instead of the owner's private chat.
const settingAdminGroup = "admin_group_id"

// App wires the relay engine, admin console, countdown display, and health
// listener into one Telegram bot.
type App struct {
	cfg      *coreconfig.Config
	db       *sqlx.DB
	store    *store.Store
	sessions *session.Service
	engine   *relay.Engine
	console  *admin.Console
	reg      *coretelegram.Registry

	cd     *countdown.Manager
	health *health.Server

	bot        atomic.Pointer[tele.Bot]
	adminGroup atomic.Int64
}

// New assembles the application around an open database handle.
func New(cfg *coreconfig.Config, db *sqlx.DB) *App {
	st := store.New(db, cfg.Relay.OwnerID, cfg.Relay.ThreadWindow())
	sessions := session.New()
	return &App{
		cfg:      cfg,
		db:       db,
		store:    st,
		sessions: sessions,
		engine:   relay.New(st, sessions, cfg.Relay.OwnerID, cfg.Relay.Cooldown()),
		console:  admin.New(st, cfg.Relay.PageSize, cfg.Relay.SearchLimit),
	}
}

// CoreConfig exposes the embedded configuration to the runner.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

func (a *App) tgbot() *tele.Bot { return a.bot.Load() }

// adminChat is where new request cards go: the configured group when set,
// the owner's private chat otherwise.
func (a *App) adminChat() int64 {
	if gid := a.adminGroup.Load(); gid != 0 {
		return gid
	}
	return a.cfg.Relay.OwnerID
}

func (a *App) lang(ctx context.Context, userID int64) string {
	lang, err := a.store.Lang(ctx, userID)
	if err != nil {
		return store.DefaultLang
	}
	return lang
}

// TelegramRunOptions builds the full bot wiring: registry, middleware
// chain, command, callback, and text routes, plus lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.buildRegistry()

	rejectNonOwner := func(c tele.Context) error {
		return c.Send(notOwnerText)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		OwnerID:       a.cfg.Relay.OwnerID,
		OnOwnerReject: rejectNonOwner,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		Guard: a.callbackGuard,
	}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownMedia: a.onUnknownMedia,
	})...)

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		DispatcherOptions: sender.Options{
			OnFailure: metrics.SendFailures.Inc,
		},
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		BindBot:     a.bindBot,
		OnStart:     a.startup,
		OnStop:      a.shutdown,
	}, nil
}

func (a *App) bindBot(bot *tele.Bot) {
	a.bot.Store(bot)

	done := fmt.Sprintf("Now you can send message to the owner %s", a.cfg.Relay.OwnerUsername)
	mgr, err := countdown.NewManager(&botEditor{bot: bot}, done)
	if err != nil {
		logger.TWire.Warn("countdown scheduler unavailable",
			slog.String("event", "countdown.init"),
			slog.String("err", err.Error()),
		)
		return
	}
	a.cd = mgr
}

func (a *App) startup(ctx context.Context, _ coretelegram.Runtime) error {
	if raw, err := a.store.Setting(ctx, settingAdminGroup); err == nil && strings.TrimSpace(raw) != "" {
		gid, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if perr != nil {
			logger.Admin.Warn("ignoring malformed admin group id",
				slog.String("event", "setting.parse"),
				slog.String("value", raw),
			)
		} else {
			a.adminGroup.Store(gid)
			logger.Admin.Info("routing request cards to group",
				slog.String("event", "group.route"),
				slog.Int64("group_id", gid),
			)
		}
	}

	a.health = health.NewServer(a.cfg.Health.Listen, a.db)
	a.health.Start()
	return nil
}

func (a *App) shutdown(_ context.Context, _ coretelegram.Runtime) error {
	if a.cd != nil {
		_ = a.cd.Shutdown()
	}
	if a.health != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.health.Shutdown(ctx)
	}
	return nil
}

// botEditor adapts the bot to the countdown manager's transport surface.
type botEditor struct {
	bot *tele.Bot
}

func (e *botEditor) Edit(chatID int64, messageID int, text string) error {
	ref := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	_, err := e.bot.Edit(ref, text)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "message is not modified") {
		return nil
	}
	return err
}

func (e *botEditor) Send(chatID int64, text string) error {
	_, err := e.bot.Send(tele.ChatID(chatID), text)
	return err
}
