package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/relaydesk/relaybot/core/logger"
	"github.com/relaydesk/relaybot/core/telegram/format"
	"github.com/relaydesk/relaybot/core/telegram/keyboard"
	"github.com/relaydesk/relaybot/internal/metrics"
	"github.com/relaydesk/relaybot/internal/models"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques owned by the admin console's inline controls.
const (
	CBUserPage    = "st_page"
	CBUserDetail  = "st_user"
	CBUserBack    = "st_back"
	CBUserRefresh = "st_refresh"
	CBCleanYes    = "clean_yes"
	CBCleanNo     = "clean_no"
)

// Store is the persistence surface the console reads and manages.
type Store interface {
	PaginatedUsers(ctx context.Context, page, perPage int) ([]models.User, int, error)
	UserStats(ctx context.Context, userID int64) (*models.UserStats, error)
	SearchRequests(ctx context.Context, query string, limit int) ([]models.Request, error)
	ListBans(ctx context.Context, limit int) ([]models.Ban, error)
	BanUser(ctx context.Context, userID int64, reason string) error
	UnbanUser(ctx context.Context, userID int64) error
	DeleteAllRequests(ctx context.Context) (int64, error)
}

// Console renders the owner-only views: the paginated user browser,
// per-user detail, request search, and ban management.
type Console struct {
	store       Store
	pageSize    int
	searchLimit int
}

// New builds a console. pageSize bounds the user browser; searchLimit caps
// search results.
func New(st Store, pageSize, searchLimit int) *Console {
	if pageSize <= 0 {
		pageSize = 20
	}
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &Console{store: st, pageSize: pageSize, searchLimit: searchLimit}
}

// UsersPage renders one page of the user browser: two-column buttons per
// user plus Prev/Next/Refresh controls.
func (c *Console) UsersPage(ctx context.Context, page int) (string, *tele.ReplyMarkup, error) {
	if page < 0 {
		page = 0
	}
	users, total, err := c.store.PaginatedUsers(ctx, page, c.pageSize)
	if err != nil {
		return "", nil, err
	}

	userBtns := make([]keyboard.InlineBtn, 0, len(users))
	for _, u := range users {
		label := "👉" + u.Username
		if u.Username == "" {
			label = "👉(no username) - " + u.FirstName
		}
		userBtns = append(userBtns, keyboard.InlineBtn{
			Text:   label,
			Unique: CBUserDetail,
			Data:   fmt.Sprintf("%d|%d", u.UserID, page),
		})
	}

	markup := keyboard.InlineButtonsNPerRow(userBtns, 2)

	var nav []tele.InlineButton
	helper := &tele.ReplyMarkup{}
	if page > 0 {
		nav = append(nav, *helper.Data("⬅️ Prev", CBUserPage, strconv.Itoa(page-1)).Inline())
	}
	if (page+1)*c.pageSize < total {
		nav = append(nav, *helper.Data("Next ➡️", CBUserPage, strconv.Itoa(page+1)).Inline())
	}
	if len(nav) > 0 {
		markup.InlineKeyboard = append(markup.InlineKeyboard, nav)
	}
	markup.InlineKeyboard = append(markup.InlineKeyboard,
		[]tele.InlineButton{*helper.Data("🔄 Refresh", CBUserRefresh, strconv.Itoa(page)).Inline()},
	)

	text := fmt.Sprintf("<b>👤 User List (Page %d)</b>\nTotal Users: %d", page+1, total)
	return text, markup, nil
}

// UserDetail renders one user's aggregate view with a Back control to the
// originating page.
func (c *Console) UserDetail(ctx context.Context, userID int64, page int) (string, *tele.ReplyMarkup, error) {
	stats, err := c.store.UserStats(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	handle := "(no username)"
	if stats.Username != "" {
		handle = format.EscapeHTML(stats.Username)
	}
	blocked := "NO"
	if stats.IsBanned {
		blocked = "YES"
	}
	text := fmt.Sprintf(
		"<blockquote>✨ %s\n🆔 ID : <code>%d</code>\n📟 Requests : %d\n😕 Blocked : %s</blockquote>",
		handle, stats.UserID, stats.ReqCount, blocked,
	)

	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "⬅️ Back", Unique: CBUserBack, Data: strconv.Itoa(page)},
	})
	return text, markup, nil
}

// Search runs the shape-inferred request search and returns ready-to-send
// message chunks, newest results first.
func (c *Console) Search(ctx context.Context, query string) ([]string, error) {
	results, err := c.store.SearchRequests(ctx, query, c.searchLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return format.JoinChunked(searchLines(results), "\n\n", format.MaxMessageLen), nil
}

func searchLines(results []models.Request) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		created := "N/A"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04")
		}
		lines = append(lines, fmt.Sprintf(
			"ID:%d | T:%d P:%d | %s | %s\nU:%d %s\nText: %s",
			r.RequestID, r.ThreadID, r.PartNo, created, r.Status,
			r.UserID, r.Username, format.TruncateRunes(r.Text, 80),
		))
	}
	return lines
}

// Bans renders the newest ban records, one per line, chunked under the
// message size cap like Search.
func (c *Console) Bans(ctx context.Context, limit int) ([]string, error) {
	bans, err := c.store.ListBans(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(bans) == 0 {
		return nil, nil
	}
	lines := make([]string, 0, len(bans))
	for _, b := range bans {
		at := "N/A"
		if !b.BannedAt.IsZero() {
			at = b.BannedAt.Format("2006-01-02 15:04")
		}
		lines = append(lines, fmt.Sprintf("%d | %s | %s", b.UserID, at, b.Reason))
	}
	return format.JoinChunked(lines, "\n", format.MaxMessageLen), nil
}

// Ban creates or refreshes a ban record.
func (c *Console) Ban(ctx context.Context, userID int64, reason string) error {
	if err := c.store.BanUser(ctx, userID, reason); err != nil {
		return err
	}
	metrics.BansIssued.Inc()
	logger.Admin.Info("user banned",
		slog.String("event", "ban"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// Unban removes a ban record; a missing ban is a no-op.
func (c *Console) Unban(ctx context.Context, userID int64) error {
	if err := c.store.UnbanUser(ctx, userID); err != nil {
		return err
	}
	logger.Admin.Info("user unbanned",
		slog.String("event", "unban"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// CleanConfirmMarkup is the confirm/cancel pair guarding clean_all.
func (c *Console) CleanConfirmMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Yes", Unique: CBCleanYes},
		{Text: "No", Unique: CBCleanNo},
	})
}

// CleanAll irreversibly deletes every request record.
func (c *Console) CleanAll(ctx context.Context) (int64, error) {
	n, err := c.store.DeleteAllRequests(ctx)
	if err != nil {
		return 0, err
	}
	logger.Admin.Warn("all requests deleted",
		slog.String("event", "clean"),
		slog.Int64("deleted", n),
	)
	return n, nil
}
