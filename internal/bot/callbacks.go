package bot

import (
	"errors"
	"strconv"
	"time"

	coretelegram "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/callbacks"
	"github.com/relaydesk/relaybot/core/telegram/format"
	"github.com/relaydesk/relaybot/core/telegram/helpers"
	"github.com/relaydesk/relaybot/core/telegram/keyboard"
	"github.com/relaydesk/relaybot/internal/admin"
	"github.com/relaydesk/relaybot/internal/relay"
	"github.com/relaydesk/relaybot/internal/store"
	"github.com/relaydesk/relaybot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques owned by the relay flow and group setup. The admin
// console registers its own set.
const (
	cbConfirmYes = "confirm_yes"
	cbConfirmNo  = "confirm_no"
	cbLang       = "lang"
	cbReply      = "reply"
	cbReject     = "reject"
	cbGroupYes   = "grp_yes"
	cbGroupRetry = "grp_retry"
)

// ownerGated lists the uniques only the owner may trigger; their buttons
// can surface in the admin group where other members may tap them.
var ownerGated = map[string]bool{
	cbReply:            true,
	cbReject:           true,
	cbGroupYes:         true,
	cbGroupRetry:       true,
	admin.CBUserPage:    true,
	admin.CBUserBack:    true,
	admin.CBUserRefresh: true,
	admin.CBUserDetail:  true,
	admin.CBCleanYes:    true,
	admin.CBCleanNo:     true,
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	_ = reg.RegisterCallback(cbConfirmYes, a.onConfirmYes)
	_ = reg.RegisterCallback(cbConfirmNo, a.onConfirmNo)
	_ = reg.RegisterCallback(cbLang, a.onLangPick)

	_ = reg.RegisterCallback(cbReply, a.onReply)
	_ = reg.RegisterCallback(cbReject, a.onReject)
	_ = reg.RegisterCallback(cbGroupYes, a.onGroupCheck)
	_ = reg.RegisterCallback(cbGroupRetry, a.onGroupCheck)

	_ = reg.RegisterCallback(admin.CBUserPage, a.onUsersPage)
	_ = reg.RegisterCallback(admin.CBUserBack, a.onUsersPage)
	_ = reg.RegisterCallback(admin.CBUserRefresh, a.onUsersPage)
	_ = reg.RegisterCallback(admin.CBUserDetail, a.onUserDetail)
	_ = reg.RegisterCallback(admin.CBCleanYes, a.onCleanYes)
	_ = reg.RegisterCallback(admin.CBCleanNo, a.onCleanNo)
}

// deniesCallback reports whether a gated unique is being tapped by someone
// other than the owner.
func (a *App) deniesCallback(key string, sender *tele.User) bool {
	if !ownerGated[key] {
		return false
	}
	return sender == nil || !a.engine.IsOwner(sender.ID)
}

// callbackGuard runs before the router's generic ack. The denial alert must
// be the first answer to the query or Telegram drops it.
func (a *App) callbackGuard(c tele.Context, key string) bool {
	if !a.deniesCallback(key, c.Sender()) {
		return true
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Not allowed", ShowAlert: true})
	return false
}

func (a *App) onConfirmYes(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || a.engine.IsOwner(sender.ID) {
		return nil
	}
	ctx := helpers.BuildContext(c)
	ident := relay.Identity{ID: sender.ID, Username: sender.Username, FirstName: sender.FirstName}

	res, err := a.engine.ConfirmDraft(ctx, ident)
	if err != nil {
		return err
	}
	lang := a.lang(ctx, sender.ID)
	switch res.Outcome {
	case relay.ConfirmBanned:
		return c.Edit(texts.T(lang, "banned"))
	case relay.ConfirmNoDraft:
		return c.Edit(texts.T(lang, "write_again"))
	}

	rid := strconv.FormatInt(res.Created.RequestID, 10)
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✉️ Reply", Unique: cbReply, Data: rid},
		{Text: "⛔ Reject", Unique: cbReject, Data: rid},
	})
	notice := adminNotificationHTML(res.Created, ident, res.Text)
	if err := helpers.SendToHTML(c, a.tgbot(), tele.ChatID(a.adminChat()), notice, markup); err != nil {
		return err
	}
	return c.Edit(texts.T(lang, "sent_to_admin"))
}

func (a *App) onConfirmNo(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || a.engine.IsOwner(sender.ID) {
		return nil
	}
	a.engine.CancelDraft(sender.ID)
	ctx := helpers.BuildContext(c)
	return c.Edit(texts.T(a.lang(ctx, sender.ID), "write_again"))
}

func (a *App) onLangPick(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	code := callbacks.CallbackPayload(c)
	if code != texts.LangEN {
		code = texts.LangHI
	}
	ctx := helpers.BuildContext(c)
	if err := a.store.UpsertUser(ctx, sender.ID, sender.Username, sender.FirstName, code); err != nil {
		return err
	}
	key := "lang_now_hi"
	if code == texts.LangEN {
		key = "lang_now_en"
	}
	return c.Edit(texts.T(code, key))
}

// toOwner delivers owner-facing notices to the owner's private chat even
// when the tapped card lives in the admin group.
func (a *App) toOwner(c tele.Context, text string) error {
	return helpers.SendToHTML(c, a.tgbot(), tele.ChatID(a.cfg.Relay.OwnerID), text)
}

func (a *App) onReply(c tele.Context) error {
	rid, err := callbacks.PayloadInt64(c)
	if err != nil {
		return a.toOwner(c, requestGoneText)
	}
	ctx := helpers.BuildContext(c)

	res, err := a.engine.StartReply(ctx, rid)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case relay.ReplyTargetMissing:
		return a.toOwner(c, requestGoneText)
	case relay.ReplyTargetBanned:
		return a.toOwner(c, replyBannedText)
	}

	if err := a.toOwner(c, texts.T(a.lang(ctx, a.cfg.Relay.OwnerID), "admin_reply_prompt")); err != nil {
		return err
	}
	a.stampCard(c, repliedStamp(time.Now()))
	return nil
}

func (a *App) onReject(c tele.Context) error {
	rid, err := callbacks.PayloadInt64(c)
	if err != nil {
		return a.toOwner(c, requestGoneText)
	}
	ctx := helpers.BuildContext(c)

	res, err := a.engine.Reject(ctx, rid)
	if err != nil {
		return err
	}
	if res.Outcome == relay.RejectTargetMissing {
		return a.toOwner(c, requestGoneText)
	}

	if res.NotifyAuthor {
		if err := helpers.SendToHTML(c, a.tgbot(), tele.ChatID(res.Request.UserID), rejectNoticeText); err != nil {
			return err
		}
	}
	if err := a.toOwner(c, texts.T(a.lang(ctx, a.cfg.Relay.OwnerID), "admin_rejected")); err != nil {
		return err
	}
	a.stampCard(c, deniedStamp(time.Now()))
	return nil
}

// stampCard rewrites the tapped admin card with a resolution footer and
// drops its buttons. Formatting entities are not preserved; the card's plain
// text is re-escaped.
func (a *App) stampCard(c tele.Context, stamp string) {
	msg := c.Message()
	if msg == nil || msg.Text == "" {
		return
	}
	_ = c.Edit(format.EscapeHTML(msg.Text)+stamp, &tele.SendOptions{ParseMode: tele.ModeHTML})
}

func (a *App) onUsersPage(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		page = 0
	}
	ctx := helpers.BuildContext(c)
	text, markup, err := a.console.UsersPage(ctx, page)
	if err != nil {
		return err
	}
	return helpers.EditHTML(c, text, markup)
}

func (a *App) onUserDetail(c tele.Context) error {
	uid, page, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return nil
	}
	ctx := helpers.BuildContext(c)
	text, markup, err := a.console.UserDetail(ctx, uid, int(page))
	if errors.Is(err, store.ErrNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: "User not found"})
	}
	if err != nil {
		return err
	}
	return helpers.EditHTML(c, text, markup)
}

func (a *App) onCleanYes(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	if _, err := a.console.CleanAll(ctx); err != nil {
		return c.Edit("❌ Error during clean: " + err.Error())
	}
	return c.Edit(cleanDoneText)
}

func (a *App) onCleanNo(c tele.Context) error {
	return c.Edit(cleanCancelledText)
}

func (a *App) onGroupCheck(c tele.Context) error {
	gid, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Edit(invalidGroupID)
	}
	bot := a.tgbot()
	if bot == nil {
		return nil
	}
	retry := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Retry ♻️", Unique: cbGroupRetry, Data: strconv.FormatInt(gid, 10)},
	})

	member, err := bot.ChatMemberOf(&tele.Chat{ID: gid}, bot.Me)
	if err != nil {
		return c.Edit("Error: "+format.EscapeHTML(err.Error())+"\n"+groupRecheck,
			&tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: retry})
	}
	if member.Role != tele.Administrator && member.Role != tele.Creator {
		return c.Edit(groupRecheck, retry)
	}

	if err := c.Edit(groupDoneText); err != nil {
		return err
	}
	ctx := helpers.BuildContext(c)
	if err := a.store.SetSetting(ctx, settingAdminGroup, strconv.FormatInt(gid, 10)); err != nil {
		return err
	}
	a.adminGroup.Store(gid)
	return helpers.SendToHTML(c, bot, tele.ChatID(gid), groupPermsHTML)
}
