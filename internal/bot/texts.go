package bot

import (
	"fmt"
	"time"

	"github.com/relaydesk/relaybot/core/telegram/format"
	"github.com/relaydesk/relaybot/internal/relay"
	"github.com/relaydesk/relaybot/internal/store"
)

// Reply keyboard labels. They double as command aliases so the bottom menu
// routes through the same handlers as slash commands.
const (
	labelSend  = "📝 Send Message"
	labelLang  = "🌐 Language"
	labelOwner = "👤 Owner"
	labelHelp  = "ℹ️ Help"
)

const (
	ownerSelfText   = "You are the owner bruh 😑"
	notOwnerText    = "WTF you are not the owner man 😑"
	requestGoneText = "Request not found."
	replyBannedText = "Cannot reply: user is banned."
	writePromptText = "Write everything in one message and send it."

	confirmPromptHTML = "❓ <b>Confirm submission</b>\nSend this message to the owner?"

	rejectNoticeText = "✨ Your request has been denied ❌\n\n" +
		"You can send a new message after the cooldown."

	helpHTML = "<b>ℹ️ How to use the bot:</b>\n\n" +
		"1) 📝 Write your full message in <b>one</b> go.\n" +
		"2) ✅ Tap <b>Yes</b> when asked to confirm.\n" +
		"3) ⏳ Wait for 10 seconds before sending another.\n\n" +
		"<i>Your message will be reviewed by the owner.</i>"

	addgrpUsageHTML = "<b>Usage:</b> /addgrp -100xxxxxxxxxx\n\n" +
		"1. Add me to the private group.\n" +
		"2. Make me an <b>admin</b>.\n" +
		"3. Send <code>/chatid</code> in that group to get the ID.\n" +
		"4. Run <code>/addgrp [ID]</code> here."

	groupAskText    = "Am I an admin in that grp 🤔 ?"
	groupDoneText   = "Done ✅"
	groupRecheck    = "Check again buddy after making me admin 🙄!"
	groupPermsHTML  = "<b>Group Activated!</b>\n\nPlease ensure I have these permissions:\n• Send Messages\n• Delete Messages (for cleanup)"
	invalidGroupID  = "Invalid group id."
	invalidUserID   = "Invalid user ID."
	searchUsageText = "Usage: /search <user_id | @username | keyword>"
	banUsageText    = "Usage: /ban <user_id> [reason...]"
	unbanUsageText  = "Usage: /unban <user_id>"
	noResultsText   = "No matching requests found."
	noBansText      = "No banned users."

	cleanConfirmText   = "Are you sure you want to permanently delete ALL past requests? This cannot be undone."
	cleanCancelledText = "Cancelled. Nothing was deleted."
	cleanDoneText      = "✅ Clean completed. All requests were deleted."
)

func welcomeHTML(ownerUsername string, isOwner bool, ownerID int64) string {
	msg := "<b>👋 Welcome!</b>\n\n" +
		"<b>How to message the owner:</b>\n" +
		"1) 📝 Write everything in <b>one</b> message\n" +
		"2) ✅ Confirm (Yes)\n" +
		"3) ⏳ Wait for cooldown (10s)\n\n" +
		fmt.Sprintf("<b>Owner:</b> %s", format.EscapeHTML(ownerUsername))
	if isOwner {
		msg += fmt.Sprintf("\n\nOwner Telegram ID: <code>%d</code>", ownerID)
	}
	return msg
}

func ownerCardHTML(ownerUsername string, ownerID int64) string {
	return fmt.Sprintf("Owner: %s | ID: <code>%d</code>", format.EscapeHTML(ownerUsername), ownerID)
}

// adminNotificationHTML renders the owner-facing card for a freshly
// submitted request.
func adminNotificationHTML(created store.CreatedRequest, user relay.Identity, draft string) string {
	return fmt.Sprintf(
		"<b>🧾 New Request</b>\n"+
			"<b>Thread:</b> <code>%d</code> | <b>Part:</b> <code>%d</code>\n\n"+
			"<b>User:</b> %s\n"+
			"<b>TG ID:</b> <code>%d</code>\n\n"+
			"<b>Message:</b>\n"+
			"<blockquote>%s</blockquote>",
		created.ThreadID, created.PartNo,
		format.EscapeHTML(user.Handle()), user.ID,
		format.EscapeHTML(draft),
	)
}

// replyFrameHTML wraps the owner's reply text in the decorative frame users
// receive.
func replyFrameHTML(text string) string {
	return "<b>✨ Response from Owner ✨</b>\n" +
		"───────────────────\n" +
		format.EscapeHTML(text) + "\n" +
		"───────────────────\n" +
		"<i>Thank you for reaching out!</i>"
}

// Stamps appended to the admin card once a request is resolved.

func repliedStamp(at time.Time) string {
	return fmt.Sprintf(
		"\n\n✨Request has been replied ✅\n👉Time ⏲️ : %s\n👉Date 📅 : %s\n👉Year 🧧 : %s",
		at.Format("03:04 PM"), at.Format("02 January"), at.Format("2006"),
	)
}

func deniedStamp(at time.Time) string {
	return fmt.Sprintf(
		"\n\n✨Request denied ❌\n👉Time ⏰ : %s\n👉Date 📅 : %s\n👉Year 🎊 : %s",
		at.Format("03:04 PM"), at.Format("02 January"), at.Format("2006"),
	)
}
