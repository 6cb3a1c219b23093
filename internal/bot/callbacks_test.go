package bot

import (
	"testing"

	coreconfig "github.com/relaydesk/relaybot/core/config"
	"github.com/relaydesk/relaybot/internal/admin"

	tele "gopkg.in/telebot.v4"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &coreconfig.Config{}
	cfg.Relay.OwnerID = 9000
	cfg.Relay.OwnerUsername = "@owner"
	return New(cfg, nil)
}

func TestDeniesCallbackForNonOwner(t *testing.T) {
	a := newTestApp(t)
	stranger := &tele.User{ID: 1}
	owner := &tele.User{ID: 9000}

	gated := []string{
		cbReply, cbReject, cbGroupYes, cbGroupRetry,
		admin.CBUserPage, admin.CBUserBack, admin.CBUserRefresh,
		admin.CBUserDetail, admin.CBCleanYes, admin.CBCleanNo,
	}
	for _, key := range gated {
		if !a.deniesCallback(key, stranger) {
			t.Fatalf("%s must be denied for non-owner", key)
		}
		if !a.deniesCallback(key, nil) {
			t.Fatalf("%s must be denied without a sender", key)
		}
		if a.deniesCallback(key, owner) {
			t.Fatalf("%s must pass for the owner", key)
		}
	}
}

func TestUserFacingCallbacksNotGated(t *testing.T) {
	a := newTestApp(t)
	stranger := &tele.User{ID: 1}

	for _, key := range []string{cbConfirmYes, cbConfirmNo, cbLang} {
		if a.deniesCallback(key, stranger) {
			t.Fatalf("%s must stay open to regular users", key)
		}
	}
}
