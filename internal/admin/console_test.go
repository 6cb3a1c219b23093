package admin

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/relaydesk/relaybot/internal/models"
)

type fakeStore struct {
	users   []models.User
	total   int
	stats   map[int64]*models.UserStats
	results []models.Request
	bans    []models.Ban
	cleaned int64
}

func (f *fakeStore) PaginatedUsers(_ context.Context, page, perPage int) ([]models.User, int, error) {
	start := page * perPage
	if start >= len(f.users) {
		return nil, f.total, nil
	}
	end := start + perPage
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[start:end], f.total, nil
}

func (f *fakeStore) UserStats(_ context.Context, userID int64) (*models.UserStats, error) {
	return f.stats[userID], nil
}

func (f *fakeStore) SearchRequests(_ context.Context, _ string, limit int) ([]models.Request, error) {
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeStore) ListBans(_ context.Context, _ int) ([]models.Ban, error) { return f.bans, nil }
func (f *fakeStore) BanUser(_ context.Context, _ int64, _ string) error      { return nil }
func (f *fakeStore) UnbanUser(_ context.Context, _ int64) error              { return nil }
func (f *fakeStore) DeleteAllRequests(_ context.Context) (int64, error)      { return f.cleaned, nil }

func manyUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{UserID: int64(i + 1), Username: fmt.Sprintf("user%d", i+1)}
	}
	return users
}

func TestUsersPageNavButtons(t *testing.T) {
	fs := &fakeStore{users: manyUsers(45), total: 45}
	c := New(fs, 20, 10)

	text, markup, err := c.UsersPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("users page: %v", err)
	}
	if !strings.Contains(text, "Page 1") || !strings.Contains(text, "Total Users: 45") {
		t.Fatalf("page text = %q", text)
	}

	// 20 users over 2 columns = 10 rows, plus nav row, plus refresh row.
	rows := markup.InlineKeyboard
	if len(rows) != 12 {
		t.Fatalf("expected 12 keyboard rows, got %d", len(rows))
	}
	nav := rows[10]
	if len(nav) != 1 || nav[0].Text != "Next ➡️" {
		t.Fatalf("page 0 should only have Next, got %+v", nav)
	}

	// Middle page gets both directions.
	_, markup, _ = c.UsersPage(context.Background(), 1)
	nav = markup.InlineKeyboard[10]
	if len(nav) != 2 || nav[0].Text != "⬅️ Prev" || nav[1].Text != "Next ➡️" {
		t.Fatalf("page 1 nav = %+v", nav)
	}

	// Last page: only Prev.
	_, markup, _ = c.UsersPage(context.Background(), 2)
	kb := markup.InlineKeyboard
	nav = kb[len(kb)-2]
	if len(nav) != 1 || nav[0].Text != "⬅️ Prev" {
		t.Fatalf("last page nav = %+v", nav)
	}
}

func TestUsersPageLabels(t *testing.T) {
	fs := &fakeStore{users: []models.User{
		{UserID: 1, Username: "alice"},
		{UserID: 2, Username: "", FirstName: "Bob"},
	}, total: 2}
	c := New(fs, 20, 10)

	_, markup, err := c.UsersPage(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	row := markup.InlineKeyboard[0]
	if row[0].Text != "👉alice" {
		t.Fatalf("handle label = %q", row[0].Text)
	}
	if row[1].Text != "👉(no username) - Bob" {
		t.Fatalf("fallback label = %q", row[1].Text)
	}
}

func TestUserDetail(t *testing.T) {
	fs := &fakeStore{stats: map[int64]*models.UserStats{
		7: {UserID: 7, Username: "eve", ReqCount: 3, IsBanned: true},
	}}
	c := New(fs, 20, 10)

	text, markup, err := c.UserDetail(context.Background(), 7, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"eve", "<code>7</code>", "Requests : 3", "Blocked : YES"} {
		if !strings.Contains(text, want) {
			t.Fatalf("detail missing %q: %s", want, text)
		}
	}
	back := markup.InlineKeyboard[0][0]
	if back.Text != "⬅️ Back" || !strings.Contains(back.Data, "2") {
		t.Fatalf("back button = %+v", back)
	}
}

func TestSearchTruncatesAndChunks(t *testing.T) {
	long := strings.Repeat("a", 200)
	now := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	fs := &fakeStore{results: []models.Request{
		{RequestID: 1, ThreadID: 1, PartNo: 1, UserID: 5, Username: "@alice", Text: long, Status: models.StatusPending, CreatedAt: now},
	}}
	c := New(fs, 20, 10)

	chunks, err := c.Search(context.Background(), "@alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "ID:1 | T:1 P:1 | 2026-08-24 10:30 | pending") {
		t.Fatalf("result header wrong: %s", chunks[0])
	}
	if strings.Contains(chunks[0], long) {
		t.Fatal("body should be truncated to 80 runes")
	}
	if !strings.Contains(chunks[0], strings.Repeat("a", 80)+"…") {
		t.Fatal("truncated body missing")
	}
}

func TestSearchEmpty(t *testing.T) {
	c := New(&fakeStore{}, 20, 10)
	chunks, err := c.Search(context.Background(), "nothing")
	if err != nil || chunks != nil {
		t.Fatalf("empty search = %v, %v", chunks, err)
	}
}

func TestBansRendering(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	fs := &fakeStore{bans: []models.Ban{
		{UserID: 9, Reason: "spam", BannedAt: at},
	}}
	c := New(fs, 20, 10)

	chunks, err := c.Bans(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0] != "9 | 2026-01-02 03:04 | spam" {
		t.Fatalf("bans chunks = %v", chunks)
	}

	chunks, err = New(&fakeStore{}, 20, 10).Bans(context.Background(), 20)
	if err != nil || chunks != nil {
		t.Fatalf("no bans should render empty, got %v", chunks)
	}
}

func TestBansChunksLongList(t *testing.T) {
	// Enough long reasons to overflow one message.
	reason := strings.Repeat("x", 400)
	bans := make([]models.Ban, 15)
	for i := range bans {
		bans[i] = models.Ban{UserID: int64(i + 1), Reason: reason}
	}
	c := New(&fakeStore{bans: bans}, 20, 10)

	chunks, err := c.Bans(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("long list must span multiple chunks, got %d", len(chunks))
	}
	joined := strings.Join(chunks, "\n")
	if !strings.Contains(joined, "15 | N/A | "+reason) {
		t.Fatal("tail entries must not be dropped")
	}
}
