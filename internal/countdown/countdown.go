package countdown

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/relaydesk/relaybot/core/logger"
	"log/slog"
)

// Editor is the transport surface a countdown needs: in-place edits of the
// ticking message and one final announcement.
type Editor interface {
	Edit(chatID int64, messageID int, text string) error
	Send(chatID int64, text string) error
}

type key struct {
	chat int64
	msg  int
}

type ticker struct {
	mu        sync.Mutex
	remaining int
}

// Manager drives per-message one-second countdown displays. Each countdown
// is keyed by (chat, message) and deregisters itself on completion; ticks
// run on the scheduler's goroutines and never block update handling.
type Manager struct {
	sched    gocron.Scheduler
	editor   Editor
	doneText string

	mu   sync.Mutex
	jobs map[key]gocron.Job
}

// NewManager builds and starts the countdown scheduler. doneText is sent to
// the chat when a countdown reaches zero.
func NewManager(editor Editor, doneText string) (*Manager, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("countdown: scheduler: %w", err)
	}
	m := &Manager{
		sched:    sched,
		editor:   editor,
		doneText: doneText,
		jobs:     make(map[key]gocron.Job),
	}
	sched.Start()
	return m, nil
}

// Start begins a countdown of the given seconds on an existing message.
// Starting a second countdown on the same message replaces the first.
func (m *Manager) Start(chatID int64, messageID, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	k := key{chat: chatID, msg: messageID}
	t := &ticker{remaining: seconds}

	m.cancel(k)

	// Singleton mode keeps ticks from overlapping when an edit outlasts
	// one second under flood control.
	job, err := m.sched.NewJob(
		gocron.DurationJob(time.Second),
		gocron.NewTask(func() { m.tick(k, t) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("countdown: schedule: %w", err)
	}

	m.mu.Lock()
	m.jobs[k] = job
	m.mu.Unlock()
	return nil
}

// tick renders one countdown step and deregisters the job at zero. The
// ticker's own lock serializes steps without stalling other countdowns.
func (m *Manager) tick(k key, t *ticker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining > 0 {
		if err := m.editor.Edit(k.chat, k.msg, strconv.Itoa(t.remaining)); err != nil {
			logger.TG.Debug("countdown edit failed",
				slog.String("event", "countdown.edit"),
				slog.Int64("chat_id", k.chat),
				slog.String("err", err.Error()),
			)
		}
		t.remaining--
		return
	}

	_ = m.editor.Edit(k.chat, k.msg, "0")
	if err := m.editor.Send(k.chat, m.doneText); err != nil {
		logger.TG.Debug("countdown announce failed",
			slog.String("event", "countdown.done"),
			slog.Int64("chat_id", k.chat),
			slog.String("err", err.Error()),
		)
	}
	m.cancel(k)
}

func (m *Manager) cancel(k key) {
	m.mu.Lock()
	job, ok := m.jobs[k]
	if ok {
		delete(m.jobs, k)
	}
	m.mu.Unlock()
	if ok {
		_ = m.sched.RemoveJob(job.ID())
	}
}

// Active reports how many countdowns are currently registered.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Shutdown stops the scheduler and drops all countdowns.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	m.jobs = make(map[key]gocron.Job)
	m.mu.Unlock()
	return m.sched.Shutdown()
}
