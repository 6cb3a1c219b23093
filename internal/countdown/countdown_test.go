package countdown

import (
	"fmt"
	"sync"
	"testing"
)

type fakeEditor struct {
	mu    sync.Mutex
	edits []string
	sends []string
}

func (f *fakeEditor) Edit(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, fmt.Sprintf("%d/%d:%s", chatID, messageID, text))
	return nil
}

func (f *fakeEditor) Send(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, fmt.Sprintf("%d:%s", chatID, text))
	return nil
}

func TestTickSequence(t *testing.T) {
	ed := &fakeEditor{}
	m, err := NewManager(ed, "done, go ahead")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown() }()

	k := key{chat: 5, msg: 100}
	tk := &ticker{remaining: 2}

	m.tick(k, tk)
	m.tick(k, tk)
	m.tick(k, tk)

	want := []string{"5/100:2", "5/100:1", "5/100:0"}
	if len(ed.edits) != len(want) {
		t.Fatalf("edits = %v", ed.edits)
	}
	for i, w := range want {
		if ed.edits[i] != w {
			t.Fatalf("edit %d = %q, want %q", i, ed.edits[i], w)
		}
	}
	if len(ed.sends) != 1 || ed.sends[0] != "5:done, go ahead" {
		t.Fatalf("completion announce = %v", ed.sends)
	}
}

func TestStartAndCompleteDeregisters(t *testing.T) {
	ed := &fakeEditor{}
	m, err := NewManager(ed, "done")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown() }()

	if err := m.Start(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if m.Active() != 1 {
		t.Fatalf("active = %d, want 1", m.Active())
	}

	// Restarting on the same message replaces, not stacks.
	if err := m.Start(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if m.Active() != 1 {
		t.Fatalf("active after restart = %d, want 1", m.Active())
	}

	// Run the final tick directly: the job must deregister itself.
	k := key{chat: 1, msg: 2}
	m.tick(k, &ticker{remaining: 0})
	if m.Active() != 0 {
		t.Fatalf("active after completion = %d, want 0", m.Active())
	}
}

// A slow editor can make one tick outlast the next firing. Steps must stay
// serialized: every rendered number appears exactly once, in order.
func TestConcurrentTicksStaySerialized(t *testing.T) {
	ed := &fakeEditor{}
	m, err := NewManager(ed, "done")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown() }()

	k := key{chat: 9, msg: 7}
	tk := &ticker{remaining: 4}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.tick(k, tk)
		}()
	}
	wg.Wait()

	want := []string{"9/7:4", "9/7:3", "9/7:2", "9/7:1", "9/7:0"}
	if len(ed.edits) != len(want) {
		t.Fatalf("edits = %v", ed.edits)
	}
	for i, w := range want {
		if ed.edits[i] != w {
			t.Fatalf("edit %d = %q, want %q", i, ed.edits[i], w)
		}
	}
	if len(ed.sends) != 1 {
		t.Fatalf("completion announced %d times", len(ed.sends))
	}
}

func TestStartZeroSecondsNoop(t *testing.T) {
	ed := &fakeEditor{}
	m, err := NewManager(ed, "done")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown() }()

	if err := m.Start(1, 2, 0); err != nil {
		t.Fatal(err)
	}
	if m.Active() != 0 {
		t.Fatal("zero-length countdown should not register")
	}
}
