package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakePlayer struct {
	restarts int
	paused   bool
	stopped  bool
	frame    int
	total    int
	loops    int
}

func (f *fakePlayer) Restart() { f.restarts++; f.frame = 0; f.loops = 0; f.paused = false }
func (f *fakePlayer) TogglePause() bool {
	f.paused = !f.paused
	return f.paused
}
func (f *fakePlayer) Stop() error { f.stopped = true; return nil }
func (f *fakePlayer) Progress() (int, int, int) { return f.frame, f.total, f.loops }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDrivePlayer(t *testing.T) {
	fp := &fakePlayer{frame: 22050, total: 44100, loops: 1}
	var m tea.Model = NewModel("song", fp, 44100)

	m, _ = m.Update(key(" "))
	if !fp.paused || !m.(Model).paused {
		t.Fatal("space should pause")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Fatal("view should show paused")
	}

	m, _ = m.Update(key("n"))
	if fp.restarts != 1 || m.(Model).paused {
		t.Fatalf("restart: restarts=%d paused=%v", fp.restarts, m.(Model).paused)
	}

	m, cmd := m.Update(key("q"))
	if !fp.stopped {
		t.Fatal("q should stop the player")
	}
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestViewShowsProgress(t *testing.T) {
	fp := &fakePlayer{frame: 22050, total: 44100, loops: 2}
	var m tea.Model = NewModel("demo", fp, 44100)
	m, _ = m.Update(tickMsg{})
	v := m.View()
	for _, want := range []string{"demo", "0:00.5", "0:01.0", "loop 3"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}
