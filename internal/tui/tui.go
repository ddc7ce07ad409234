package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"satchel-cli/internal/prefs"
	"satchel-cli/internal/store"
)

func Run(s store.Store) error {
	db, err := store.Open(context.Background(), s)
	if err != nil {
		return err
	}
	defer db.Close()

	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	log := zerolog.New(io.Discard)
	p := prefs.New(prefs.OpenDiskv(s.PrefsDir()), log)

	notify := &programNotifier{}
	m := newAppModel(s, db, p, log, notify)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	notify.bind(prog.Send)

	_, err = prog.Run()
	return err
}

// programNotifier forwards coordinator events into the bubbletea loop. The
// undo timer fires on its own goroutine, after the program already exists.
type programNotifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (n *programNotifier) bind(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *programNotifier) UndoExpired(itemIDs []string) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(undoExpiredMsg{itemIDs: itemIDs})
	}
}
