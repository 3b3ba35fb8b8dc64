package tui

import (
	"sync"

	"github.com/Veraticus/cashflow/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// bridge forwards service notifications into the program. The service calls
// it under its lock, so it never blocks: events are coalesced and the next
// listen command picks up the latest of each kind.
type bridge struct {
	snapshot *model.Snapshot
	alert    *model.AlertEvent
	notify   chan struct{}
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
}

func newBridge() *bridge {
	return &bridge{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// SnapshotUpdated implements service.Observer.
func (b *bridge) SnapshotUpdated(s model.Snapshot) {
	b.mu.Lock()
	b.snapshot = &s
	b.mu.Unlock()
	b.wake()
}

// AlertRaised implements service.Observer.
func (b *bridge) AlertRaised(e model.AlertEvent) {
	b.mu.Lock()
	b.alert = &e
	b.mu.Unlock()
	b.wake()
}

func (b *bridge) wake() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}

// listen waits for the next notification and returns it as a message.
func (b *bridge) listen() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg := b.take(); msg != nil {
				return msg
			}
			select {
			case <-b.notify:
			case <-b.done:
				return nil
			}
		}
	}
}

// take returns the pending event, snapshots first, or nil when there is none.
func (b *bridge) take() tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snapshot != nil {
		s := *b.snapshot
		b.snapshot = nil
		return snapshotMsg{snapshot: s}
	}
	if b.alert != nil {
		e := *b.alert
		b.alert = nil
		return alertMsg{event: e}
	}
	return nil
}
