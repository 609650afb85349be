// Package task supplies the scheduling side of the kernel core: a fixed
// slot table tracking which task occupies the core, and a cooperative runner
// that executes user programs one at a time.
package task

import (
	"errors"

	"go.uber.org/zap"
)

var (
	ErrBadSlot      = errors.New("slot index out of range")
	ErrSlotOccupied = errors.New("slot already occupied")
)

// State tracks a slot through its lifetime.
type State int

const (
	Unused State = iota
	Ready
	Running
	Exited
)

// Slot is one entry in the manager's fixed table.
type Slot struct {
	State    State
	ExitCode int64

	// started flips when the slot is first scheduled; the runner uses it to
	// open the task's measurement window exactly once.
	started bool
}

// Manager owns the slot table and the identity of the slot occupying the
// core. It is the single source of truth for "the current task": the
// statistics accountant and the dispatcher both resolve slots through it.
type Manager struct {
	logger  *zap.SugaredLogger
	slots   []Slot
	current int
}

func NewManager(logger *zap.SugaredLogger, n int) *Manager {
	return &Manager{
		logger: logger,
		slots:  make([]Slot, n),
	}
}

// Load marks slot ready to run.
func (m *Manager) Load(slot int) error {
	if slot < 0 || slot >= len(m.slots) {
		return ErrBadSlot
	}

	if m.slots[slot].State != Unused {
		return ErrSlotOccupied
	}

	m.slots[slot].State = Ready
	m.logger.Infow("task loaded", "slot", slot)

	return nil
}

// CurrentSlot reports the slot occupying the core.
func (m *Manager) CurrentSlot() int {
	return m.current
}

// SlotState reports slot's lifecycle state.
func (m *Manager) SlotState(slot int) State {
	return m.slots[slot].State
}

// ExitStatus reports slot's exit code, if it has exited.
func (m *Manager) ExitStatus(slot int) (code int64, exited bool) {
	if m.slots[slot].State != Exited {
		return 0, false
	}

	return m.slots[slot].ExitCode, true
}

// Schedule puts slot on the core. Reports whether this was the slot's first
// time being scheduled.
func (m *Manager) Schedule(slot int) (first bool) {
	m.slots[slot].State = Running
	m.current = slot

	first = !m.slots[slot].started
	m.slots[slot].started = true

	return first
}

// Yield moves the current slot back to Ready; the next Schedule decides who
// runs. Called by the kernel's yield handler.
func (m *Manager) Yield() {
	if m.slots[m.current].State == Running {
		m.slots[m.current].State = Ready
	}
}

// Exit retires the current slot. Called by the kernel's exit handler; the
// slot is never scheduled again.
func (m *Manager) Exit(code int64) {
	m.slots[m.current].State = Exited
	m.slots[m.current].ExitCode = code
}

// NextReady picks the next ready slot after the current one, round robin.
// ok is false when nothing is left to run.
func (m *Manager) NextReady() (slot int, ok bool) {
	n := len(m.slots)

	for i := 1; i <= n; i++ {
		s := (m.current + i) % n
		if m.slots[s].State == Ready {
			return s, true
		}
	}

	return 0, false
}
