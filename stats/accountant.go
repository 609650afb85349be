package stats

import "go.uber.org/zap"

// SlotSource reports which task slot currently occupies the core.
// Implemented by the task manager.
type SlotSource interface {
	CurrentSlot() int
}

// Clock supplies monotonic milliseconds since an arbitrary epoch.
// Implemented by the timer subsystem.
type Clock interface {
	NowMS() uint64
}

// Accountant presents the statistics store in terms of the currently
// scheduled task: every operation resolves the active slot through the
// SlotSource before touching the store.
type Accountant struct {
	logger *zap.SugaredLogger
	store  *Store
	slots  SlotSource
	clock  Clock
}

func NewAccountant(logger *zap.SugaredLogger, store *Store, slots SlotSource, clock Clock) *Accountant {
	return &Accountant{
		logger: logger,
		store:  store,
		slots:  slots,
		clock:  clock,
	}
}

// RecordSyscall increments the active slot's counter for id. Callers must
// only pass identifiers below MaxSyscallNum; an out-of-range id is a
// programming error and panics on the array bound.
func (a *Accountant) RecordSyscall(id uint64) {
	slot := a.slots.CurrentSlot()

	tasks := a.store.ExclusiveAccess()
	defer tasks.Release()

	tasks.Value()[slot].CallTimes[id]++
}

// SyscallCount returns the active slot's counter for id.
func (a *Accountant) SyscallCount(id uint64) uint32 {
	slot := a.slots.CurrentSlot()

	tasks := a.store.ExclusiveAccess()
	defer tasks.Release()

	return tasks.Value()[slot].CallTimes[id]
}

// AllSyscallCounts returns a copy of the active slot's full counter table.
// Mutating the result has no effect on the store.
func (a *Accountant) AllSyscallCounts() [MaxSyscallNum]uint32 {
	slot := a.slots.CurrentSlot()

	tasks := a.store.ExclusiveAccess()
	defer tasks.Release()

	return tasks.Value()[slot].CallTimes
}

// StartTimer opens the active slot's measurement window at the clock's
// current reading. Intended to be called once, when the task is dispatched
// for the first time; calling it again resets the window.
func (a *Accountant) StartTimer() {
	slot := a.slots.CurrentSlot()
	now := a.clock.NowMS()

	tasks := a.store.ExclusiveAccess()
	defer tasks.Release()

	tasks.Value()[slot].StartTimeMS = now

	a.logger.Infow("measurement window started", "slot", slot, "now_ms", now)
}

// ElapsedMS returns now minus the active slot's window start. If StartTimer
// was never called the window start is zero and the result equals now;
// callers must not read it as a real duration in that case.
func (a *Accountant) ElapsedMS() uint64 {
	slot := a.slots.CurrentSlot()
	now := a.clock.NowMS()

	tasks := a.store.ExclusiveAccess()
	defer tasks.Release()

	return now - tasks.Value()[slot].StartTimeMS
}
