package stats

const (
	// MaxSyscallNum bounds the syscall identifier space: CallTimes carries
	// one counter per raw identifier value below it.
	MaxSyscallNum = 500

	// MaxTasks is the number of task slots that can be loaded at once.
	MaxTasks = 16
)

// TaskStatBlock is the accounting record for one task slot.
type TaskStatBlock struct {
	// CallTimes counts invocations per raw syscall identifier. Counters
	// only ever increment; they reset when a new Store is built at boot.
	CallTimes [MaxSyscallNum]uint32

	// StartTimeMS is when the slot's current measurement window began, in
	// timer milliseconds. It is overwritten, not accumulated, each time the
	// timer is started. Zero means the timer was never started.
	StartTimeMS uint64
}

// Store holds the accounting record for every task slot, indexed by slot:
// the task manager owns the mapping from task identifiers to slots, and
// that mapping must stay stable for as long as a task occupies its slot.
//
// Build one Store during boot and hand it to its consumers. It lives for
// the lifetime of the kernel and is never torn down.
type Store struct {
	cell *ExclusiveCell[[MaxTasks]TaskStatBlock]
}

func NewStore() *Store {
	return &Store{cell: NewExclusiveCell([MaxTasks]TaskStatBlock{})}
}

// ExclusiveAccess grants sole access to the whole record array. Nested
// acquisition from the same call stack panics; see ExclusiveCell.
func (s *Store) ExclusiveAccess() *Borrow[[MaxTasks]TaskStatBlock] {
	return s.cell.ExclusiveAccess()
}
