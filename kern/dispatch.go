package kern

import (
	"io"

	"go.uber.org/zap"

	"github.com/kestrelkern/kestrel/addrspace"
	"github.com/kestrelkern/kestrel/stats"
)

// TaskManager is the scheduling hand-off surface the kernel needs: the slot
// occupying the core, plus the exit and yield transitions. Scheduling policy
// stays on the other side of this interface.
type TaskManager interface {
	CurrentSlot() int
	Exit(code int64)
	Yield()
}

// File descriptors the write handler recognizes.
const (
	FDStdout uint64 = 1
	FDStderr uint64 = 2
)

// Kernel is the syscall chokepoint and the collaborators every handler
// reaches through it. Build one during boot; it holds no state of its own
// beyond the fd table.
type Kernel struct {
	logger *zap.SugaredLogger
	stats  *stats.Accountant
	tasks  TaskManager
	clock  stats.Clock
	mem    *addrspace.Set
	fds    map[uint64]io.Writer
}

func New(
	logger *zap.SugaredLogger,
	acct *stats.Accountant,
	tasks TaskManager,
	clock stats.Clock,
	mem *addrspace.Set,
	stdout, stderr io.Writer,
) *Kernel {
	return &Kernel{
		logger: logger,
		stats:  acct,
		tasks:  tasks,
		clock:  clock,
		mem:    mem,
		fds: map[uint64]io.Writer{
			FDStdout: stdout,
			FDStderr: stderr,
		},
	}
}

// Dispatch is the single entry point for every user-mode syscall. The trap
// handler delivers the raw identifier and argument words here; the handler's
// result code travels back unchanged on the trap-return path.
//
// The invocation is recorded before any handler logic runs, so counters
// reflect attempted calls whether or not the handler succeeds — and for
// exit, even though the call never returns to the task.
//
// An identifier outside the recognized set halts the kernel. Returning a
// distinguished error code to the offending task would keep one misbehaving
// task from taking the kernel down, but halting is the current contract.
func (k *Kernel) Dispatch(id uint64, args [3]uint64) int64 {
	k.stats.RecordSyscall(id)

	switch id {
	case SyscallWrite:
		return k.sysWrite(args[0], args[1], args[2])
	case SyscallExit:
		return k.sysExit(int64(args[0]))
	case SyscallYield:
		return k.sysYield()
	case SyscallGetTime:
		return k.sysGetTime(args[0], args[1])
	case SyscallTaskInfo:
		return k.sysTaskInfo(args[0])
	default:
		k.logger.Panicw("unsupported syscall", "id", id, "slot", k.tasks.CurrentSlot())
		return 0 // unreachable
	}
}

// space is the calling task's address space.
func (k *Kernel) space() *addrspace.Space {
	return k.mem.Slot(k.tasks.CurrentSlot())
}
