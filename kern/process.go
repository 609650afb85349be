package kern

// sysExit records the calling task's exit with the task manager. The task is
// never scheduled again, so from its point of view the call does not return;
// the 0 propagated here keeps the trap-return path uniform but nothing
// consumes it.
func (k *Kernel) sysExit(code int64) int64 {
	k.logger.Infow("task exited", "slot", k.tasks.CurrentSlot(), "code", code)

	k.tasks.Exit(code)

	return 0
}

// sysYield hands the core back to the task manager.
func (k *Kernel) sysYield() int64 {
	k.tasks.Yield()

	return 0
}

// sysGetTime writes the current time as a TimeVal at addr in the calling
// task's address space. The second argument word is a timezone slot in the
// ABI and is ignored.
func (k *Kernel) sysGetTime(addr uint64, _ uint64) int64 {
	now := k.clock.NowMS()
	tv := TimeVal{Sec: now / 1000, USec: now % 1000 * 1000}

	if err := k.space().WriteBytes(addr, tv.Encode()); err != nil {
		k.logger.Errorw("get-time output not mapped", "addr", addr, "err", err)
		return -EFAULT
	}

	return 0
}

// sysTaskInfo snapshots the calling task's accounting into a TaskInfo record
// at addr. The counts include this very call: it was recorded before
// dispatch routed here.
func (k *Kernel) sysTaskInfo(addr uint64) int64 {
	info := TaskInfo{
		SyscallTimes: k.stats.AllSyscallCounts(),
		TimeMS:       k.stats.ElapsedMS(),
	}

	if err := k.space().WriteBytes(addr, info.Encode()); err != nil {
		k.logger.Errorw("task-info output not mapped", "addr", addr, "err", err)
		return -EFAULT
	}

	return 0
}
