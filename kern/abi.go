// Package kern is the kernel-side syscall entry point: it decodes the call
// identifier and argument words delivered by the trap mechanism, records the
// invocation against the calling task's slot, and routes to the matching
// handler family.
package kern

import (
	"encoding/binary"

	"github.com/kestrelkern/kestrel/stats"
)

// Syscall identifiers. The table is a stable ABI between user and kernel.
const (
	SyscallWrite    uint64 = 64
	SyscallExit     uint64 = 93
	SyscallYield    uint64 = 124
	SyscallGetTime  uint64 = 169
	SyscallTaskInfo uint64 = 410
)

// Errno-style codes. Handler-level failures cross the ABI as the negated
// code; the dispatcher forwards them unchanged.
const (
	EIO    = 5
	EBADF  = 9
	EFAULT = 14
)

// TimeVal is the record get-time writes to the caller-supplied address.
//
// Layout (little-endian):
//   - u64: seconds
//   - u64: microseconds within the second
type TimeVal struct {
	Sec  uint64
	USec uint64
}

// TimeValSize is the encoded size of a TimeVal in user memory.
const TimeValSize = 16

func (tv *TimeVal) Encode() []byte {
	buf := make([]byte, TimeValSize)
	binary.LittleEndian.PutUint64(buf[0:8], tv.Sec)
	binary.LittleEndian.PutUint64(buf[8:16], tv.USec)

	return buf
}

// DecodeTimeVal decodes an encoded TimeVal.
func DecodeTimeVal(p []byte) (TimeVal, bool) {
	if len(p) < TimeValSize {
		return TimeVal{}, false
	}

	return TimeVal{
		Sec:  binary.LittleEndian.Uint64(p[0:8]),
		USec: binary.LittleEndian.Uint64(p[8:16]),
	}, true
}

// TaskInfo is the record task-info writes to the caller-supplied address:
// the calling task's full per-identifier syscall counts plus its elapsed run
// time. It is the only externally observable artifact of the statistics
// store, so the layout must stay stable.
//
// Layout (little-endian):
//   - u32 × stats.MaxSyscallNum: invocation count per identifier position
//   - u64: elapsed run time in milliseconds
type TaskInfo struct {
	SyscallTimes [stats.MaxSyscallNum]uint32
	TimeMS       uint64
}

// TaskInfoSize is the encoded size of a TaskInfo in user memory.
const TaskInfoSize = 4*stats.MaxSyscallNum + 8

func (ti *TaskInfo) Encode() []byte {
	buf := make([]byte, TaskInfoSize)

	for i, n := range ti.SyscallTimes {
		binary.LittleEndian.PutUint32(buf[4*i:], n)
	}
	binary.LittleEndian.PutUint64(buf[4*stats.MaxSyscallNum:], ti.TimeMS)

	return buf
}

// DecodeTaskInfo decodes an encoded TaskInfo.
func DecodeTaskInfo(p []byte) (TaskInfo, bool) {
	if len(p) < TaskInfoSize {
		return TaskInfo{}, false
	}

	var ti TaskInfo

	for i := range ti.SyscallTimes {
		ti.SyscallTimes[i] = binary.LittleEndian.Uint32(p[4*i:])
	}
	ti.TimeMS = binary.LittleEndian.Uint64(p[4*stats.MaxSyscallNum:])

	return ti, true
}
