package task_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kestrelkern/kestrel/task"
)

func TestLoad(t *testing.T) {
	mgr := task.NewManager(zap.NewNop().Sugar(), 4)

	require.NoError(t, mgr.Load(2))
	require.Equal(t, task.Ready, mgr.SlotState(2))

	require.ErrorIs(t, mgr.Load(2), task.ErrSlotOccupied)
	require.ErrorIs(t, mgr.Load(-1), task.ErrBadSlot)
	require.ErrorIs(t, mgr.Load(4), task.ErrBadSlot)
}

func TestScheduleReportsFirstRun(t *testing.T) {
	mgr := task.NewManager(zap.NewNop().Sugar(), 4)
	require.NoError(t, mgr.Load(1))

	require.True(t, mgr.Schedule(1))
	require.Equal(t, 1, mgr.CurrentSlot())
	require.Equal(t, task.Running, mgr.SlotState(1))

	mgr.Yield()
	require.Equal(t, task.Ready, mgr.SlotState(1))

	// second time on the core is not a first run
	require.False(t, mgr.Schedule(1))
}

func TestNextReadyRoundRobin(t *testing.T) {
	mgr := task.NewManager(zap.NewNop().Sugar(), 4)
	require.NoError(t, mgr.Load(0))
	require.NoError(t, mgr.Load(2))

	slot, ok := mgr.NextReady()
	require.True(t, ok)
	require.Equal(t, 2, slot)

	mgr.Schedule(2)
	mgr.Yield()

	slot, ok = mgr.NextReady()
	require.True(t, ok)
	require.Equal(t, 0, slot)

	mgr.Schedule(0)
	mgr.Exit(3)

	code, exited := mgr.ExitStatus(0)
	require.True(t, exited)
	require.Equal(t, int64(3), code)

	// slot 2 is still ready, slot 0 never comes back
	slot, ok = mgr.NextReady()
	require.True(t, ok)
	require.Equal(t, 2, slot)

	mgr.Schedule(2)
	mgr.Exit(0)

	_, ok = mgr.NextReady()
	require.False(t, ok)
}

func TestExitStatusBeforeExit(t *testing.T) {
	mgr := task.NewManager(zap.NewNop().Sugar(), 4)
	require.NoError(t, mgr.Load(0))

	_, exited := mgr.ExitStatus(0)
	require.False(t, exited)
}
