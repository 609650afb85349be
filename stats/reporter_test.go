package stats_test

import (
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kestrelkern/kestrel/stats"
)

func TestJSONReporterWriteFile(t *testing.T) {
	store := stats.NewStore()
	slots := &fakeSlots{}
	clock := &fakeClock{now: 500}
	acct := stats.NewAccountant(zap.NewNop().Sugar(), store, slots, clock)

	slots.slot = 0
	acct.StartTimer()
	acct.RecordSyscall(64)
	acct.RecordSyscall(64)

	slots.slot = 3
	acct.RecordSyscall(124)

	fp := path.Join(t.TempDir(), "counts.json")

	reporter := stats.NewJSONReporter(zap.NewNop().Sugar(), store)
	require.NoError(t, reporter.WriteFile(fp))

	bts, err := os.ReadFile(fp)
	require.NoError(t, err, "failed to read report back")

	var reports []stats.SlotReport
	require.NoError(t, json.Unmarshal(bts, &reports))

	require.Equal(t, []stats.SlotReport{
		{Slot: 0, StartTimeMS: 500, Counts: map[uint64]uint32{64: 2}},
		{Slot: 3, StartTimeMS: 0, Counts: map[uint64]uint32{124: 1}},
	}, reports)
}
