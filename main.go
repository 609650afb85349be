package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelkern/kestrel/addrspace"
	"github.com/kestrelkern/kestrel/kern"
	"github.com/kestrelkern/kestrel/stats"
	"github.com/kestrelkern/kestrel/task"
)

// wallClock reports monotonic milliseconds since boot.
type wallClock struct {
	epoch time.Time
}

func (c wallClock) NowMS() uint64 {
	return uint64(time.Since(c.epoch).Milliseconds())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		statsOut string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "kestrel",
		Short: "Run the demo workload on the kestrel kernel core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(statsOut, quiet)
		},
	}

	cmd.Flags().StringVar(&statsOut, "stats-out", "counts.json", "where to write the end-of-run syscall count report")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress kernel logging")

	return cmd
}

func newLogger(quiet bool) (*zap.SugaredLogger, error) {
	if quiet {
		return zap.NewNop().Sugar(), nil
	}

	prod, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger: %w", err)
	}

	return prod.Sugar(), nil
}

func run(statsOut string, quiet bool) error {
	logger, err := newLogger(quiet)
	if err != nil {
		return err
	}

	store := stats.NewStore()
	mgr := task.NewManager(logger, stats.MaxTasks)
	clock := wallClock{epoch: time.Now()}
	acct := stats.NewAccountant(logger, store, mgr, clock)
	mem := addrspace.NewSet(logger, stats.MaxTasks)
	kernel := kern.New(logger, acct, mgr, clock, mem, os.Stdout, os.Stderr)
	runner := task.NewRunner(logger, mgr, kernel, acct)

	if err := runner.Load(0, greeter(mem.Slot(0))); err != nil {
		return fmt.Errorf("failed to load slot 0: %w", err)
	}

	if err := runner.Load(1, clockwatcher(mem.Slot(1))); err != nil {
		return fmt.Errorf("failed to load slot 1: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("failed to run tasks: %w", err)
	}

	if buf, err := mem.Slot(0).Slice(infoBase, kern.TaskInfoSize); err == nil {
		if info, ok := kern.DecodeTaskInfo(buf); ok {
			logger.Infow("slot 0 introspection record",
				"writes", info.SyscallTimes[kern.SyscallWrite],
				"yields", info.SyscallTimes[kern.SyscallYield],
				"elapsed_ms", info.TimeMS,
			)
		}
	}

	reporter := stats.NewJSONReporter(logger, store)
	if err := reporter.WriteFile(statsOut); err != nil {
		return fmt.Errorf("failed to write stats report: %w", err)
	}

	return nil
}

// Demo user-program memory layout.
const (
	msgBase  = 0x1000
	timeBase = 0x2000
	infoBase = 0x3000
)

// greeter writes a greeting three times, yielding between writes, then asks
// the kernel for its own accounting record and exits.
func greeter(space *addrspace.Space) task.Program {
	msg := space.Map(msgBase, 64)
	n := copy(msg.Data, "hello from slot 0\n")
	space.Map(infoBase, kern.TaskInfoSize)

	return func(env *task.Env) {
		for i := 0; i < 3; i++ {
			env.Syscall(kern.SyscallWrite, [3]uint64{kern.FDStdout, msgBase, uint64(n)})
			env.Syscall(kern.SyscallYield, [3]uint64{})
		}

		env.Syscall(kern.SyscallTaskInfo, [3]uint64{infoBase, 0, 0})
		env.Syscall(kern.SyscallExit, [3]uint64{0, 0, 0})
	}
}

// clockwatcher samples the clock across a few yields and writes the spread.
func clockwatcher(space *addrspace.Space) task.Program {
	tv := space.Map(timeBase, kern.TimeValSize)
	out := space.Map(msgBase, 64)

	return func(env *task.Env) {
		env.Syscall(kern.SyscallGetTime, [3]uint64{timeBase, 0, 0})
		start, _ := kern.DecodeTimeVal(tv.Data)

		for i := 0; i < 5; i++ {
			env.Syscall(kern.SyscallYield, [3]uint64{})
		}

		env.Syscall(kern.SyscallGetTime, [3]uint64{timeBase, 0, 0})
		end, _ := kern.DecodeTimeVal(tv.Data)

		n := copy(out.Data, fmt.Sprintf("slot 1 watched the clock: %d -> %d us\n", start.USec, end.USec))
		env.Syscall(kern.SyscallWrite, [3]uint64{kern.FDStdout, msgBase, uint64(n)})
		env.Syscall(kern.SyscallExit, [3]uint64{0, 0, 0})
	}
}
