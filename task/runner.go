package task

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher is the kernel's trap entry as the runner sees it.
type Dispatcher interface {
	Dispatch(id uint64, args [3]uint64) int64
}

// TimerStarter opens the current task's measurement window. Implemented by
// the statistics accountant; fired the first time a slot is scheduled.
type TimerStarter interface {
	StartTimer()
}

// Program is the user-mode code loaded into a slot. It runs until it traps
// exit; returning without exiting counts as exit(0).
type Program func(env *Env)

// Env is a program's only window into the kernel: every interaction is a
// trap into Dispatch. Traps that hand the core away block the program's
// goroutine until the runner reschedules its slot, which is what keeps
// exactly one program running at a time.
type Env struct {
	runner *Runner
	slot   int
}

// Syscall traps into the kernel with id and up to three argument words,
// returning the result code the kernel propagates back.
func (e *Env) Syscall(id uint64, args [3]uint64) int64 {
	return e.runner.trap(e.slot, id, args)
}

type proc struct {
	slot    int
	program Program
	spawned bool

	// resume and trapped pass the core baton: the runner sends resume when
	// the slot is scheduled, the program sends trapped when it gives the
	// core back (yield, exit, or falling off the end).
	resume  chan struct{}
	trapped chan struct{}
}

// Runner drives loaded programs cooperatively on a single logical core.
type Runner struct {
	logger *zap.SugaredLogger
	mgr    *Manager
	kernel Dispatcher
	timer  TimerStarter
	procs  map[int]*proc
}

func NewRunner(logger *zap.SugaredLogger, mgr *Manager, kernel Dispatcher, timer TimerStarter) *Runner {
	return &Runner{
		logger: logger,
		mgr:    mgr,
		kernel: kernel,
		timer:  timer,
		procs:  make(map[int]*proc),
	}
}

// Load places program into slot.
func (r *Runner) Load(slot int, program Program) error {
	if err := r.mgr.Load(slot); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}

	r.procs[slot] = &proc{
		slot:    slot,
		program: program,
		resume:  make(chan struct{}),
		trapped: make(chan struct{}),
	}

	return nil
}

// Run schedules loaded programs round robin until none are runnable or the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.loop(ctx)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed while running tasks: %w", err)
	}

	return nil
}

func (r *Runner) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Infow("run cancelled, exiting...")
			return err
		}

		slot, ok := r.mgr.NextReady()
		if !ok {
			r.logger.Infow("no runnable tasks left, exiting...")
			return nil
		}

		if first := r.mgr.Schedule(slot); first {
			r.timer.StartTimer()
		}

		p := r.procs[slot]
		if !p.spawned {
			p.spawned = true
			go r.runProgram(p)
		}

		// hand the core to the program and wait for it to trap back
		p.resume <- struct{}{}
		<-p.trapped

		if r.mgr.SlotState(slot) == Running {
			// the program returned without trapping exit
			r.logger.Infow("program returned without exit", "slot", slot)
			r.mgr.Exit(0)
		}
	}
}

func (r *Runner) runProgram(p *proc) {
	<-p.resume
	p.program(&Env{runner: r, slot: p.slot})
	p.trapped <- struct{}{}
}

// trap runs on the program's goroutine while the runner is parked waiting
// for it, so dispatch executes on the core's single thread of control. What
// happens next depends on where the dispatch left the slot: an exited slot
// never resumes, a yielded slot waits its turn, anything else returns to the
// program immediately.
func (r *Runner) trap(slot int, id uint64, args [3]uint64) int64 {
	res := r.kernel.Dispatch(id, args)

	p := r.procs[slot]

	switch r.mgr.SlotState(slot) {
	case Exited:
		p.trapped <- struct{}{}
		runtime.Goexit()
	case Ready:
		p.trapped <- struct{}{}
		<-p.resume
	}

	return res
}
