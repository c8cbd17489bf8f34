// Package app boots the kernel, its drivers and the console on a HAL.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ember/drivers/tty"
	"ember/hal"
	"ember/kernel"
	"ember/services/console"
	"ember/tasks/helloworld"
)

const (
	DefaultHeapSize    = 1 << 20
	DefaultAppHeapSize = 64 << 10
)

type Config struct {
	// HeapSize is the OS heap in bytes. Thread stacks come from it.
	HeapSize int
	// AppHeapSize is the application heap in bytes; 0 disables it.
	AppHeapSize int
	// Exec runs these console lines in order and halts instead of
	// starting the interactive console.
	Exec []string
}

// System is a booted kernel ready to Run.
type System struct {
	h   hal.HAL
	cfg Config
	k   *kernel.Kernel
	tty *tty.Device
	con *console.Console

	reset bool
}

// New boots a system on h. A failure of the console driver is fatal and
// panics through Kernel.Die.
func New(h hal.HAL, cfg Config) (*System, error) {
	if cfg.HeapSize == 0 {
		cfg.HeapSize = DefaultHeapSize
	}
	s := &System{h: h, cfg: cfg, tty: tty.New(h.Serial())}
	if err := s.boot(); err != nil {
		return nil, err
	}
	return s, nil
}

// boot builds a fresh kernel over the system's tty. The console runs
// cfg.Exec on the first boot only; a reset always comes back interactive.
func (s *System) boot() error {
	s.reset = false
	s.k = kernel.New(s.h.Context(), s.h.Logger())
	installPanicHandler(s.k, s.h)
	s.log("ember: boot")

	if err := s.k.HeapInit(make([]byte, s.cfg.HeapSize), kernel.HeapOS); err != nil {
		return fmt.Errorf("app: os heap: %w", err)
	}
	if s.cfg.AppHeapSize > 0 {
		if err := s.k.HeapInit(make([]byte, s.cfg.AppHeapSize), kernel.HeapApp); err != nil {
			return fmt.Errorf("app: app heap: %w", err)
		}
	}

	if err := loadDrivers(s.k, []kernel.DriverInit{
		{Minor: 0, Init: s.tty.Init()},
	}); err != nil {
		return err
	}

	con, err := console.New(s.k, kernel.LLStdout)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := con.Register(helloworld.Command); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	k := s.k
	con.SetResetHandler(func() {
		s.reset = true
		k.Shutdown()
	})
	s.con = con

	if len(s.cfg.Exec) > 0 {
		_, err = con.StartScript(s.cfg.Exec)
		s.cfg.Exec = nil
	} else {
		_, err = con.Start()
	}
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

func loadDrivers(k *kernel.Kernel, table []kernel.DriverInit) error {
	err := k.LoadDrivers(table)
	var fatal *kernel.FatalError
	if errors.As(err, &fatal) {
		k.Die(fatal)
	}
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// Kernel returns the booted kernel.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// Run schedules the kernel and pumps the serial line until the kernel
// stops or ctx is done. A console reset reboots the kernel in place.
func (s *System) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		for {
			err := s.k.Run(gctx)
			s.log("ember: scheduler stopped")
			if err != nil || !s.reset {
				return err
			}
			s.log("ember: reset")
			if err := s.boot(); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		return s.tty.Pump(gctx)
	})
	return g.Wait()
}

func (s *System) log(msg string) {
	if l := s.h.Logger(); l != nil {
		l.WriteLineString(msg)
	}
}
