// Package tty is the console driver over a hal.Serial byte stream.
package tty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"ember/hal"
	"ember/kernel"
)

const (
	// Name is the device name; the first driver registers as "tty0".
	Name = "tty"

	rxQueue = 32
	pollMs  = 10
)

// Ioctl function codes.
const (
	IoctlSetEcho = iota + 1
	IoctlGetEcho
	IoctlFlush
)

// Device routes serial bytes between the host and kernel threads.
//
// Pump runs on an ordinary goroutine and hands received chunks over a
// channel; everything else runs on kernel threads.
type Device struct {
	serial hal.Serial
	in     chan []byte

	pending []byte
	echo    bool
	opens   int

	mu      sync.Mutex
	rxBytes uint64
	txBytes uint64
}

// New creates a tty over serial.
func New(serial hal.Serial) *Device {
	return &Device{serial: serial, in: make(chan []byte, rxQueue)}
}

// Init returns a boot table entry that registers d.
func (d *Device) Init() func(k *kernel.Kernel, minor int) error {
	return func(k *kernel.Kernel, minor int) error {
		return k.RegisterDriver(minor, d)
	}
}

func (d *Device) Name() string { return Name }

func (d *Device) Open(k *kernel.Kernel, fd kernel.FD, flags, mode int) error {
	d.opens++
	return nil
}

func (d *Device) Close(k *kernel.Kernel, fd kernel.FD) error {
	if d.opens > 0 {
		d.opens--
	}
	return nil
}

// ReadTimeout copies received bytes into p. A zero timeout never blocks;
// otherwise the calling thread polls until data arrives or the timeout
// expires. It returns 0, nil when nothing arrived.
func (d *Device) ReadTimeout(k *kernel.Kernel, fd kernel.FD, p []byte, timeoutMs int) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	waited := 0
	for {
		if n := d.take(p); n > 0 {
			if d.echo {
				_, _ = d.write(p[:n])
			}
			return n, nil
		}
		if timeoutMs == 0 || k.Getpid() == kernel.NoPID {
			return 0, nil
		}
		if timeoutMs > 0 && waited >= timeoutMs {
			return 0, nil
		}
		k.Sleep(pollMs)
		waited += pollMs
	}
}

func (d *Device) take(p []byte) int {
	if len(d.pending) == 0 {
		select {
		case chunk := <-d.in:
			d.pending = chunk
		default:
			return 0
		}
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n
}

// WriteTimeout writes p to the serial line. Serial writes do not block the
// scheduler for long, so the timeout is ignored.
func (d *Device) WriteTimeout(k *kernel.Kernel, fd kernel.FD, p []byte, timeoutMs int) (int, error) {
	return d.write(p)
}

func (d *Device) write(p []byte) (int, error) {
	if d.serial == nil {
		return 0, hal.ErrNotImplemented
	}
	n, err := d.serial.Write(p)
	d.mu.Lock()
	d.txBytes += uint64(n)
	d.mu.Unlock()
	return n, err
}

func (d *Device) Ioctl(k *kernel.Kernel, fd kernel.FD, fn int, arg any) error {
	switch fn {
	case IoctlSetEcho:
		on, ok := arg.(bool)
		if !ok {
			return kernel.ErrInvalid
		}
		d.echo = on
		return nil
	case IoctlGetEcho:
		out, ok := arg.(*bool)
		if !ok || out == nil {
			return kernel.ErrInvalid
		}
		*out = d.echo
		return nil
	case IoctlFlush:
		d.pending = nil
		for {
			select {
			case <-d.in:
			default:
				return nil
			}
		}
	default:
		return kernel.ErrNotSupported
	}
}

// Stats returns the bytes received and transmitted so far.
func (d *Device) Stats() (rx, tx uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxBytes, d.txBytes
}

// Pump reads the serial line until ctx is done or the line reaches EOF.
func (d *Device) Pump(ctx context.Context) error {
	if d.serial == nil {
		return nil
	}
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, kernel.CmdlineSize)
		for {
			n, err := d.serial.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				d.mu.Lock()
				d.rxBytes += uint64(n)
				d.mu.Unlock()
				select {
				case d.in <- chunk:
				case <-ctx.Done():
					errc <- nil
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, hal.ErrNotImplemented) {
			return nil
		}
		return fmt.Errorf("tty: %w", err)
	}
}
