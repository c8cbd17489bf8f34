package kernel

import (
	"fmt"
	"strconv"
)

// FD is a file descriptor index.
type FD int32

// LLStdout is the descriptor opened on the first driver at boot.
const LLStdout FD = 0

// Device is a driver. Optional capabilities are discovered through the
// Opener, Closer, Reader, Writer and Ioctler interfaces.
type Device interface {
	Name() string
}

// Opener is called when a descriptor is bound to the driver.
type Opener interface {
	Open(k *Kernel, fd FD, flags, mode int) error
}

// Closer is called when the descriptor is released.
type Closer interface {
	Close(k *Kernel, fd FD) error
}

// Reader reads into p. timeoutMs is 0 for a non-blocking read and negative
// to wait forever.
type Reader interface {
	ReadTimeout(k *Kernel, fd FD, p []byte, timeoutMs int) (int, error)
}

// Writer writes p with the same timeout convention as Reader.
type Writer interface {
	WriteTimeout(k *Kernel, fd FD, p []byte, timeoutMs int) (int, error)
}

// Ioctler handles driver specific control calls.
type Ioctler interface {
	Ioctl(k *Kernel, fd FD, fn int, arg any) error
}

// DriverInit is one entry of the boot driver table. Init usually calls
// RegisterDriver.
type DriverInit struct {
	Minor int
	Init  func(k *Kernel, minor int) error
}

type driverEntry struct {
	name  string
	minor int
	dev   Device
}

type fileEntry struct {
	drv   *driverEntry
	state any
}

// DriverInfo describes a registered driver.
type DriverInfo struct {
	Name  string
	Minor int
	Can   string
}

// FileInfo describes an open descriptor.
type FileInfo struct {
	FD     FD
	Driver string
	State  any
}

// RegisterDriver adds dev to the driver table under its short name plus
// minor, e.g. "tty0".
func (k *Kernel) RegisterDriver(minor int, dev Device) error {
	if dev == nil || minor < 0 {
		return ErrInvalid
	}
	name := truncate(dev.Name(), maxDriverName) + truncate(strconv.Itoa(minor), maxDriverMinor)
	for i := range k.drivers {
		d := &k.drivers[i]
		if d.dev != nil {
			if d.name == name {
				return ErrBusy
			}
			continue
		}
		*d = driverEntry{name: name, minor: minor, dev: dev}
		if k.log != nil {
			k.log.WriteLineString("drv: registered " + name)
		}
		return nil
	}
	return ErrNoSpace
}

// LoadDrivers runs the boot driver table and opens LLStdout on the first
// driver. Failure of the first driver is returned as a *FatalError.
func (k *Kernel) LoadDrivers(table []DriverInit) error {
	if len(table) == 0 || table[0].Init == nil {
		return &FatalError{Reason: "no low-level driver"}
	}
	if err := table[0].Init(k, table[0].Minor); err != nil {
		return &FatalError{Reason: "low-level driver init failed", Err: err}
	}
	if k.drivers[0].dev == nil {
		return &FatalError{Reason: "low-level driver did not register"}
	}
	fd, err := k.Open(k.drivers[0].name, 0, 0)
	if err != nil {
		return &FatalError{Reason: "cannot open " + k.drivers[0].name, Err: err}
	}
	if fd != LLStdout {
		return &FatalError{Reason: fmt.Sprintf("%s opened on fd %d", k.drivers[0].name, fd)}
	}

	for _, d := range table[1:] {
		if d.Init == nil {
			continue
		}
		if err := d.Init(k, d.Minor); err != nil {
			return fmt.Errorf("drv: minor %d: %w", d.Minor, err)
		}
	}
	return nil
}

// Die reports a fatal error through the panic handler and panics.
func (k *Kernel) Die(err error) {
	if k.log != nil {
		k.log.WriteLineString("PANIC: " + err.Error())
	}
	info := PanicInfo{PID: k.Getpid(), Value: err}
	if k.current != nil {
		info.Name = k.current.name
	}
	k.triggerPanic(info)
	panic(err)
}

func (k *Kernel) file(fd FD) *fileEntry {
	if fd < 0 || fd >= MaxDescriptors {
		panic(fmt.Sprintf("kernel: file descriptor %d out of range", fd))
	}
	return &k.files[fd]
}

// Open binds the first free descriptor to the named driver.
func (k *Kernel) Open(name string, flags, mode int) (FD, error) {
	var drv *driverEntry
	for i := range k.drivers {
		if d := &k.drivers[i]; d.dev != nil && d.name == name {
			drv = d
			break
		}
	}
	if drv == nil {
		return -1, ErrNoDevice
	}

	fd := FD(-1)
	for i := range k.files {
		if k.files[i].drv == nil {
			fd = FD(i)
			break
		}
	}
	if fd < 0 {
		return -1, ErrTooManyFiles
	}

	k.files[fd] = fileEntry{drv: drv}
	if o, ok := drv.dev.(Opener); ok {
		if err := o.Open(k, fd, flags, mode); err != nil {
			k.files[fd] = fileEntry{}
			return -1, err
		}
	}
	return fd, nil
}

// Close releases fd.
func (k *Kernel) Close(fd FD) error {
	f := k.file(fd)
	if f.drv == nil {
		return ErrBadFile
	}
	var err error
	if c, ok := f.drv.dev.(Closer); ok {
		err = c.Close(k, fd)
	}
	*f = fileEntry{}
	return err
}

// Read reads from fd through its driver. Drivers without a Reader return
// ErrNotSupported.
func (k *Kernel) Read(fd FD, p []byte, timeoutMs int) (int, error) {
	f := k.file(fd)
	if f.drv == nil {
		return 0, ErrBadFile
	}
	r, ok := f.drv.dev.(Reader)
	if !ok {
		return 0, ErrNotSupported
	}
	return r.ReadTimeout(k, fd, p, timeoutMs)
}

// Write writes to fd through its driver.
func (k *Kernel) Write(fd FD, p []byte, timeoutMs int) (int, error) {
	f := k.file(fd)
	if f.drv == nil {
		return 0, ErrBadFile
	}
	w, ok := f.drv.dev.(Writer)
	if !ok {
		return 0, ErrNotSupported
	}
	return w.WriteTimeout(k, fd, p, timeoutMs)
}

// Ioctl passes fn and arg to the driver behind fd.
func (k *Kernel) Ioctl(fd FD, fn int, arg any) error {
	f := k.file(fd)
	if f.drv == nil {
		return ErrBadFile
	}
	c, ok := f.drv.dev.(Ioctler)
	if !ok {
		return ErrNotSupported
	}
	return c.Ioctl(k, fd, fn, arg)
}

// Seek is not supported by any driver.
func (k *Kernel) Seek(fd FD, off int64, whence int) (int64, error) {
	if k.file(fd).drv == nil {
		return 0, ErrBadFile
	}
	return 0, ErrNotSupported
}

// SetFileState stores driver private state on fd.
func (k *Kernel) SetFileState(fd FD, state any) error {
	f := k.file(fd)
	if f.drv == nil {
		return ErrBadFile
	}
	f.state = state
	return nil
}

// FileState returns the driver private state stored on fd.
func (k *Kernel) FileState(fd FD) any {
	return k.file(fd).state
}

// FileMinor returns the minor number of the driver behind fd.
func (k *Kernel) FileMinor(fd FD) (int, error) {
	f := k.file(fd)
	if f.drv == nil {
		return 0, ErrBadFile
	}
	return f.drv.minor, nil
}

// Drivers lists the registered drivers.
func (k *Kernel) Drivers() []DriverInfo {
	var out []DriverInfo
	for i := range k.drivers {
		d := &k.drivers[i]
		if d.dev == nil {
			continue
		}
		out = append(out, DriverInfo{Name: d.name, Minor: d.minor, Can: capabilities(d.dev)})
	}
	return out
}

// Files lists the open descriptors.
func (k *Kernel) Files() []FileInfo {
	var out []FileInfo
	for i := range k.files {
		f := &k.files[i]
		if f.drv == nil {
			continue
		}
		out = append(out, FileInfo{FD: FD(i), Driver: f.drv.name, State: f.state})
	}
	return out
}

func capabilities(dev Device) string {
	b := []byte("-----")
	if _, ok := dev.(Opener); ok {
		b[0] = 'o'
	}
	if _, ok := dev.(Closer); ok {
		b[1] = 'c'
	}
	if _, ok := dev.(Reader); ok {
		b[2] = 'r'
	}
	if _, ok := dev.(Writer); ok {
		b[3] = 'w'
	}
	if _, ok := dev.(Ioctler); ok {
		b[4] = 'i'
	}
	return string(b)
}
