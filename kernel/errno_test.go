package kernel

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrnoKind(t *testing.T) {
	tests := []struct {
		err  Errno
		want Kind
	}{
		{ErrInvalid, KindInvalidArgument},
		{ErrRange, KindInvalidArgument},
		{ErrFault, KindInvalidArgument},
		{ErrNoSpace, KindResourceExhausted},
		{ErrNoMem, KindResourceExhausted},
		{ErrTooManyFiles, KindResourceExhausted},
		{ErrNoProc, KindNoSuchEntity},
		{ErrNotFound, KindNoSuchEntity},
		{ErrNoDevice, KindNoSuchEntity},
		{ErrBadFile, KindNoSuchEntity},
		{ErrAccess, KindStateConflict},
		{ErrBusy, KindStateConflict},
		{ErrWouldBlock, KindStateConflict},
		{ErrNotSupported, KindStateConflict},
		{ErrDeadlock, KindStateConflict},
		{ErrTimedOut, KindTimedOut},
		{ErrInterrupted, KindInterrupted},
		{ErrHostDown, KindHostDown},
		{Errno(0), KindNone},
	}
	for _, tt := range tests {
		if got := tt.err.Kind(); got != tt.want {
			t.Fatalf("%v.Kind() = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrnoWrapping(t *testing.T) {
	err := fmt.Errorf("drv: minor 1: %w", ErrBusy)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("errors.Is(%v, ErrBusy) = false, want true", err)
	}
	fatal := &FatalError{Reason: "no low-level driver", Err: ErrNoDevice}
	if !errors.Is(fatal, ErrNoDevice) {
		t.Fatalf("errors.Is(%v, ErrNoDevice) = false, want true", fatal)
	}
	if got, want := fatal.Error(), "fatal: no low-level driver: no such device"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
