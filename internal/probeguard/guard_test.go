package probeguard

import (
	"errors"
	"testing"
	"time"
	"unsafe"
)

// unmappedAddr is a non-nil address far outside any mapping a test process
// holds. A nil-pointer dereference is a recoverable panic regardless of
// SetPanicOnFault, so it would pass even with the guard mis-wired; faulting
// here exercises the actual fault-to-panic conversion SetPanicOnFault
// performs on a non-nil address.
const unmappedAddr = uintptr(0x7f00_dead_0000)

func TestProbeRecoversFault(t *testing.T) {
	// Run on a goroutine that never calls Install, matching how the
	// background refresh worker and most callers actually invoke Probe:
	// SetPanicOnFault is goroutine-local, so Probe must arm it itself
	// rather than relying on some other goroutine having called Install.
	errCh := make(chan error, 1)
	go func() {
		errCh <- Probe(func() error {
			p := (*byte)(unsafe.Pointer(unmappedAddr))
			_ = *p
			return nil
		})
	}()

	err := <-errCh
	if !errors.Is(err, ErrProbeFault) {
		t.Fatalf("got %v, want ErrProbeFault", err)
	}
}

func TestProbePassesThroughSuccess(t *testing.T) {
	if err := Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer Uninstall()

	called := false
	err := Probe(func() error {
		called = true
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("probe function was not invoked")
	}
}

func TestProbePropagatesOrdinaryError(t *testing.T) {
	want := errors.New("boom")

	err := Probe(func() error {
		return want
	})

	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestActiveReflectsInFlightProbe(t *testing.T) {
	if Active() {
		t.Fatalf("expected Active() false before any Probe call")
	}

	done := make(chan struct{})
	go func() {
		_ = Probe(func() error {
			<-done
			return nil
		})
	}()

	deadline := time.Now().Add(time.Second)
	for !Active() {
		if time.Now().After(deadline) {
			close(done)
			t.Fatalf("Active() never became true")
		}
		time.Sleep(time.Millisecond)
	}
	close(done)
}
