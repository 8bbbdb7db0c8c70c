package confirm

import (
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
)

type stubVerifier struct {
	err   error
	calls int
}

func (v *stubVerifier) VerifyPassword(ctx context.Context, token, password string) error {
	v.calls++
	return v.err
}

func newTestMachine(t *testing.T, verifier Verifier) *Machine {
	t.Helper()
	machine, err := NewMachine(verifier, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building machine: %v", err)
	}
	return machine
}

func TestConfirmRunsActionOnce(t *testing.T) {
	t.Parallel()

	machine := newTestMachine(t, &stubVerifier{})
	runs := 0
	if err := machine.Request("cancel order o1", func(ctx context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if label, pending := machine.Pending(); !pending || label != "cancel order o1" {
		t.Fatalf("expected pending action, got %q/%v", label, pending)
	}

	if err := machine.Confirm(context.Background(), "tok-1", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != 1 {
		t.Fatalf("expected exactly one run, got %d", runs)
	}
	if machine.Phase() != PhaseIdle {
		t.Fatalf("machine must return to idle, got %s", machine.Phase())
	}
}

func TestWrongPasswordKeepsActionPending(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{err: pkgerrors.New(pkgerrors.CodeAuthFailed, "wrong password")}
	machine := newTestMachine(t, verifier)
	runs := 0
	if err := machine.Request("deactivate p1", func(ctx context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := machine.Confirm(context.Background(), "tok-1", "oops")
	if !pkgerrors.HasCode(err, pkgerrors.CodeAuthFailed) {
		t.Fatalf("expected AUTH_FAILED, got %v", err)
	}
	if runs != 0 {
		t.Fatal("action must not run on failed verification")
	}
	if machine.Phase() != PhaseAwaiting {
		t.Fatalf("failed verification must keep the action pending, got %s", machine.Phase())
	}

	// Retry with the right password.
	verifier.err = nil
	if err := machine.Confirm(context.Background(), "tok-1", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != 1 {
		t.Fatalf("expected one run after retry, got %d", runs)
	}
}

func TestRequestWhilePendingRejected(t *testing.T) {
	t.Parallel()

	machine := newTestMachine(t, &stubVerifier{})
	noop := func(ctx context.Context) error { return nil }
	if err := machine.Request("first", noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := machine.Request("second", noop); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("second request must be rejected, got %v", err)
	}
}

func TestCancelDiscardsAction(t *testing.T) {
	t.Parallel()

	machine := newTestMachine(t, &stubVerifier{})
	runs := 0
	if err := machine.Request("cancel order o1", func(ctx context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := machine.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := machine.Confirm(context.Background(), "tok-1", "secret"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("confirm after cancel must fail, got %v", err)
	}
	if runs != 0 {
		t.Fatal("cancelled action must never run")
	}
}

func TestActionFailureReturnsToIdle(t *testing.T) {
	t.Parallel()

	machine := newTestMachine(t, &stubVerifier{})
	boom := errors.New("backend down")
	if err := machine.Request("cancel order o1", func(ctx context.Context) error {
		return boom
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := machine.Confirm(context.Background(), "tok-1", "secret"); !errors.Is(err, boom) {
		t.Fatalf("expected action error surfaced, got %v", err)
	}
	if machine.Phase() != PhaseIdle {
		t.Fatalf("failed action still consumes the request, got %s", machine.Phase())
	}
}

func TestConfirmWithoutRequest(t *testing.T) {
	t.Parallel()

	machine := newTestMachine(t, &stubVerifier{})
	if err := machine.Confirm(context.Background(), "tok-1", "secret"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
