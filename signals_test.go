package shroud

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitPlanRegistered(_ *testing.T) {
	// Should not panic
	emitPlanRegistered(context.Background(), "User", 4, 2)
}

func TestEmitPlanRejected(_ *testing.T) {
	emitPlanRejected(context.Background(), "User", newDeclarationError(ErrUnknownPolicy, "User", "Email", `"nope"`))
}

func TestEmitProcessorCreated(_ *testing.T) {
	emitProcessorCreated(context.Background(), "application/json", "User")
}

func TestEmitSendStart(_ *testing.T) {
	emitSendStart(context.Background(), "application/json", "User")
}

func TestEmitSendComplete_Success(_ *testing.T) {
	emitSendComplete(context.Background(), "application/json", "User", 128, 100*time.Millisecond, 3, nil)
}

func TestEmitSendComplete_Error(_ *testing.T) {
	emitSendComplete(context.Background(), "application/json", "User", 0, 100*time.Millisecond, 0, errors.New("test error"))
}

func TestSignalsDefined(t *testing.T) {
	signals := []any{
		SignalPlanRegistered,
		SignalPlanRejected,
		SignalProcessorCreated,
		SignalSendStart,
		SignalSendComplete,
	}
	for i, s := range signals {
		if s == nil {
			t.Errorf("signal %d is nil", i)
		}
	}
}
