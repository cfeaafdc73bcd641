package shroud

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for redaction events. Events carry type metadata and counts,
// never field values.
var (
	SignalPlanRegistered   = capitan.NewSignal("shroud.plan.registered", "Type plan built and cached")
	SignalPlanRejected     = capitan.NewSignal("shroud.plan.rejected", "Type declaration rejected")
	SignalProcessorCreated = capitan.NewSignal("shroud.processor.created", "Processor instantiated")
	SignalSendStart        = capitan.NewSignal("shroud.send.start", "Send operation beginning")
	SignalSendComplete     = capitan.NewSignal("shroud.send.complete", "Send operation finished")
)

// Keys for typed event data.
var (
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyFieldCount    = capitan.NewIntKey("field_count")
	KeyPolicyCount   = capitan.NewIntKey("policy_count")
	KeySize          = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyRedactedCount = capitan.NewIntKey("redacted_count")
	KeyError         = capitan.NewErrorKey("error")
)

// emitPlanRegistered emits an event when a type plan is cached.
func emitPlanRegistered(ctx context.Context, typeName string, fields, policies int) {
	capitan.Emit(ctx, SignalPlanRegistered,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
		KeyPolicyCount.Field(policies),
	)
}

// emitPlanRejected emits an event when a declaration error is found.
func emitPlanRejected(ctx context.Context, typeName string, err error) {
	capitan.Error(ctx, SignalPlanRejected,
		KeyTypeName.Field(typeName),
		KeyError.Field(err),
	)
}

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitSendStart emits an event when send begins.
func emitSendStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalSendStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitSendComplete emits an event when send finishes.
func emitSendComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, redacted int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyRedactedCount.Field(redacted),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSendComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSendComplete, fields...)
	}
}
