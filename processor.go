package shroud

import (
	"context"
	"reflect"
	"time"
)

// Processor redacts values of type T and encodes them with a codec, for
// payloads bound for logs and telemetry. It is not a general serializer:
// values meant for storage or API responses should be encoded directly,
// where unredacted Sensitive fields keep their raw value.
//
// Processors are safe for concurrent use. Declarations of T are validated
// when the processor is created, so Send never fails on a misdeclared type.
type Processor[T any] struct {
	codec    Codec
	engine   *Engine
	typeName string
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorConfig)

type processorConfig struct {
	engine *Engine
}

// WithEngine selects the engine a processor redacts with. Defaults to
// Default.
func WithEngine(e *Engine) ProcessorOption {
	return func(c *processorConfig) {
		if e != nil {
			c.engine = e
		}
	}
}

// NewProcessor creates a Processor for type T after validating T's
// declarations.
func NewProcessor[T any](codec Codec, opts ...ProcessorOption) (*Processor[T], error) {
	cfg := processorConfig{engine: Default}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := RegisterWith[T](cfg.engine); err != nil {
		return nil, err
	}

	p := &Processor[T]{
		codec:    codec,
		engine:   cfg.engine,
		typeName: reflect.TypeFor[T]().String(),
	}

	emitProcessorCreated(context.Background(), codec.ContentType(), p.typeName)
	return p, nil
}

// ContentType returns the content type of the processor's codec.
func (p *Processor[T]) ContentType() string {
	return p.codec.ContentType()
}

// Engine returns the engine the processor redacts with.
func (p *Processor[T]) Engine() *Engine {
	return p.engine
}

// Send redacts a copy of obj and marshals the result. obj is not modified.
func (p *Processor[T]) Send(ctx context.Context, obj *T) ([]byte, error) {
	start := time.Now()
	emitSendStart(ctx, p.codec.ContentType(), p.typeName)

	var (
		retErr   error
		retData  []byte
		redacted int
	)
	defer func() {
		emitSendComplete(ctx, p.codec.ContentType(), p.typeName,
			len(retData), time.Since(start), redacted, retErr)
	}()

	if obj == nil {
		retData, retErr = p.marshal(nil)
		return retData, retErr
	}

	out, n := p.engine.redactValue(reflect.ValueOf(obj).Elem())
	redacted = n
	var clone T
	reflect.ValueOf(&clone).Elem().Set(out)

	retData, retErr = p.marshal(&clone)
	return retData, retErr
}

// SendAll redacts and marshals every element of objs as one document.
func (p *Processor[T]) SendAll(ctx context.Context, objs []T) ([]byte, error) {
	start := time.Now()
	emitSendStart(ctx, p.codec.ContentType(), p.typeName)

	var (
		retErr   error
		retData  []byte
		redacted int
	)
	defer func() {
		emitSendComplete(ctx, p.codec.ContentType(), p.typeName,
			len(retData), time.Since(start), redacted, retErr)
	}()

	out, n := p.engine.redactValue(reflect.ValueOf(objs))
	redacted = n
	retData, retErr = p.marshal(out.Interface())
	return retData, retErr
}

func (p *Processor[T]) marshal(v any) ([]byte, error) {
	data, err := p.codec.Marshal(v)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}
