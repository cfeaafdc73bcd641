package shroud

import (
	"reflect"
	"sync"
)

// registryKey combines type, codec and engine for cache lookup.
type registryKey struct {
	typ         reflect.Type
	contentType string
	engine      *Engine
}

var (
	registry   = make(map[registryKey]any)
	registryMu sync.RWMutex
)

// Use returns a cached processor or builds a new one.
// The processor is cached by type, codec content type and engine.
func Use[T any](codec Codec, opts ...ProcessorOption) (*Processor[T], error) {
	cfg := processorConfig{engine: Default}
	for _, opt := range opts {
		opt(&cfg)
	}
	key := registryKey{typ: reflect.TypeFor[T](), contentType: codec.ContentType(), engine: cfg.engine}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached.(*Processor[T]), nil
	}

	processor, err := NewProcessor[T](codec, opts...)
	if err != nil {
		return nil, err
	}

	registry[key] = processor
	return processor, nil
}

// Reset clears the processor registry and the Default engine's cached
// plans. This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	registry = make(map[registryKey]any)
	registryMu.Unlock()
	Default.Reset()
}
