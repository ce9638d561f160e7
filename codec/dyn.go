package codec

import (
	"fmt"
	"sync"

	"github.com/ezex-io/spark/errors"
)

// DynCodec is the object-safe counterpart of Codec: a registry that must
// hold heterogeneous codec implementations cannot name each one's
// Incoming/Outgoing type parameters, so it stores DynCodec values instead
// and pays one type-switch per call (spec §3 "DynCodec", grounded on the
// teacher's own type-erased pipeline adapters, generalized to codecs).
type DynCodec interface {
	Descriptor() Descriptor
	EncodeDyn(item any, ctx *EncodeContext) (EncodedPayload, error)
	DecodeDyn(src []byte, ctx *DecodeContext) (DecodeOutcome[any], error)
}

// TypedAdapter boxes a generic Codec[Incoming, Outgoing] as an object-safe
// DynCodec. A downcast mismatch on the encode side returns
// "protocol.type_mismatch" instead of panicking.
type TypedAdapter[Incoming any, Outgoing any] struct {
	inner Codec[Incoming, Outgoing]
}

// NewTypedAdapter wraps a generic codec for storage in a heterogeneous
// registry.
func NewTypedAdapter[Incoming any, Outgoing any](inner Codec[Incoming, Outgoing]) *TypedAdapter[Incoming, Outgoing] {
	return &TypedAdapter[Incoming, Outgoing]{inner: inner}
}

// Inner returns the wrapped generic codec.
func (a *TypedAdapter[Incoming, Outgoing]) Inner() Codec[Incoming, Outgoing] { return a.inner }

// Descriptor implements DynCodec.
func (a *TypedAdapter[Incoming, Outgoing]) Descriptor() Descriptor {
	return a.inner.Descriptor()
}

// EncodeDyn implements DynCodec, downcasting item to Outgoing.
func (a *TypedAdapter[Incoming, Outgoing]) EncodeDyn(item any, ctx *EncodeContext) (EncodedPayload, error) {
	typed, ok := item.(Outgoing)
	if !ok {
		var zero Outgoing

		return EncodedPayload{}, errors.New("protocol.type_mismatch",
			fmt.Sprintf("expected type %T, got incompatible type %T", zero, item),
			errors.ProtocolViolation)
	}

	return a.inner.Encode(typed, ctx)
}

// DecodeDyn implements DynCodec, boxing the decoded Incoming value as any.
func (a *TypedAdapter[Incoming, Outgoing]) DecodeDyn(src []byte, ctx *DecodeContext) (DecodeOutcome[any], error) {
	outcome, err := a.inner.Decode(src, ctx)
	if err != nil {
		return DecodeOutcome[any]{}, err
	}

	if value, ok := outcome.IsComplete(); ok {
		return Complete[any](value), nil
	}

	if outcome.IsSkipped() {
		return Skipped[any](), nil
	}

	return Incomplete[any](), nil
}

// Registry looks up DynCodec implementations by descriptor name,
// supporting runtime negotiation of the wire format a connection will
// use (spec §3 "CodecRegistry").
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]DynCodec
}

// NewRegistry builds an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]DynCodec)}
}

// Register adds or replaces the codec stored under its own descriptor
// name. Safe for concurrent use with Lookup/Names: negotiation on one
// connection must never race a hot-reload registering a new codec
// version on another.
func (r *Registry) Register(c DynCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Descriptor().Name] = c
}

// Lookup returns the codec registered under name, if any.
func (r *Registry) Lookup(name string) (DynCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]

	return c, ok
}

// Names returns every registered codec name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}

	return names
}
