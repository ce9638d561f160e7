// Package codec defines the Codec/Encoder/Decoder contract, the
// budget/depth-aware Encode/DecodeContext guards, and a type-erasure
// adapter so heterogeneous codecs can share one dyn-dispatched pipeline
// slot (spec §3 "CodecDescriptor", §4.2).
package codec

// Descriptor labels a codec for negotiation and observability.
type Descriptor struct {
	Name            string
	ContentType     string
	ContentEncoding string
	Schema          string // empty when the codec has no schema identifier
}

// DecodeOutcome is the result of a single Decoder.Decode call.
type DecodeOutcome[T any] struct {
	kind  decodeKind
	value T
}

type decodeKind int

const (
	decodeKindComplete decodeKind = iota
	decodeKindIncomplete
	decodeKindSkipped
)

// Complete wraps a fully-decoded item.
func Complete[T any](value T) DecodeOutcome[T] {
	return DecodeOutcome[T]{kind: decodeKindComplete, value: value}
}

// Incomplete signals the source buffer does not yet hold a whole item; the
// caller should buffer more bytes and retry.
func Incomplete[T any]() DecodeOutcome[T] {
	return DecodeOutcome[T]{kind: decodeKindIncomplete}
}

// Skipped signals the decoder consumed input but produced no item (e.g. a
// keepalive frame).
func Skipped[T any]() DecodeOutcome[T] {
	return DecodeOutcome[T]{kind: decodeKindSkipped}
}

// IsComplete reports whether the outcome carries a decoded item.
func (o DecodeOutcome[T]) IsComplete() (T, bool) {
	return o.value, o.kind == decodeKindComplete
}

// IsIncomplete reports whether more input is needed.
func (o DecodeOutcome[T]) IsIncomplete() bool { return o.kind == decodeKindIncomplete }

// IsSkipped reports whether the decoder deliberately produced nothing.
func (o DecodeOutcome[T]) IsSkipped() bool { return o.kind == decodeKindSkipped }

// EncodedPayload is the result of Encoder.Encode: the serialized bytes plus
// the descriptor the encoder used, so a dyn-dispatched pipeline stage can
// label what it just wrote without re-deriving the content type.
type EncodedPayload struct {
	Bytes      []byte
	Descriptor Descriptor
}

// Encoder serializes a typed item into bytes under budget/frame
// constraints tracked by an EncodeContext.
type Encoder[T any] interface {
	Encode(item T, ctx *EncodeContext) (EncodedPayload, error)
}

// Decoder deserializes a typed item out of a ReadableBuffer under
// budget/frame/depth constraints tracked by a DecodeContext.
type Decoder[T any] interface {
	Decode(src []byte, ctx *DecodeContext) (DecodeOutcome[T], error)
}

// Codec unifies an Encoder/Decoder pair for the same wire shape. Any type
// implementing both Encode and Decode with matching Incoming/Outgoing types
// satisfies Codec automatically by embedding.
type Codec[Incoming any, Outgoing any] interface {
	Encoder[Outgoing]
	Decoder[Incoming]
	Descriptor() Descriptor
}
