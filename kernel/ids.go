package kernel

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// nonEmptyStr is a string newtype that can never be empty or pure
// whitespace, grounded on original_source's NonEmptyStr contract
// (crates/spark-core/src/kernel/ids.rs).
type nonEmptyStr struct {
	value string
}

func newNonEmptyStr(value string) (nonEmptyStr, error) {
	if strings.TrimSpace(value) == "" {
		return nonEmptyStr{}, fmt.Errorf("kernel: value must not be empty or whitespace")
	}

	return nonEmptyStr{value: value}, nil
}

// RequestId traces a single call through the entry Service and every
// downstream transport hop.
type RequestId struct{ inner nonEmptyStr }

// ParseRequestID validates and wraps a caller-supplied request id.
func ParseRequestID(value string) (RequestId, error) {
	inner, err := newNonEmptyStr(value)
	if err != nil {
		return RequestId{}, err
	}

	return RequestId{inner: inner}, nil
}

// NewRequestID generates a fresh request id backed by a random UUIDv4.
func NewRequestID() RequestId {
	return RequestId{inner: nonEmptyStr{value: uuid.NewString()}}
}

func (r RequestId) String() string { return r.inner.value }

// CorrelationId strings together the requests belonging to one business
// flow (e.g. a SIP dialog spanning INVITE/re-INVITE/BYE).
type CorrelationId struct{ inner nonEmptyStr }

// ParseCorrelationID validates and wraps a caller-supplied correlation id.
func ParseCorrelationID(value string) (CorrelationId, error) {
	inner, err := newNonEmptyStr(value)
	if err != nil {
		return CorrelationId{}, err
	}

	return CorrelationId{inner: inner}, nil
}

// NewCorrelationID generates a fresh correlation id.
func NewCorrelationID() CorrelationId {
	return CorrelationId{inner: nonEmptyStr{value: uuid.NewString()}}
}

func (c CorrelationId) String() string { return c.inner.value }

// IdempotencyKey ensures a caller-retried operation executes at most once.
type IdempotencyKey struct{ inner nonEmptyStr }

// ParseIdempotencyKey validates and wraps a caller-supplied idempotency
// key.
func ParseIdempotencyKey(value string) (IdempotencyKey, error) {
	inner, err := newNonEmptyStr(value)
	if err != nil {
		return IdempotencyKey{}, err
	}

	return IdempotencyKey{inner: inner}, nil
}

func (k IdempotencyKey) String() string { return k.inner.value }

// tokenCharset is the set of characters RFC 3261 allows in a token
// production; branch/tag values generated by this package stick to this
// subset so they never need escaping on the wire.
const tokenCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewToken generates a cryptographically random alphanumeric token of the
// given length, used for SIP Via branch parameters, From/To tags and
// Call-IDs. Ported from the teacher's utils.GenerateRandomCode (crypto/rand
// over a configurable charset), narrowed to the RFC 3261 token charset.
func NewToken(length int) string {
	if length <= 0 {
		return ""
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("kernel: failed to read random bytes: %w", err))
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = tokenCharset[int(b)%len(tokenCharset)]
	}

	return string(out)
}

// ViaBranchMagicCookie is the RFC 3261 §8.1.1.7 prefix every compliant
// branch parameter must start with.
const ViaBranchMagicCookie = "z9hG4bK"

// NewViaBranch generates a fresh Via branch parameter value.
func NewViaBranch() string {
	return ViaBranchMagicCookie + NewToken(16)
}

// NewCallID generates a fresh SIP Call-ID value: a random token followed by
// an '@' and a host/identifier component, per RFC 3261 §8.1.1.4.
func NewCallID(host string) string {
	return NewToken(24) + "@" + host
}

// NewTag generates a fresh From/To tag parameter value.
func NewTag() string {
	return NewToken(10)
}
