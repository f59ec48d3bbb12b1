// Package transcript builds the RFC 9497 domain-separation tags and
// length-prefixed byte strings that feed every hash in this engine:
// hash-to-curve/scalar DSTs, DeriveKeyPair's input framing, and the DLEQ
// prover/verifier transcripts.
//
// Builders use golang.org/x/crypto/cryptobyte, the same length-prefixed
// wire-format helper the Go standard TLS stack is built on, rather than
// hand-rolled byte concatenation.
package transcript

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/wurp/go-oprf/ciphersuite"
)

// Mode-independent, RFC-fixed domain separation tags. Unlike the
// HashToGroup/HashToScalar/DeriveKeyPair/Seed tags, these never carry a
// mode or ciphersuite suffix.
const (
	CompositeLabel = "Composite"
	ChallengeLabel = "Challenge"
	FinalizeLabel  = "Finalize"
	InfoLabel      = "Info"
)

// I2OSP encodes value as a big-endian integer occupying exactly length
// bytes, per RFC 8017. Callers are responsible for ensuring value fits;
// this mirrors the unchecked I2OSP helpers used throughout the pack's
// hash-to-curve implementations.
func I2OSP(value uint64, length int) []byte {
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = byte(value)
		value >>= 8
	}
	return out
}

// LengthPrefixed returns I2OSP(len(data), 2) || data.
func LengthPrefixed(data []byte) []byte {
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(inner *cryptobyte.Builder) {
		inner.AddBytes(data)
	})
	return b.BytesOrPanic()
}

// ContextString builds contextString(mode) = "OPRFV1-" || I2OSP(mode,1)
// || "-" || "P256-SHA256", the per-mode protocol context mixed into
// every mode-specific DST.
func ContextString(mode byte) []byte {
	var b cryptobyte.Builder
	b.AddBytes([]byte("OPRFV1-"))
	b.AddBytes(I2OSP(uint64(mode), 1))
	b.AddBytes([]byte("-"))
	b.AddBytes([]byte(ciphersuite.SuiteName))
	return b.BytesOrPanic()
}

func withPrefix(prefix string, mode byte) []byte {
	var b cryptobyte.Builder
	b.AddBytes([]byte(prefix))
	b.AddBytes(ContextString(mode))
	return b.BytesOrPanic()
}

// HashToGroupDST returns "HashToGroup-" || contextString(mode).
func HashToGroupDST(mode byte) []byte { return withPrefix("HashToGroup-", mode) }

// HashToScalarDST returns "HashToScalar-" || contextString(mode).
func HashToScalarDST(mode byte) []byte { return withPrefix("HashToScalar-", mode) }

// DeriveKeyPairDST returns "DeriveKeyPair" || contextString(mode).
func DeriveKeyPairDST(mode byte) []byte { return withPrefix("DeriveKeyPair", mode) }

// SeedDST returns "Seed-" || contextString(mode), the transcript tag for
// the batched-DLEQ composite seed.
func SeedDST(mode byte) []byte { return withPrefix("Seed-", mode) }

// FrameInfo builds framedInfo = "Info" || I2OSP(len(info),2) || info,
// the POPRF key-tweak input.
func FrameInfo(info []byte) []byte {
	var b cryptobyte.Builder
	b.AddBytes([]byte(InfoLabel))
	b.AddUint16LengthPrefixed(func(inner *cryptobyte.Builder) {
		inner.AddBytes(info)
	})
	return b.BytesOrPanic()
}

// Concat joins already-framed pieces with no further framing; used to
// assemble the flat byte strings fed to SHA-256/hash_to_scalar once each
// component has already been length-prefixed individually.
func Concat(parts ...[]byte) []byte {
	var b cryptobyte.Builder
	for _, p := range parts {
		b.AddBytes(p)
	}
	return b.BytesOrPanic()
}
