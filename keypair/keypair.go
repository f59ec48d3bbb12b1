// Package keypair implements KeyPair construction and RFC 9497's
// deterministic DeriveKeyPair algorithm (spec component 6).
package keypair

import (
	"github.com/wurp/go-oprf/ciphersuite"
	"github.com/wurp/go-oprf/group"
	"github.com/wurp/go-oprf/hashtocurve"
	"github.com/wurp/go-oprf/oprferr"
	"github.com/wurp/go-oprf/transcript"
)

// maxDeriveCounter bounds DeriveKeyPair's retry loop to the single byte
// I2OSP(counter, 1) can represent.
const maxDeriveCounter = 255

// maxInfoLength is the largest seed-derivation info string this engine
// accepts, per spec's byte-level contract.
const maxInfoLength = 65535

// KeyPair is an immutable (sk, pk) pair with sk != 0.
type KeyPair struct {
	sk *group.Scalar
	pk *group.Element
}

// SecretKey returns the private scalar.
func (kp *KeyPair) SecretKey() *group.Scalar { return kp.sk }

// PublicKey returns the public point pk = sk*G.
func (kp *KeyPair) PublicKey() *group.Element { return kp.pk }

// PrivateKeyBytes returns a fresh 32-byte copy of sk; the returned slice
// never aliases internal state.
func (kp *KeyPair) PrivateKeyBytes() []byte {
	return kp.sk.Bytes()
}

// PublicKeyBytes returns a fresh 33-byte SEC1 compressed copy of pk.
func (kp *KeyPair) PublicKeyBytes() []byte {
	return kp.pk.EncodeCompressed()
}

func newKeyPair(sk *group.Scalar) (*KeyPair, error) {
	if sk.IsZero() {
		return nil, oprferr.New(oprferr.InvalidScalar, "secret key must be nonzero")
	}
	return &KeyPair{sk: sk, pk: group.MultiplyGenerator(sk)}, nil
}

// Random generates a fresh KeyPair from a cryptographically secure
// random source.
func Random() (*KeyPair, error) {
	sk, err := group.RandomScalar()
	if err != nil {
		return nil, err
	}
	return newKeyPair(sk)
}

// FromSecretKey builds a KeyPair from a caller-supplied 32-byte secret
// scalar, rejecting zero and out-of-range values.
func FromSecretKey(sk []byte) (*KeyPair, error) {
	scalar, err := group.DecodeScalar(sk)
	if err != nil {
		return nil, err
	}
	return newKeyPair(scalar)
}

// DeriveKeyPair implements RFC 9497's DeriveKeyPair: given a 32-byte
// seed and an info string of at most 65535 bytes, deterministically
// derives a KeyPair for the given mode by iterating a counter until a
// nonzero scalar is found.
func DeriveKeyPair(mode byte, seed, info []byte) (*KeyPair, error) {
	if len(seed) != ciphersuite.ScalarLength {
		return nil, oprferr.New(oprferr.SizeLimit, "seed must be exactly 32 bytes")
	}
	if len(info) > maxInfoLength {
		return nil, oprferr.New(oprferr.SizeLimit, "info exceeds 65535 bytes")
	}

	deriveInput := transcript.Concat(seed, transcript.LengthPrefixed(info))
	dst := transcript.DeriveKeyPairDST(mode)

	for counter := 0; counter <= maxDeriveCounter; counter++ {
		msg := transcript.Concat(deriveInput, transcript.I2OSP(uint64(counter), 1))
		sk, err := hashtocurve.HashToScalar(msg, dst)
		if err != nil {
			return nil, err
		}
		if !sk.IsZero() {
			return newKeyPair(sk)
		}
	}

	return nil, oprferr.New(oprferr.DeriveKeyPairFailure, "exhausted 256 counter values without a nonzero scalar")
}
