// Package group implements the P-256 scalar field and group element
// arithmetic the rest of the engine is built on (spec components 2-3).
package group

import (
	"crypto/rand"
	"math/big"

	"github.com/wurp/go-oprf/ciphersuite"
	"github.com/wurp/go-oprf/oprferr"
)

// Scalar is a field element modulo n, the P-256 group order. The zero
// value is not a valid Scalar; use Zero() or decode/derive one.
type Scalar struct {
	v *big.Int // always kept reduced to [0, n)
}

func scalarFromBig(v *big.Int) *Scalar {
	n := ciphersuite.Order()
	r := new(big.Int).Mod(v, n)
	return &Scalar{v: r}
}

// Zero returns the additive identity scalar.
func Zero() *Scalar { return &Scalar{v: big.NewInt(0)} }

// One returns the multiplicative identity scalar.
func One() *Scalar { return &Scalar{v: big.NewInt(1)} }

// RandomScalar draws a scalar uniformly from [1, n) using a
// cryptographically secure source: rand.Int already returns a value
// uniform over [0, n-1) with no bias to correct, so it is shifted by one
// into [1, n) directly, with no rejection step needed.
func RandomScalar() (*Scalar, error) {
	n := ciphersuite.Order()
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	k, err := rand.Int(rand.Reader, nMinus1)
	if err != nil {
		return nil, oprferr.New(oprferr.InvalidScalar, "random source failure: "+err.Error())
	}
	k.Add(k, big.NewInt(1)) // shift into [1, n)
	return &Scalar{v: k}, nil
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Add returns s + other mod n.
func (s *Scalar) Add(other *Scalar) *Scalar {
	return scalarFromBig(new(big.Int).Add(s.v, other.v))
}

// Sub returns s - other mod n.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	return scalarFromBig(new(big.Int).Sub(s.v, other.v))
}

// Mul returns s * other mod n.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	return scalarFromBig(new(big.Int).Mul(s.v, other.v))
}

// Negate returns -s mod n.
func (s *Scalar) Negate() *Scalar {
	return scalarFromBig(new(big.Int).Neg(s.v))
}

// Invert returns s^-1 mod n. Fails if s is zero.
func (s *Scalar) Invert() (*Scalar, error) {
	if s.IsZero() {
		return nil, oprferr.New(oprferr.InvalidScalar, "cannot invert zero scalar")
	}
	n := ciphersuite.Order()
	inv := new(big.Int).ModInverse(s.v, n)
	if inv == nil {
		return nil, oprferr.New(oprferr.InvalidScalar, "scalar has no inverse")
	}
	return &Scalar{v: inv}, nil
}

// Equal reports whether s and other encode to the same value, using a
// non-branching byte-wise comparison per spec's equality requirement.
func (s *Scalar) Equal(other *Scalar) bool {
	a, b := s.Bytes(), other.Bytes()
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// Bytes encodes s as a fixed-width 32-byte big-endian integer.
func (s *Scalar) Bytes() []byte {
	out := make([]byte, ciphersuite.ScalarLength)
	b := s.v.Bytes()
	copy(out[ciphersuite.ScalarLength-len(b):], b)
	return out
}

// BigInt returns the underlying value as a fresh big.Int in [0, n).
// Intended for the hash-to-curve and DLEQ packages that need to combine
// scalars with raw field arithmetic; callers must not assume the result
// aliases s's internal state.
func (s *Scalar) BigInt() *big.Int {
	return new(big.Int).Set(s.v)
}

// NewScalarFromBigInt reduces v modulo n and returns the resulting Scalar.
// Used by the hash-to-curve package, whose hash_to_scalar produces a raw
// big.Int from expanded digest output and folds it into the scalar field.
func NewScalarFromBigInt(v *big.Int) *Scalar {
	return scalarFromBig(v)
}

// DecodeScalar decodes a fixed 32-byte big-endian integer, rejecting any
// encoding whose length is wrong or whose value is >= n (including the
// encoding of n itself).
func DecodeScalar(data []byte) (*Scalar, error) {
	if len(data) != ciphersuite.ScalarLength {
		return nil, oprferr.New(oprferr.InvalidScalar, "scalar must be 32 bytes")
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(ciphersuite.Order()) >= 0 {
		return nil, oprferr.New(oprferr.InvalidScalar, "scalar out of range [0, n)")
	}
	return &Scalar{v: v}, nil
}
