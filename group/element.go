package group

import (
	"filippo.io/nistec"

	"github.com/wurp/go-oprf/ciphersuite"
	"github.com/wurp/go-oprf/oprferr"
)

// Element is a P-256 point, backed by filippo.io/nistec's constant-time
// P256Point — the library the retrieved examples use for P-256 point
// arithmetic (see DESIGN.md), rather than crypto/elliptic's deprecated
// Add/ScalarMult/ScalarBaseMult methods. The identity is a valid
// intermediate value for composite DLEQ accumulators but must never
// escape as a public input or evaluation output — DecodeCompressed and
// every boundary-facing constructor reject it.
type Element struct {
	p *nistec.P256Point
}

// Generator returns the P-256 base point G.
func Generator() *Element {
	p, err := new(nistec.P256Point).ScalarBaseMult(One().Bytes())
	if err != nil {
		panic("group: ScalarBaseMult(1) failed: " + err.Error())
	}
	return &Element{p: p}
}

// Identity returns the point at infinity, for use as an accumulator seed
// in batched DLEQ composites. It is never valid at a protocol boundary.
// nistec exposes no direct constructor for it, so it is derived from the
// one addition that is guaranteed to produce it: G + (-G).
func Identity() *Element {
	g := Generator()
	return g.Add(g.Negate())
}

// IsIdentity reports whether e is the point at infinity. nistec encodes
// the identity as a single zero byte rather than a 33-byte compressed
// point (the same convention the standard library's own internal nistec
// fork uses), so the encoded length alone distinguishes it.
func (e *Element) IsIdentity() bool {
	return len(e.p.BytesCompressed()) == 1
}

// Add returns e + other.
func (e *Element) Add(other *Element) *Element {
	result := new(nistec.P256Point).Add(e.p, other.p)
	return &Element{p: result}
}

// Negate returns -e. nistec has no dedicated negation method, so this
// uses the identity -P = (n-1)*P, reusing the scalar field's own Negate
// applied to the multiplicative identity.
func (e *Element) Negate() *Element {
	return e.Multiply(One().Negate())
}

// Sub returns e - other.
func (e *Element) Sub(other *Element) *Element {
	return e.Add(other.Negate())
}

// Multiply returns scalar * e.
func (e *Element) Multiply(scalar *Scalar) *Element {
	result, err := new(nistec.P256Point).ScalarMult(e.p, scalar.Bytes())
	if err != nil {
		// scalar.Bytes() is always a 32-byte big-endian value already
		// reduced mod the group order; ScalarMult accepts any such value
		// unconditionally, so a failure here is a programming error.
		panic("group: ScalarMult failed: " + err.Error())
	}
	return &Element{p: result}
}

// MultiplyGenerator returns scalar * G, computed via nistec's dedicated
// base-point multiplication path.
func MultiplyGenerator(scalar *Scalar) *Element {
	result, err := new(nistec.P256Point).ScalarBaseMult(scalar.Bytes())
	if err != nil {
		panic("group: ScalarBaseMult failed: " + err.Error())
	}
	return &Element{p: result}
}

// Equal reports whether e and other are the same point.
func (e *Element) Equal(other *Element) bool {
	a, b := e.p.BytesCompressed(), other.p.BytesCompressed()
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// EncodeCompressed serializes e as a SEC1 compressed point: a one-byte
// parity prefix (0x02 even-y, 0x03 odd-y) followed by the 32-byte
// big-endian x-coordinate. Callers must not call this on the identity;
// every path that could produce one is rejected before reaching here.
func (e *Element) EncodeCompressed() []byte {
	return e.p.BytesCompressed()
}

// DecodeCompressed decodes a 33-byte SEC1 compressed point, verifying it
// lies on the curve and rejecting both the identity and any off-curve or
// malformed encoding.
func DecodeCompressed(data []byte) (*Element, error) {
	if len(data) != ciphersuite.ElementLength {
		return nil, oprferr.New(oprferr.InvalidPoint, "group element must be 33 bytes")
	}
	p, err := new(nistec.P256Point).SetBytes(data)
	if err != nil {
		return nil, oprferr.New(oprferr.InvalidPoint, "invalid or off-curve point encoding")
	}
	e := &Element{p: p}
	if e.IsIdentity() {
		return nil, oprferr.New(oprferr.InvalidPoint, "identity element is not valid at a protocol boundary")
	}
	return e, nil
}
