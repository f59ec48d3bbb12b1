// Package ciphersuite holds the fixed RFC 9497 parameters for the
// P256-SHA256 OPRF ciphersuite (suite ID 0x0003): the NIST P-256 curve,
// its generator and order, the Simplified SWU constant, and the wire
// lengths every other package in this module builds against.
package ciphersuite

import (
	"crypto/elliptic"
	"math/big"
)

// SuiteName is the RFC 9497 identifier for this ciphersuite, used to
// build contextString(mode) in the transcript package.
const SuiteName = "P256-SHA256"

// SuiteID is the two-byte ciphersuite identifier (0x0003) from the
// VOPRF/OPRF IANA registry.
const SuiteID uint16 = 0x0003

const (
	// ScalarLength is the encoded size of a Scalar, in bytes.
	ScalarLength = 32
	// ElementLength is the encoded size of a GroupElement (SEC1
	// compressed), in bytes.
	ElementLength = 33
	// HashLength is the output size of SHA-256, in bytes.
	HashLength = 32
	// ExpandLength ("L" in RFC 9380) is the number of bytes drawn from
	// expand_message_xmd per field element during hash_to_field.
	ExpandLength = 48
	// ProofLength is the encoded size of a DLEQ Proof (c || s).
	ProofLength = 2 * ScalarLength
)

// Curve returns the P-256 curve used by this ciphersuite, the source of
// the domain parameters (order, field prime, Weierstrass coefficients,
// generator) the rest of this package exposes. Point arithmetic itself
// is done by the group package via filippo.io/nistec, not through this
// curve's own (deprecated) Add/ScalarMult methods — see DESIGN.md.
func Curve() elliptic.Curve {
	return elliptic.P256()
}

// Order returns n, the order of the P-256 base point group. Scalars are
// field elements modulo this value.
func Order() *big.Int {
	return new(big.Int).Set(Curve().Params().N)
}

// FieldPrime returns p, the P-256 base field prime. Hash-to-curve field
// elements (u0, u1) live modulo this value, distinct from Order.
func FieldPrime() *big.Int {
	return new(big.Int).Set(Curve().Params().P)
}

// CurveA returns the Weierstrass "a" coefficient for P-256: a = -3 mod p.
func CurveA() *big.Int {
	a := new(big.Int).Sub(FieldPrime(), big.NewInt(3))
	return a.Mod(a, FieldPrime())
}

// CurveB returns the Weierstrass "b" coefficient for P-256.
func CurveB() *big.Int {
	return new(big.Int).Set(Curve().Params().B)
}

// Generator returns the affine coordinates of the P-256 base point G.
func Generator() (x, y *big.Int) {
	params := Curve().Params()
	return new(big.Int).Set(params.Gx), new(big.Int).Set(params.Gy)
}

// swuZ is the Simplified SWU non-square constant for P256_XMD:SHA-256_SSWU_RO_,
// fixed by RFC 9380 Appendix F.2 to Z = -10 mod p.
var swuZ = big.NewInt(-10)

// SWUConstantZ returns Z mod p, reduced into [0, p).
func SWUConstantZ() *big.Int {
	z := new(big.Int).Mod(swuZ, FieldPrime())
	return z
}
