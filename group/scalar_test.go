package group

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/wurp/go-oprf/ciphersuite"
)

func TestScalarRoundTrip(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	decoded, err := DecodeScalar(s.Bytes())
	if err != nil {
		t.Fatalf("DecodeScalar: %v", err)
	}
	if !s.Equal(decoded) {
		t.Fatalf("round trip mismatch")
	}
}

func TestScalarDecodeRejectsOrderAndAbove(t *testing.T) {
	n := ciphersuite.Order()
	cases := []struct {
		name string
		v    []byte
	}{
		{"equal to n", leftPad(n.Bytes())},
		{"n plus one", leftPad(new(big.Int).Add(n, big.NewInt(1)).Bytes())},
	}
	for _, c := range cases {
		if _, err := DecodeScalar(c.v); err == nil {
			t.Fatalf("%s: expected error, got none", c.name)
		}
	}
}

func TestScalarDecodeRejectsWrongLength(t *testing.T) {
	if _, err := DecodeScalar(make([]byte, 31)); err == nil {
		t.Fatalf("expected error for short scalar")
	}
	if _, err := DecodeScalar(make([]byte, 33)); err == nil {
		t.Fatalf("expected error for long scalar")
	}
}

func TestScalarInvert(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	inv, err := s.Invert()
	if err != nil {
		t.Fatalf("Invert: %v", err)
	}
	product := s.Mul(inv)
	if !product.Equal(One()) {
		t.Fatalf("s * s^-1 != 1")
	}
}

func TestScalarInvertZeroFails(t *testing.T) {
	if _, err := Zero().Invert(); err == nil {
		t.Fatalf("expected error inverting zero")
	}
}

func TestScalarArithmetic(t *testing.T) {
	a, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	b, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	sum := a.Add(b)
	diff := sum.Sub(b)
	if !diff.Equal(a) {
		t.Fatalf("(a+b)-b != a")
	}
	if !a.Add(a.Negate()).Equal(Zero()) {
		t.Fatalf("a + (-a) != 0")
	}
}

func leftPad(b []byte) []byte {
	out := make([]byte, ciphersuite.ScalarLength)
	copy(out[ciphersuite.ScalarLength-len(b):], b)
	return out
}

func TestScalarHexDecode(t *testing.T) {
	// sk from the DeriveKeyPair/OPRF RFC 9497 P-256 test vector.
	raw, err := hex.DecodeString("159749d750713afe245d2d39ccfaae8381c53ce92d098a9375ee70739c7ac0bf")
	if err != nil {
		t.Fatalf("hex decode: %v", err)
	}
	if _, err := DecodeScalar(raw); err != nil {
		t.Fatalf("DecodeScalar: %v", err)
	}
}
