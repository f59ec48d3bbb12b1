// Package dleq implements the batched DLEQ (discrete-log equality)
// prover and verifier RFC 9497 uses for VOPRF/POPRF correctness proofs
// (spec component 7): proving log_A(B) == log_M(Z) over a composite
// built from parallel (Ci, Di) lists.
package dleq

import (
	"crypto/sha256"

	"github.com/wurp/go-oprf/ciphersuite"
	"github.com/wurp/go-oprf/group"
	"github.com/wurp/go-oprf/hashtocurve"
	"github.com/wurp/go-oprf/oprferr"
	"github.com/wurp/go-oprf/transcript"
)

// maxBatchSize is the largest number of (Ci, Di) pairs a single batched
// proof may cover.
const maxBatchSize = 65535

// Proof is a DLEQ proof (c, s), serialized as c || s (64 bytes).
type Proof struct {
	C *group.Scalar
	S *group.Scalar
}

// Bytes serializes the proof as a fixed 64-byte c || s encoding.
func (p *Proof) Bytes() []byte {
	return transcript.Concat(p.C.Bytes(), p.S.Bytes())
}

// DecodeProof parses a fixed 64-byte c || s encoding.
func DecodeProof(data []byte) (*Proof, error) {
	if len(data) != ciphersuite.ProofLength {
		return nil, oprferr.New(oprferr.InvalidScalar, "proof must be 64 bytes")
	}
	c, err := group.DecodeScalar(data[:ciphersuite.ScalarLength])
	if err != nil {
		return nil, err
	}
	s, err := group.DecodeScalar(data[ciphersuite.ScalarLength:])
	if err != nil {
		return nil, err
	}
	return &Proof{C: c, S: s}, nil
}

func seedTranscript(mode byte, publicKey *group.Element) []byte {
	seedDST := transcript.SeedDST(mode)
	h := sha256.New()
	h.Write(transcript.LengthPrefixed(publicKey.EncodeCompressed()))
	h.Write(transcript.LengthPrefixed(seedDST))
	return h.Sum(nil)
}

func compositeCoefficient(mode byte, seed []byte, index int, ci, di *group.Element) (*group.Scalar, error) {
	msg := transcript.Concat(
		transcript.LengthPrefixed(seed),
		transcript.I2OSP(uint64(index), 2),
		transcript.LengthPrefixed(ci.EncodeCompressed()),
		transcript.LengthPrefixed(di.EncodeCompressed()),
		[]byte(transcript.CompositeLabel),
	)
	return hashtocurve.HashToScalar(msg, transcript.HashToScalarDST(mode))
}

func validateBatch(cs, ds []*group.Element) error {
	if len(cs) != len(ds) {
		return oprferr.New(oprferr.SizeLimit, "Cs and Ds must have equal length")
	}
	if len(cs) == 0 {
		return oprferr.New(oprferr.SizeLimit, "batch must contain at least one pair")
	}
	if len(cs) > maxBatchSize {
		return oprferr.New(oprferr.SizeLimit, "batch exceeds 65535 pairs")
	}
	return nil
}

// computeM accumulates M = sum(di * Ci) without needing Z, used by the
// prover who derives Z = k*M directly rather than summing di*Di.
func computeM(mode byte, publicKey *group.Element, cs, ds []*group.Element) (*group.Element, error) {
	seed := seedTranscript(mode, publicKey)
	m := group.Identity()
	for i := range cs {
		di, err := compositeCoefficient(mode, seed, i, cs[i], ds[i])
		if err != nil {
			return nil, err
		}
		m = m.Add(cs[i].Multiply(di))
	}
	return m, nil
}

// computeComposites accumulates both M = sum(di*Ci) and Z = sum(di*Di),
// used by the verifier, who does not hold the discrete log k.
func computeComposites(mode byte, publicKey *group.Element, cs, ds []*group.Element) (m, z *group.Element, err error) {
	seed := seedTranscript(mode, publicKey)
	m = group.Identity()
	z = group.Identity()
	for i := range cs {
		di, derr := compositeCoefficient(mode, seed, i, cs[i], ds[i])
		if derr != nil {
			return nil, nil, derr
		}
		m = m.Add(cs[i].Multiply(di))
		z = z.Add(ds[i].Multiply(di))
	}
	return m, z, nil
}

func challenge(mode byte, publicKey, m, z, t2, t3 *group.Element) (*group.Scalar, error) {
	msg := transcript.Concat(
		transcript.LengthPrefixed(publicKey.EncodeCompressed()),
		transcript.LengthPrefixed(m.EncodeCompressed()),
		transcript.LengthPrefixed(z.EncodeCompressed()),
		transcript.LengthPrefixed(t2.EncodeCompressed()),
		transcript.LengthPrefixed(t3.EncodeCompressed()),
		[]byte(transcript.ChallengeLabel),
	)
	return hashtocurve.HashToScalar(msg, transcript.HashToScalarDST(mode))
}

// Generate produces a batched DLEQ proof that log_generator(publicKey)
// == log_M(Z) for the composite built from (cs, ds), using a freshly
// drawn nonzero nonce.
func Generate(mode byte, generator, publicKey *group.Element, secret *group.Scalar, cs, ds []*group.Element) (*Proof, error) {
	nonce, err := group.RandomScalar()
	if err != nil {
		return nil, err
	}
	return GenerateWithNonce(mode, generator, publicKey, secret, cs, ds, nonce)
}

// GenerateWithNonce is the nonce-taking variant used to reproduce fixed
// test vectors; production callers should use Generate. It rejects a
// null (zero) nonce.
func GenerateWithNonce(mode byte, generator, publicKey *group.Element, secret *group.Scalar, cs, ds []*group.Element, nonce *group.Scalar) (*Proof, error) {
	if nonce.IsZero() {
		return nil, oprferr.New(oprferr.InvalidScalar, "DLEQ nonce must be nonzero")
	}
	if err := validateBatch(cs, ds); err != nil {
		return nil, err
	}

	m, err := computeM(mode, publicKey, cs, ds)
	if err != nil {
		return nil, err
	}
	z := m.Multiply(secret) // Z = k*M, equivalent to sum(di*Di) by construction

	t2 := generator.Multiply(nonce)
	t3 := m.Multiply(nonce)

	c, err := challenge(mode, publicKey, m, z, t2, t3)
	if err != nil {
		return nil, err
	}
	s := nonce.Sub(c.Mul(secret))

	return &Proof{C: c, S: s}, nil
}

// Verify checks a batched DLEQ proof against the composite built from
// (cs, ds). It never errors on a well-formed-but-invalid proof — it
// returns false. Malformed batches (empty, mismatched lengths, or over
// 65535 pairs) also return false.
func Verify(mode byte, generator, publicKey *group.Element, proof *Proof, cs, ds []*group.Element) bool {
	if err := validateBatch(cs, ds); err != nil {
		return false
	}

	m, z, err := computeComposites(mode, publicKey, cs, ds)
	if err != nil {
		return false
	}

	t2 := generator.Multiply(proof.S).Add(publicKey.Multiply(proof.C))
	t3 := m.Multiply(proof.S).Add(z.Multiply(proof.C))

	expected, err := challenge(mode, publicKey, m, z, t2, t3)
	if err != nil {
		return false
	}

	return expected.Equal(proof.C)
}
