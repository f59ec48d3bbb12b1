// Package oprfclient implements the client side of RFC 9497's
// OPRF/VOPRF/POPRF protocols (spec §6's reference client): Blind,
// Unblind, Finalize, and VOPRF/POPRF proof verification. It exists to
// exercise the server engine's round-trip properties from tests, not
// as a shipped CLI or demo.
package oprfclient

import (
	"crypto/sha256"

	"github.com/wurp/go-oprf/dleq"
	"github.com/wurp/go-oprf/group"
	"github.com/wurp/go-oprf/hashtocurve"
	"github.com/wurp/go-oprf/oprferr"
	"github.com/wurp/go-oprf/transcript"
)

// Mode mirrors oprf.Mode without importing the server package, so the
// client has no dependency on server-side key material types.
type Mode byte

const (
	Base       Mode = 0x00
	Verifiable Mode = 0x01
	Partial    Mode = 0x02
)

// Blinded is the client state carried between Blind and Finalize: the
// blinding scalar and the original input, which Finalize needs again.
type Blinded struct {
	blind *group.Scalar
	input []byte
}

// Blind draws a random blind r, maps input to a curve point via
// hash_to_curve, and returns alpha = r * H(input) alongside the state
// needed to unblind the server's response.
func Blind(mode Mode, input []byte) (*Blinded, []byte, error) {
	r, err := group.RandomScalar()
	if err != nil {
		return nil, nil, err
	}
	return blindWithScalar(mode, input, r)
}

func blindWithScalar(mode Mode, input []byte, r *group.Scalar) (*Blinded, []byte, error) {
	h, err := hashtocurve.HashToCurve(input, transcript.HashToGroupDST(byte(mode)))
	if err != nil {
		return nil, nil, err
	}
	alpha := h.Multiply(r)
	return &Blinded{blind: r, input: input}, alpha.EncodeCompressed(), nil
}

// VerifyProof checks the server's DLEQ proof for a single blinded/
// evaluated pair against its advertised public key. Mode must be
// Verifiable or Partial; the proof-input order is swapped to (Ds, Cs)
// in Partial mode per the POPRF key tweak.
func VerifyProof(mode Mode, blindedElement, evaluatedElement, proof, serverPublicKey []byte) (bool, error) {
	evaluated, err := group.DecodeCompressed(evaluatedElement)
	if err != nil {
		return false, err
	}
	publicKey, err := group.DecodeCompressed(serverPublicKey)
	if err != nil {
		return false, err
	}
	blinded, err := group.DecodeCompressed(blindedElement)
	if err != nil {
		return false, err
	}
	dleqProof, err := dleq.DecodeProof(proof)
	if err != nil {
		return false, err
	}
	proofCs, proofDs := []*group.Element{blinded}, []*group.Element{evaluated}
	if mode == Partial {
		proofCs, proofDs = proofDs, proofCs
	}
	return dleq.Verify(byte(mode), group.Generator(), publicKey, dleqProof, proofCs, proofDs), nil
}

// Unblind removes the blinding factor from the server's evaluated
// element, returning N = r^-1 * evaluatedElement.
func Unblind(state *Blinded, evaluatedElement []byte) (*group.Element, error) {
	evaluated, err := group.DecodeCompressed(evaluatedElement)
	if err != nil {
		return nil, err
	}
	rInv, err := state.blind.Invert()
	if err != nil {
		return nil, err
	}
	return evaluated.Multiply(rInv), nil
}

// finalizeHash computes Hash(input || [info ||] N || "Finalize") per RFC
// 9497, with every field length-prefixed. info is mixed in only in
// PARTIAL mode, between input and N.
func finalizeHash(mode Mode, input, info []byte, n *group.Element) []byte {
	h := sha256.New()
	h.Write(transcript.LengthPrefixed(input))
	if mode == Partial {
		h.Write(transcript.LengthPrefixed(info))
	}
	h.Write(transcript.LengthPrefixed(n.EncodeCompressed()))
	h.Write([]byte(transcript.FinalizeLabel))
	return h.Sum(nil)
}

// Finalize unblinds the server's evaluated element and, for VOPRF and
// POPRF, verifies its DLEQ proof against the server's advertised public
// key before computing the PRF output. info must be nil in BASE and
// VERIFIABLE mode, and the same info passed to the server otherwise.
func Finalize(mode Mode, state *Blinded, blindedElement, evaluatedElement, proof, serverPublicKey, info []byte) ([]byte, error) {
	if mode != Base {
		ok, err := VerifyProof(mode, blindedElement, evaluatedElement, proof, serverPublicKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, oprferr.New(oprferr.ProofVerificationFailure, "DLEQ proof failed to verify")
		}
	}

	n, err := Unblind(state, evaluatedElement)
	if err != nil {
		return nil, err
	}
	return finalizeHash(mode, state.input, info, n), nil
}
