// Package oprf implements the server-side RFC 9497 OPRF/VOPRF/POPRF
// evaluation pipeline (spec component 8): per-mode key preparation, the
// POPRF key tweak, batched evaluation, and DLEQ proof emission.
package oprf

import (
	"github.com/wurp/go-oprf/dleq"
	"github.com/wurp/go-oprf/group"
	"github.com/wurp/go-oprf/hashtocurve"
	"github.com/wurp/go-oprf/keypair"
	"github.com/wurp/go-oprf/oprferr"
	"github.com/wurp/go-oprf/transcript"
)

// Mode is the closed set of protocol variants this engine supports.
type Mode byte

const (
	// Base is the non-verifiable OPRF.
	Base Mode = 0x00
	// Verifiable is VOPRF: the server attaches a DLEQ correctness proof.
	Verifiable Mode = 0x01
	// Partial is POPRF: evaluation is additionally keyed by a public
	// info string, and the server attaches a DLEQ proof.
	Partial Mode = 0x02
)

// IsVerifiable reports whether m requires a DLEQ proof.
func (m Mode) IsVerifiable() bool {
	return m == Verifiable || m == Partial
}

const maxInfoLength = 65535
const maxBatchSize = 65535

// Response is a single blinded-element evaluation result. Proof is nil
// in BASE mode; PublicKey is the server's plain public key in BASE and
// VERIFIABLE mode, and the POPRF-tweaked public key (pk + t*G) in
// PARTIAL mode.
type Response struct {
	Evaluated []byte // 33-byte SEC1 compressed
	Proof     []byte // 64 bytes (c || s), nil outside verifiable modes
	PublicKey []byte // 33-byte SEC1 compressed
}

// Server holds one key generation and evaluates blinded elements
// against it for a fixed Mode.
type Server struct {
	mode    Mode
	keyPair *keypair.KeyPair
}

// NewServer builds a Server for the given mode and key pair.
func NewServer(mode Mode, kp *keypair.KeyPair) *Server {
	return &Server{mode: mode, keyPair: kp}
}

// Mode returns the server's protocol mode.
func (s *Server) Mode() Mode { return s.mode }

// PublicKey returns the server's untweaked public key.
func (s *Server) PublicKey() []byte {
	return s.keyPair.PublicKeyBytes()
}

// ExportPrivateKey returns a fresh copy of the server's secret key.
func (s *Server) ExportPrivateKey() []byte {
	return s.keyPair.PrivateKeyBytes()
}

// Evaluate evaluates a single blinded element in BASE or VERIFIABLE
// mode. Use EvaluateWithInfo in PARTIAL mode.
func (s *Server) Evaluate(blinded []byte) (*Response, error) {
	responses, err := s.evaluateBatch([][]byte{blinded}, nil)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// EvaluateWithInfo evaluates a single blinded element in PARTIAL mode,
// where info participates in the evaluation via the POPRF key tweak.
func (s *Server) EvaluateWithInfo(blinded, info []byte) (*Response, error) {
	responses, err := s.evaluateBatch([][]byte{blinded}, info)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// EvaluateBatch evaluates a batch of blinded elements in BASE or
// VERIFIABLE mode, attaching one shared proof across all responses.
func (s *Server) EvaluateBatch(blinds [][]byte) ([]*Response, error) {
	return s.evaluateBatch(blinds, nil)
}

// EvaluateBatchWithInfo evaluates a batch of blinded elements in PARTIAL
// mode, attaching one shared proof across all responses.
func (s *Server) EvaluateBatchWithInfo(blinds [][]byte, info []byte) ([]*Response, error) {
	return s.evaluateBatch(blinds, info)
}

func (s *Server) evaluateBatch(blinds [][]byte, info []byte) ([]*Response, error) {
	if err := validateModeAndInfo(s.mode, info); err != nil {
		return nil, err
	}
	if len(blinds) == 0 {
		return nil, oprferr.New(oprferr.SizeLimit, "evaluateBatch requires at least one blinded element")
	}
	if len(blinds) > maxBatchSize {
		return nil, oprferr.New(oprferr.SizeLimit, "evaluateBatch exceeds 65535 elements")
	}

	cs := make([]*group.Element, len(blinds))
	for i, b := range blinds {
		c, err := group.DecodeCompressed(b)
		if err != nil {
			return nil, err
		}
		cs[i] = c
	}

	prep, err := prepareKeys(s.mode, s.keyPair, info)
	if err != nil {
		return nil, err
	}

	ds := make([]*group.Element, len(cs))
	for i, c := range cs {
		d := c.Multiply(prep.evaluationScalar)
		if d.IsIdentity() {
			return nil, oprferr.New(oprferr.InvalidPoint, "evaluation produced the identity element")
		}
		ds[i] = d
	}

	var proof *dleq.Proof
	if s.mode.IsVerifiable() {
		proofCs, proofDs := prep.proofInputOrder(cs, ds)
		proof, err = dleq.Generate(byte(s.mode), group.Generator(), prep.proofPublicKey, prep.proofSecret, proofCs, proofDs)
		if err != nil {
			return nil, err
		}
	}

	responses := make([]*Response, len(ds))
	for i, d := range ds {
		r := &Response{
			Evaluated: d.EncodeCompressed(),
			PublicKey: prep.exposedPublicKey.EncodeCompressed(),
		}
		if proof != nil {
			r.Proof = proof.Bytes()
		}
		responses[i] = r
	}
	return responses, nil
}

func validateModeAndInfo(mode Mode, info []byte) error {
	if mode == Partial {
		if info == nil {
			return oprferr.New(oprferr.ModeMisuse, "info is required in PARTIAL mode")
		}
		if len(info) > maxInfoLength {
			return oprferr.New(oprferr.SizeLimit, "info exceeds 65535 bytes")
		}
		return nil
	}
	if info != nil {
		return oprferr.New(oprferr.ModeMisuse, "info is only valid in PARTIAL mode")
	}
	return nil
}

// keyPrep holds the mode-specific quantities spec §4.8's table derives:
// the scalar used to evaluate blinded elements, the secret/public pair
// the DLEQ proof is generated against, the public key exposed to the
// caller (tweaked in PARTIAL mode), and whether the proof's (Cs, Ds)
// arguments must be swapped to (Ds, Cs).
type keyPrep struct {
	evaluationScalar *group.Scalar
	proofSecret      *group.Scalar
	proofPublicKey   *group.Element
	exposedPublicKey *group.Element
	swapped          bool
}

// proofInputOrder returns the (Cs, Ds) pair to hand to the DLEQ prover,
// swapped to (Ds, Cs) in PARTIAL mode per spec §4.8/§4.9: the evaluation
// scalar there is (sk+t)^-1, so the relation that holds is
// blinded = (sk+t) * evaluated rather than evaluated = sk * blinded.
func (p *keyPrep) proofInputOrder(cs, ds []*group.Element) (proofCs, proofDs []*group.Element) {
	if p.swapped {
		return ds, cs
	}
	return cs, ds
}

func prepareKeys(mode Mode, kp *keypair.KeyPair, info []byte) (*keyPrep, error) {
	switch mode {
	case Base:
		return &keyPrep{
			evaluationScalar: kp.SecretKey(),
			exposedPublicKey: kp.PublicKey(),
		}, nil
	case Verifiable:
		return &keyPrep{
			evaluationScalar: kp.SecretKey(),
			proofSecret:      kp.SecretKey(),
			proofPublicKey:   kp.PublicKey(),
			exposedPublicKey: kp.PublicKey(),
		}, nil
	case Partial:
		framedInfo := transcript.FrameInfo(info)
		t, err := hashtocurve.HashToScalar(framedInfo, transcript.HashToScalarDST(byte(Partial)))
		if err != nil {
			return nil, err
		}
		tweakedSecret := kp.SecretKey().Add(t)
		if tweakedSecret.IsZero() {
			return nil, oprferr.New(oprferr.InvalidScalar, "POPRF key tweak produced a zero scalar")
		}
		evaluationScalar, err := tweakedSecret.Invert()
		if err != nil {
			return nil, err
		}
		tweakedPublic := kp.PublicKey().Add(group.MultiplyGenerator(t))
		return &keyPrep{
			evaluationScalar: evaluationScalar,
			proofSecret:      tweakedSecret,
			proofPublicKey:   tweakedPublic,
			exposedPublicKey: tweakedPublic,
			swapped:          true,
		}, nil
	default:
		return nil, oprferr.New(oprferr.ModeMisuse, "unknown mode")
	}
}
