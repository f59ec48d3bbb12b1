// Package oprferr defines the typed error taxonomy shared by every layer
// of the OPRF engine, from scalar decoding up through the key manager.
package oprferr

import "fmt"

// Kind identifies the class of failure at the engine's boundary.
//
// Kind is a closed set: new failure classes belong in this list, not in
// ad-hoc sentinel errors scattered across packages.
type Kind int

const (
	// InvalidPoint covers point decoding failures, the identity element
	// where a non-identity point is required, and off-curve encodings.
	InvalidPoint Kind = iota
	// InvalidScalar covers scalar length/range failures and zero where
	// a nonzero scalar is required.
	InvalidScalar
	// ModeMisuse covers info supplied outside PARTIAL mode, or missing
	// in PARTIAL mode. This is a programmer error, not an input error.
	ModeMisuse
	// SizeLimit covers batch size, info length, and seed length bounds.
	SizeLimit
	// DeriveKeyPairFailure covers DeriveKeyPair exhausting its counter.
	DeriveKeyPairFailure
	// ProofVerificationFailure covers a DLEQ proof that failed to verify.
	// Verification itself never returns this as an error value — it is
	// reserved for call sites that must fail hard on a bad proof.
	ProofVerificationFailure
	// UnknownKeyVersion covers key manager lookups for an absent version.
	UnknownKeyVersion
)

func (k Kind) String() string {
	switch k {
	case InvalidPoint:
		return "invalid-point"
	case InvalidScalar:
		return "invalid-scalar"
	case ModeMisuse:
		return "mode-misuse"
	case SizeLimit:
		return "size-limit"
	case DeriveKeyPairFailure:
		return "derive-key-pair-failure"
	case ProofVerificationFailure:
		return "proof-verification-failure"
	case UnknownKeyVersion:
		return "unknown-key-version"
	default:
		return "unknown-error-kind"
	}
}

// Error is the engine's single domain error type. Reason must never
// contain secret scalar or private-key bytes.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oprf: %s: %s", e.Kind, e.Reason)
}

// New constructs an *Error for the given kind and reason.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Is supports errors.Is comparisons against a bare Kind sentinel created
// via New(kind, "") so callers can do errors.Is(err, oprferr.New(oprferr.InvalidPoint, "")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
