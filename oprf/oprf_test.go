package oprf

import (
	"bytes"
	"testing"

	"github.com/wurp/go-oprf/keypair"
	"github.com/wurp/go-oprf/oprfclient"
)

func newServer(t *testing.T, mode Mode) (*Server, *keypair.KeyPair) {
	t.Helper()
	kp, err := keypair.Random()
	if err != nil {
		t.Fatalf("keypair.Random: %v", err)
	}
	return NewServer(mode, kp), kp
}

func roundTrip(t *testing.T, mode Mode, info []byte, input []byte) []byte {
	t.Helper()
	server, _ := newServer(t, mode)

	clientMode := oprfclient.Mode(mode)
	state, alpha, err := oprfclient.Blind(clientMode, input)
	if err != nil {
		t.Fatalf("Blind: %v", err)
	}

	var resp *Response
	if mode == Partial {
		resp, err = server.EvaluateWithInfo(alpha, info)
	} else {
		resp, err = server.Evaluate(alpha)
	}
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	output, err := oprfclient.Finalize(clientMode, state, alpha, resp.Evaluated, resp.Proof, resp.PublicKey, info)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return output
}

func TestBaseRoundTrip(t *testing.T) {
	out := roundTrip(t, Base, nil, []byte("hunter2"))
	if len(out) != 32 {
		t.Fatalf("expected a 32-byte output, got %d", len(out))
	}
}

func TestBaseDistinctServersProduceDistinctOutputs(t *testing.T) {
	out1 := roundTrip(t, Base, nil, []byte("same-input"))
	out2 := roundTrip(t, Base, nil, []byte("same-input"))
	if bytes.Equal(out1, out2) {
		t.Fatalf("two independent servers produced the same output for the same input")
	}
}

func TestVerifiableProofAlwaysVerifies(t *testing.T) {
	server, _ := newServer(t, Verifiable)
	state, alpha, err := oprfclient.Blind(oprfclient.Verifiable, []byte("input"))
	if err != nil {
		t.Fatalf("Blind: %v", err)
	}
	resp, err := server.Evaluate(alpha)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if resp.Proof == nil {
		t.Fatalf("expected a DLEQ proof in VERIFIABLE mode")
	}
	if _, err := oprfclient.Finalize(oprfclient.Verifiable, state, alpha, resp.Evaluated, resp.Proof, resp.PublicKey, nil); err != nil {
		t.Fatalf("Finalize rejected an honest VOPRF proof: %v", err)
	}
}

func TestVerifiableTamperedProofRejected(t *testing.T) {
	server, _ := newServer(t, Verifiable)
	state, alpha, err := oprfclient.Blind(oprfclient.Verifiable, []byte("input"))
	if err != nil {
		t.Fatalf("Blind: %v", err)
	}
	resp, err := server.Evaluate(alpha)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	tamperedProof := append([]byte{}, resp.Proof...)
	tamperedProof[0] ^= 0xFF
	if _, err := oprfclient.Finalize(oprfclient.Verifiable, state, alpha, resp.Evaluated, tamperedProof, resp.PublicKey, nil); err == nil {
		t.Fatalf("expected Finalize to reject a tampered proof")
	}
}

func TestPartialRequiresInfo(t *testing.T) {
	server, _ := newServer(t, Partial)
	_, err := server.Evaluate([]byte{0x02})
	if err == nil {
		t.Fatalf("expected an error calling Evaluate (no info) in PARTIAL mode")
	}
}

func TestBaseRejectsInfo(t *testing.T) {
	server, _ := newServer(t, Base)
	_, err := server.EvaluateWithInfo([]byte{0x02}, []byte("info"))
	if err == nil {
		t.Fatalf("expected an error calling EvaluateWithInfo in BASE mode")
	}
}

func TestPartialDifferentInfoChangesOutput(t *testing.T) {
	kp, err := keypair.Random()
	if err != nil {
		t.Fatalf("keypair.Random: %v", err)
	}
	server := NewServer(Partial, kp)
	input := []byte("fixed-input")

	eval := func(info []byte) []byte {
		state, alpha, err := oprfclient.Blind(oprfclient.Partial, input)
		if err != nil {
			t.Fatalf("Blind: %v", err)
		}
		resp, err := server.EvaluateWithInfo(alpha, info)
		if err != nil {
			t.Fatalf("EvaluateWithInfo: %v", err)
		}
		out, err := oprfclient.Finalize(oprfclient.Partial, state, alpha, resp.Evaluated, resp.Proof, resp.PublicKey, info)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		return out
	}

	a := eval([]byte("context-a"))
	b := eval([]byte("context-b"))
	if bytes.Equal(a, b) {
		t.Fatalf("changing info did not change the POPRF output")
	}
}

func TestPartialExposedPublicKeyIsTweaked(t *testing.T) {
	server, _ := newServer(t, Partial)
	state, alpha, err := oprfclient.Blind(oprfclient.Partial, []byte("input"))
	if err != nil {
		t.Fatalf("Blind: %v", err)
	}
	resp, err := server.EvaluateWithInfo(alpha, []byte("info"))
	if err != nil {
		t.Fatalf("EvaluateWithInfo: %v", err)
	}
	if bytes.Equal(resp.PublicKey, server.PublicKey()) {
		t.Fatalf("PARTIAL mode exposed the untweaked server public key")
	}
	if _, err := oprfclient.Finalize(oprfclient.Partial, state, alpha, resp.Evaluated, resp.Proof, resp.PublicKey, []byte("info")); err != nil {
		t.Fatalf("Finalize rejected an honest POPRF proof: %v", err)
	}
}

func TestEvaluateBatchSharesOneProof(t *testing.T) {
	server, _ := newServer(t, Verifiable)
	alphas := make([][]byte, 3)
	for i := range alphas {
		_, alpha, err := oprfclient.Blind(oprfclient.Verifiable, []byte{byte(i)})
		if err != nil {
			t.Fatalf("Blind: %v", err)
		}
		alphas[i] = alpha
	}
	responses, err := server.EvaluateBatch(alphas)
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i := 1; i < len(responses); i++ {
		if !bytes.Equal(responses[0].Proof, responses[i].Proof) {
			t.Fatalf("batch responses did not share the same proof")
		}
	}
}

func TestEvaluateBatchRejectsEmpty(t *testing.T) {
	server, _ := newServer(t, Base)
	if _, err := server.EvaluateBatch(nil); err == nil {
		t.Fatalf("expected an error for an empty batch")
	}
}

func TestEvaluateRejectsIdentityBlindedInput(t *testing.T) {
	server, _ := newServer(t, Base)
	identity := make([]byte, 33)
	identity[0] = 0x02
	if _, err := server.Evaluate(identity); err == nil {
		t.Fatalf("expected an error evaluating the identity element")
	}
}

func TestExportPrivateKeyMatchesKeyPair(t *testing.T) {
	server, kp := newServer(t, Base)
	if !bytes.Equal(server.ExportPrivateKey(), kp.PrivateKeyBytes()) {
		t.Fatalf("exported private key did not match the underlying key pair")
	}
}
