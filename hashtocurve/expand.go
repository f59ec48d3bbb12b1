// Package hashtocurve implements RFC 9380's expand_message_xmd,
// hash_to_field, and the P256_XMD:SHA-256_SSWU_RO_ suite's map_to_curve
// step, together with hash_to_scalar — the machinery spec component 5
// sits on top of.
package hashtocurve

import (
	"crypto/sha256"
	"math/big"

	"github.com/wurp/go-oprf/oprferr"
)

const (
	bInBytes = 32 // SHA-256 output size
	sInBytes = 64 // SHA-256 input block size
)

// ExpandMessageXMD implements expand_message_xmd (RFC 9380 §5.3.1) using
// SHA-256, producing lenInBytes pseudorandom bytes from msg and dst.
func ExpandMessageXMD(msg, dst []byte, lenInBytes int) ([]byte, error) {
	if len(dst) > 255 {
		return nil, oprferr.New(oprferr.SizeLimit, "expand_message_xmd: DST exceeds 255 bytes")
	}

	ell := (lenInBytes + bInBytes - 1) / bInBytes
	if ell > 255 {
		return nil, oprferr.New(oprferr.SizeLimit, "expand_message_xmd: requested output too large")
	}

	// DST_prime = DST || I2OSP(len(DST), 1)
	dstPrime := make([]byte, len(dst)+1)
	copy(dstPrime, dst)
	dstPrime[len(dst)] = byte(len(dst))

	// Z_pad = I2OSP(0, s_in_bytes)
	zPad := make([]byte, sInBytes)

	// l_i_b_str = I2OSP(len_in_bytes, 2)
	libStr := []byte{byte(lenInBytes >> 8), byte(lenInBytes)}

	// msg_prime = Z_pad || msg || l_i_b_str || I2OSP(0, 1) || DST_prime
	h := sha256.New()
	h.Write(zPad)
	h.Write(msg)
	h.Write(libStr)
	h.Write([]byte{0})
	h.Write(dstPrime)
	b0 := h.Sum(nil)

	// b_1 = H(b_0 || I2OSP(1, 1) || DST_prime)
	h.Reset()
	h.Write(b0)
	h.Write([]byte{1})
	h.Write(dstPrime)
	b1 := h.Sum(nil)

	uniform := make([]byte, 0, ell*bInBytes)
	uniform = append(uniform, b1...)

	bPrev := b1
	for i := 2; i <= ell; i++ {
		xored := make([]byte, bInBytes)
		for j := 0; j < bInBytes; j++ {
			xored[j] = b0[j] ^ bPrev[j]
		}
		h.Reset()
		h.Write(xored)
		h.Write([]byte{byte(i)})
		h.Write(dstPrime)
		bi := h.Sum(nil)
		uniform = append(uniform, bi...)
		bPrev = bi
	}

	return uniform[:lenInBytes], nil
}

// hashToFieldBig expands msg to count*L bytes and reduces each L-byte
// chunk, as a big-endian integer, modulo modulus.
func hashToFieldBig(msg, dst []byte, count int, lengthPerElement int, modulus *big.Int) ([]*big.Int, error) {
	uniform, err := ExpandMessageXMD(msg, dst, count*lengthPerElement)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, count)
	for i := 0; i < count; i++ {
		chunk := uniform[i*lengthPerElement : (i+1)*lengthPerElement]
		v := new(big.Int).SetBytes(chunk)
		out[i] = v.Mod(v, modulus)
	}
	return out, nil
}
