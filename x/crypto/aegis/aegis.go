// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package aegis implements the AEGIS-128L authenticated stream cipher from
// draft-irtf-cfrg-aegis-aead.
//
// AEGIS-128L maintains eight 128-bit state blocks and uses a single AES
// encryption round as its only primitive. The package exposes the state
// machine directly (construct with New, absorb associated data, encrypt or
// decrypt in place, draw pseudo-random output, and finalize to a pair of
// 16-byte tags) as well as a one-shot crypto/cipher.AEAD adapter via NewAEAD.
//
// The AES round is computed with AES-NI on amd64 and the ARMv8 AES
// extensions on arm64 when the CPU supports them. A portable software round
// is used otherwise, or always when built with the `purego` tag. The
// hardware backends are constant-time; the software fallback uses an S-box
// table lookup and shares the cache-timing caveats of any table-based AES.
package aegis

import "encoding/binary"

const (
	// KeyLen is the length of an AEGIS-128L key in bytes.
	KeyLen = 16

	// NonceLen is the length of an AEGIS-128L nonce in bytes.
	NonceLen = 16

	// TagLen is the length of an AEGIS-128L authentication tag in bytes.
	TagLen = 16

	// rateLen is the number of bytes absorbed or produced per state update.
	rateLen = 32
)

// Initialization constants from the AEGIS specification, derived from the
// Fibonacci sequence.
var (
	c0 = [16]byte{
		0x00, 0x01, 0x01, 0x02, 0x03, 0x05, 0x08, 0x0d,
		0x15, 0x22, 0x37, 0x59, 0x90, 0xe9, 0x79, 0x62,
	}
	c1 = [16]byte{
		0xdb, 0x3d, 0x18, 0x55, 0x6d, 0xc2, 0x2f, 0xf1,
		0x20, 0x11, 0x31, 0x42, 0x73, 0xb5, 0x28, 0xdd,
	}
)

// State is an AEGIS-128L instance: eight AES blocks plus the running byte
// counts of associated data and message/ciphertext.
//
// A State must not be reused across (key, nonce) pairs, and a single State
// must not be used from multiple goroutines. Distinct instances are
// independent and safe to use concurrently.
type State struct {
	s     [8][16]byte
	adLen uint64
	mcLen uint64
}

// New returns an AEGIS-128L instance initialized from a 16-byte key and a
// 16-byte nonce. It panics if either length is wrong; key and nonce sizing
// is a caller invariant, not a runtime condition.
func New(key, nonce []byte) *State {
	if len(key) != KeyLen {
		panic("aegis: invalid key length")
	}
	if len(nonce) != NonceLen {
		panic("aegis: invalid nonce length")
	}

	var k, n [16]byte
	copy(k[:], key)
	copy(n[:], nonce)

	st := &State{}
	st.s[0] = xorBlock(k, n)
	st.s[1] = c1
	st.s[2] = c0
	st.s[3] = c1
	st.s[4] = xorBlock(k, n)
	st.s[5] = xorBlock(k, c0)
	st.s[6] = xorBlock(k, c1)
	st.s[7] = xorBlock(k, c0)

	for i := 0; i < 10; i++ {
		st.update(&n, &k)
	}

	return st
}

// Absorb authenticates ad without encrypting it. The trailing partial block,
// if any, is zero-padded before absorption; the length counter advances by
// the true byte count.
func (st *State) Absorb(ad []byte) {
	var src [rateLen]byte

	n := len(ad)
	for len(ad) >= rateLen {
		copy(src[:], ad)
		st.absorb(&src)
		ad = ad[rateLen:]
	}

	if len(ad) > 0 {
		clear(src[:])
		copy(src[:], ad)
		st.absorb(&src)
	}

	st.adLen += uint64(n)
}

// PRF fills out with keystream, treating the cipher as a pseudo-random
// function of the key and nonce.
func (st *State) PRF(out []byte) {
	var dst [rateLen]byte

	n := len(out)
	for len(out) >= rateLen {
		st.encZeroes(&dst)
		copy(out, dst[:])
		out = out[rateLen:]
	}

	if len(out) > 0 {
		st.encZeroes(&dst)
		copy(out, dst[:len(out)])
	}

	st.mcLen += uint64(n)
}

// Encrypt encrypts inOut in place. The trailing partial block is zero-padded
// for the state update; the length counter advances by the true byte count.
func (st *State) Encrypt(inOut []byte) {
	var src, dst [rateLen]byte

	n := len(inOut)
	for len(inOut) >= rateLen {
		copy(src[:], inOut)
		st.enc(&dst, &src)
		copy(inOut, dst[:])
		inOut = inOut[rateLen:]
	}

	if len(inOut) > 0 {
		clear(src[:])
		copy(src[:], inOut)
		st.enc(&dst, &src)
		copy(inOut, dst[:len(inOut)])
	}

	st.mcLen += uint64(n)
}

// Decrypt decrypts inOut in place. The trailing partial block goes through
// the padded-plaintext path: the padding bytes of the recovered plaintext
// are zeroed before the state update, so a forged trailing block cannot
// steer the state the way a valid message would.
func (st *State) Decrypt(inOut []byte) {
	var src, dst [rateLen]byte

	n := len(inOut)
	for len(inOut) >= rateLen {
		copy(src[:], inOut)
		st.dec(&dst, &src)
		copy(inOut, dst[:])
		inOut = inOut[rateLen:]
	}

	if len(inOut) > 0 {
		st.decPartial(&dst, inOut)
		copy(inOut, dst[:len(inOut)])
	}

	st.mcLen += uint64(n)
}

// Finalize folds the byte counts into the state and returns the short and
// long authentication tags. The long tag is the standard AEGIS-128L 128-bit
// tag (the XOR of state blocks 0 through 6); the short tag is the XOR of
// blocks 0 through 3. Finalize consumes the state: no further operations may
// follow it.
func (st *State) Finalize() (short, long [TagLen]byte) {
	var sizes [16]byte
	binary.LittleEndian.PutUint64(sizes[:8], st.adLen*8)
	binary.LittleEndian.PutUint64(sizes[8:], st.mcLen*8)

	t := xorBlock(sizes, st.s[2])
	for i := 0; i < 7; i++ {
		st.update(&t, &t)
	}

	short = xorBlock(xorBlock(st.s[0], st.s[1]), xorBlock(st.s[2], st.s[3]))
	long = xorBlock(xorBlock(short, st.s[4]), xorBlock(st.s[5], st.s[6]))
	return short, long
}

// absorb folds one 32-byte chunk of associated data into the state.
func (st *State) absorb(xi *[rateLen]byte) {
	var m0, m1 [16]byte
	copy(m0[:], xi[:16])
	copy(m1[:], xi[16:])
	st.update(&m0, &m1)
}

// keystream computes the two 16-byte keystream halves for the current state.
func (st *State) keystream(z0, z1 *[16]byte) {
	*z0 = xorBlock(xorBlock(st.s[6], st.s[1]), andBlock(st.s[2], st.s[3]))
	*z1 = xorBlock(xorBlock(st.s[2], st.s[5]), andBlock(st.s[6], st.s[7]))
}

// encZeroes writes one 32-byte chunk of raw keystream and updates the state
// with zero blocks.
func (st *State) encZeroes(ci *[rateLen]byte) {
	var z0, z1, zero [16]byte
	st.keystream(&z0, &z1)
	copy(ci[:16], z0[:])
	copy(ci[16:], z1[:])
	st.update(&zero, &zero)
}

// enc encrypts one full 32-byte chunk.
func (st *State) enc(ci, xi *[rateLen]byte) {
	var z0, z1, t0, t1 [16]byte
	st.keystream(&z0, &z1)
	copy(t0[:], xi[:16])
	copy(t1[:], xi[16:])
	out0 := xorBlock(t0, z0)
	out1 := xorBlock(t1, z1)
	copy(ci[:16], out0[:])
	copy(ci[16:], out1[:])
	st.update(&t0, &t1)
}

// dec decrypts one full 32-byte chunk.
func (st *State) dec(xi, ci *[rateLen]byte) {
	var z0, z1, t0, t1 [16]byte
	st.keystream(&z0, &z1)
	copy(t0[:], ci[:16])
	copy(t1[:], ci[16:])
	out0 := xorBlock(z0, t0)
	out1 := xorBlock(z1, t1)
	copy(xi[:16], out0[:])
	copy(xi[16:], out1[:])
	st.update(&out0, &out1)
}

// decPartial decrypts a trailing chunk shorter than 32 bytes. The recovered
// plaintext is written to xi with its padding zeroed, and the zero-padded
// plaintext is what updates the state.
func (st *State) decPartial(xi *[rateLen]byte, ci []byte) {
	var padded [rateLen]byte
	copy(padded[:], ci)

	var z0, z1, t0, t1 [16]byte
	st.keystream(&z0, &z1)
	copy(t0[:], padded[:16])
	copy(t1[:], padded[16:])
	out0 := xorBlock(t0, z0)
	out1 := xorBlock(t1, z1)
	copy(xi[:16], out0[:])
	copy(xi[16:], out1[:])
	clear(xi[len(ci):])

	var m0, m1 [16]byte
	copy(m0[:], xi[:16])
	copy(m1[:], xi[16:])
	st.update(&m0, &m1)
}

// update runs one AEGIS-128L round. All eight AES rounds read the previous
// state; the write order below preserves that, with the old S7 carried in t.
func (st *State) update(m0, m1 *[16]byte) {
	t := st.s[7]
	aesRound(&st.s[7], &st.s[6], &st.s[7])
	aesRound(&st.s[6], &st.s[5], &st.s[6])
	aesRound(&st.s[5], &st.s[4], &st.s[5])
	aesRound(&st.s[4], &st.s[3], &st.s[4])
	xorInto(&st.s[4], m1)
	aesRound(&st.s[3], &st.s[2], &st.s[3])
	aesRound(&st.s[2], &st.s[1], &st.s[2])
	aesRound(&st.s[1], &st.s[0], &st.s[1])
	aesRound(&st.s[0], &t, &st.s[0])
	xorInto(&st.s[0], m0)
}

// xorBlock returns a ^ b.
func xorBlock(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// andBlock returns a & b.
func andBlock(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] & b[i]
	}
	return out
}

// xorInto folds m into dst in place.
func xorInto(dst, m *[16]byte) {
	for i := range dst {
		dst[i] ^= m[i]
	}
}
