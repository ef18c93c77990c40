// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package lockstitch provides an incremental, stateful framework for
// symmetric-key cryptographic operations (hashing, message authentication,
// key derivation, and authenticated encryption) in complex protocols.
//
// A Protocol is a SHA-256 transcript of every input it has seen. Each
// operation appends its input, a length suffix, and a one-byte operation
// code to the transcript; operations that produce output first chain the
// transcript into a fresh AEGIS-128L instance whose key depends on every
// prior operation. Higher-level constructions (MACs, KDFs, AEADs, channel
// protocols) fall out of calling the small operation set in sequence.
//
// A Protocol value is owned by a single goroutine; distinct values are
// independent and may be used concurrently.
package lockstitch

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"hash"

	"github.com/sixafter/lockstitch/x/crypto/aegis"
)

// TagLen is the number of bytes Seal appends to a plaintext and Open strips
// from a ciphertext.
const TagLen = aegis.TagLen

var (
	// ErrInvalidCiphertext is returned by Open when the ciphertext is
	// inauthentic or was sealed by a protocol in a different state.
	ErrInvalidCiphertext = errors.New("lockstitch: invalid ciphertext")

	// ErrHedgeExhausted is returned by Hedge when no attempt produced an
	// acceptable value.
	ErrHedgeExhausted = errors.New("lockstitch: exceeded maximum hedge attempts")
)

// operation is a primitive protocol step with a unique one-byte code.
type operation byte

const (
	opInit      operation = 0x01
	opMix       operation = 0x02
	opDerive    operation = 0x03
	opCrypt     operation = 0x04
	opAuthCrypt operation = 0x05
	opRatchet   operation = 0x06
	opChain     operation = 0x07
)

// A Protocol is a stateful object providing fine-grained symmetric-key
// cryptographic services like hashing, message authentication codes,
// pseudo-random functions, and authenticated encryption.
type Protocol struct {
	state hash.Hash
}

// NewProtocol creates a new Protocol with the given domain separation
// string.
func NewProtocol(domain string) *Protocol {
	p := &Protocol{state: sha256.New()}
	p.process([]byte(domain), opInit)
	return p
}

// Mix absorbs data into the protocol's transcript. Neither the data nor its
// length need be known in advance of the call; see MixStream for absorbing
// from a reader.
func (p *Protocol) Mix(data []byte) {
	p.process(data, opMix)
}

// Derive fills out with pseudo-random output bound to the protocol's entire
// transcript, then records the output length in the transcript.
func (p *Protocol) Derive(out []byte) {
	output := p.chain(opDerive)
	output.PRF(out)

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(out)))
	p.process(n[:], opDerive)
}

// DeriveBytes returns n bytes of Derive output in a fresh slice.
func (p *Protocol) DeriveBytes(n int) []byte {
	out := make([]byte, n)
	p.Derive(out)
	return out
}

// Encrypt encrypts inOut in place. The ciphertext carries no tag; use Seal
// for authenticated encryption. The transcript absorbs a tag derived from
// the ciphertext, so subsequent operations remain bound to it.
func (p *Protocol) Encrypt(inOut []byte) {
	output := p.chain(opCrypt)
	output.Encrypt(inOut)
	_, long := output.Finalize()
	p.process(long[:], opCrypt)
}

// Decrypt decrypts inOut in place, reversing Encrypt.
func (p *Protocol) Decrypt(inOut []byte) {
	output := p.chain(opCrypt)
	output.Decrypt(inOut)
	_, long := output.Finalize()
	p.process(long[:], opCrypt)
}

// Seal encrypts inOut in place, overwriting its final TagLen bytes with an
// authentication tag. It panics if inOut is shorter than TagLen.
func (p *Protocol) Seal(inOut []byte) {
	if len(inOut) < TagLen {
		panic("lockstitch: seal buffer shorter than TagLen")
	}
	body, tagOut := inOut[:len(inOut)-TagLen], inOut[len(inOut)-TagLen:]

	output := p.chain(opAuthCrypt)
	output.Encrypt(body)
	short, long := output.Finalize()
	copy(tagOut, short[:])
	p.process(long[:], opAuthCrypt)
}

// Open decrypts inOut in place, verifying its final TagLen bytes as an
// authentication tag. On success it returns the plaintext slice of inOut;
// on failure it zeroes the decrypted bytes and returns
// ErrInvalidCiphertext. The transcript is mutated identically either way,
// so both ends of a channel stay in lockstep even across a rejected
// message. It panics if inOut is shorter than TagLen.
func (p *Protocol) Open(inOut []byte) ([]byte, error) {
	if len(inOut) < TagLen {
		panic("lockstitch: open buffer shorter than TagLen")
	}
	body, tag := inOut[:len(inOut)-TagLen], inOut[len(inOut)-TagLen:]

	output := p.chain(opAuthCrypt)
	output.Decrypt(body)
	short, long := output.Finalize()
	p.process(long[:], opAuthCrypt)

	if subtle.ConstantTimeCompare(tag, short[:]) != 1 {
		clear(body)
		return nil, ErrInvalidCiphertext
	}
	return body, nil
}

// Ratchet irreversibly replaces the transcript with a one-way function of
// itself, so a later compromise of the protocol's state cannot recover
// key material derived before the call.
func (p *Protocol) Ratchet() {
	_ = p.chain(opRatchet)
	p.endOp(opRatchet, 0)
}

// Clone returns an independent copy of the protocol in its current state.
func (p *Protocol) Clone() *Protocol {
	// The transcript is always a stdlib SHA-256, which implements
	// hash.Cloner and never fails to clone.
	d, err := p.state.(hash.Cloner).Clone()
	if err != nil {
		panic("lockstitch: transcript hash failed to clone: " + err.Error())
	}
	return &Protocol{state: d}
}

// chain finalizes and resets the transcript, re-seeds it with a chain key,
// and returns an AEGIS-128L instance keyed for the given operation. Every
// output-producing operation funnels through here.
func (p *Protocol) chain(op operation) *aegis.State {
	// Finalize the transcript and reset it to the initial SHA-256 state.
	var digest [sha256.Size]byte
	p.state.Sum(digest[:0])
	p.state.Reset()

	// Key a PRF instance from the digest halves and draw 64 bytes: a 32-byte
	// chain key, a 16-byte output key, and a 16-byte output nonce.
	prf := aegis.New(digest[:16], digest[16:])
	var prfOut [64]byte
	prf.PRF(prfOut[:])

	// Seed the fresh transcript with the chain key, binding it to every
	// operation before the reset.
	p.process(prfOut[:32], opChain)

	// The first nonce byte carries the operation code, separating the output
	// domains of otherwise identical transcripts.
	prfOut[48] = byte(op)
	output := aegis.New(prfOut[32:48], prfOut[48:])

	clear(digest[:])
	clear(prfOut[:])
	return output
}

// process absorbs one complete input for an operation.
func (p *Protocol) process(input []byte, op operation) {
	p.state.Write(input)
	p.endOp(op, uint64(len(input)))
}

// endOp closes an operation by absorbing right_encode(n) (NIST SP 800-185)
// and the operation code.
func (p *Protocol) endOp(op operation, n uint64) {
	var buf [10]byte
	binary.BigEndian.PutUint64(buf[:8], n)

	offset := 7
	for i, b := range buf[:8] {
		if b != 0 {
			offset = i
			break
		}
	}
	buf[8] = byte(8 - offset)
	buf[9] = byte(op)

	p.state.Write(buf[offset:])
}
