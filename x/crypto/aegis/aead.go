// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package aegis

import (
	"crypto/cipher"
	"crypto/subtle"
	"errors"
)

// ErrAuthentication is returned by the AEAD Open when the ciphertext or
// associated data fails verification.
var ErrAuthentication = errors.New("aegis: message authentication failed")

// aead adapts one-shot AEGIS-128L sealing to the crypto/cipher.AEAD
// interface. Each call builds a fresh State from the stored key and the
// per-call nonce.
type aead struct {
	key [KeyLen]byte
}

var _ cipher.AEAD = (*aead)(nil)

// NewAEAD returns a crypto/cipher.AEAD using AEGIS-128L with the given
// 16-byte key. The nonce passed to Seal and Open must be NonceLen bytes and
// must never repeat for a given key.
func NewAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, errors.New("aegis: invalid key length")
	}
	a := &aead{}
	copy(a.key[:], key)
	return a, nil
}

func (a *aead) NonceSize() int { return NonceLen }

func (a *aead) Overhead() int { return TagLen }

func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != NonceLen {
		panic("aegis: invalid nonce length")
	}

	ret, out := sliceForAppend(dst, len(plaintext)+TagLen)
	ciphertext, tag := out[:len(plaintext)], out[len(plaintext):]
	copy(ciphertext, plaintext)

	st := New(a.key[:], nonce)
	st.Absorb(additionalData)
	st.Encrypt(ciphertext)
	_, long := st.Finalize()
	copy(tag, long[:])

	return ret
}

func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != NonceLen {
		panic("aegis: invalid nonce length")
	}
	if len(ciphertext) < TagLen {
		return nil, ErrAuthentication
	}

	body, tag := ciphertext[:len(ciphertext)-TagLen], ciphertext[len(ciphertext)-TagLen:]
	ret, plaintext := sliceForAppend(dst, len(body))
	copy(plaintext, body)

	st := New(a.key[:], nonce)
	st.Absorb(additionalData)
	st.Decrypt(plaintext)
	_, long := st.Finalize()

	if subtle.ConstantTimeCompare(tag, long[:]) != 1 {
		clear(plaintext)
		return nil, ErrAuthentication
	}

	return ret, nil
}

// sliceForAppend extends in by n bytes, reusing its capacity when possible,
// and returns the whole slice plus the appended tail.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return head, tail
}
