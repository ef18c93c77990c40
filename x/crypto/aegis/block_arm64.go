// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

//go:build arm64 && !purego

package aegis

import "golang.org/x/sys/cpu"

var haveAES = cpu.ARM64.HasAES

// aesRoundAsm is implemented in block_arm64.s using AESE/AESMC with a zero
// round key, then folding rk in with an EOR; the ARMv8 instructions add the
// round key before SubBytes, so the zero key defers it to the explicit XOR.
//
//go:noescape
func aesRoundAsm(dst, state, rk *[16]byte)

func aesRound(dst, state, rk *[16]byte) {
	if haveAES {
		aesRoundAsm(dst, state, rk)
		return
	}
	aesRoundGeneric(dst, state, rk)
}
