// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

//go:build amd64 && !purego

package aegis

import "golang.org/x/sys/cpu"

var haveAES = cpu.X86.HasAES && cpu.X86.HasSSE2

// aesRoundAsm is implemented in block_amd64.s using AESENC.
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
