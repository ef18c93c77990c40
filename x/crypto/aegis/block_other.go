// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

//go:build (!amd64 && !arm64) || purego

package aegis

func aesRound(dst, state, rk *[16]byte) {
	aesRoundGeneric(dst, state, rk)
}
