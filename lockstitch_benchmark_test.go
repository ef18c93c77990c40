// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package lockstitch

import (
	"fmt"
	"io"
	"testing"

	ctrdrbg "github.com/sixafter/aes-ctr-drbg"
	prng "github.com/sixafter/prng-chacha"
)

// sizeLabel renders a byte count as a benchmark sub-name.
func sizeLabel(n int) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%dMiB", n/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%dKiB", n/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

var benchSizes = []int{16, 256, 1024, 16 * 1024, 1024 * 1024}

func BenchmarkMix(b *testing.B) {
	for _, size := range benchSizes {
		size := size
		b.Run(sizeLabel(size), func(b *testing.B) {
			data := make([]byte, size)
			p := NewProtocol("com.example.bench")
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.Mix(data)
			}
		})
	}
}

func BenchmarkDerive(b *testing.B) {
	for _, size := range benchSizes {
		size := size
		b.Run(sizeLabel(size), func(b *testing.B) {
			out := make([]byte, size)
			p := NewProtocol("com.example.bench")
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.Derive(out)
			}
		})
	}
}

func BenchmarkEncrypt(b *testing.B) {
	for _, size := range benchSizes {
		size := size
		b.Run(sizeLabel(size), func(b *testing.B) {
			buf := make([]byte, size)
			p := NewProtocol("com.example.bench")
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.Encrypt(buf)
			}
		})
	}
}

func BenchmarkSeal(b *testing.B) {
	for _, size := range benchSizes {
		size := size
		b.Run(sizeLabel(size), func(b *testing.B) {
			buf := make([]byte, size+TagLen)
			p := NewProtocol("com.example.bench")
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.Seal(buf)
			}
		})
	}
}

func BenchmarkRatchet(b *testing.B) {
	p := NewProtocol("com.example.bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Ratchet()
	}
}

// BenchmarkHedge compares hedging cost across random sources: the default
// ChaCha20 PRNG and an AES-CTR-DRBG.
func BenchmarkHedge(b *testing.B) {
	sources := []struct {
		name string
		rand io.Reader
	}{
		{name: "prng-chacha", rand: prng.Reader},
		{name: "aes-ctr-drbg", rand: ctrdrbg.Reader},
	}

	accept := func(clone *Protocol) ([]byte, bool) {
		tag := clone.DeriveBytes(16)
		return tag, tag[0]&0x03 == 0
	}

	for _, src := range sources {
		src := src
		b.Run(src.name, func(b *testing.B) {
			p := NewProtocol("com.example.bench")
			p.Mix([]byte("seed"))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Hedge(p, nil, accept, WithHedgeRand(src.rand)); err != nil {
					b.Fatalf("Hedge returned an unexpected error: %v", err)
				}
			}
		})
	}
}
