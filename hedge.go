// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package lockstitch

import (
	"io"

	prng "github.com/sixafter/prng-chacha"
)

// DefaultMaxHedgeAttempts is the number of derivation attempts Hedge makes
// before giving up.
const DefaultMaxHedgeAttempts = 10_000

// HedgeOption configures a Hedge call. It is used with the functional
// options pattern.
type HedgeOption func(*hedgeConfig)

type hedgeConfig struct {
	rand        io.Reader
	maxAttempts int
}

// WithHedgeRand sets the random source for Hedge. By default Hedge reads
// from the package-level ChaCha20 PRNG, which is cryptographically secure
// and safe for concurrent use.
func WithHedgeRand(r io.Reader) HedgeOption {
	return func(c *hedgeConfig) {
		c.rand = r
	}
}

// WithMaxAttempts sets the attempt budget for Hedge.
func WithMaxAttempts(n int) HedgeOption {
	return func(c *hedgeConfig) {
		c.maxAttempts = n
	}
}

// Hedge clones the protocol, mixes each secret plus 64 fresh random bytes
// into the clone, and passes the clone to f. If f accepts the clone's state
// by returning ok, Hedge returns f's value; otherwise it repeats with new
// randomness, up to the attempt budget.
//
// Hedging yields randomized constructions (for example, nonces or signature
// randomizers) that degrade to deterministic-but-safe output if the random
// source turns out to be weak: the derived values still depend on the
// protocol transcript and the mixed secrets.
//
// The receiver protocol is never mutated; f owns each clone it is given.
func Hedge[R any](p *Protocol, secrets [][]byte, f func(*Protocol) (R, bool), opts ...HedgeOption) (R, error) {
	cfg := hedgeConfig{
		rand:        prng.Reader,
		maxAttempts: DefaultMaxHedgeAttempts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero R
	var r [64]byte
	for i := 0; i < cfg.maxAttempts; i++ {
		clone := p.Clone()
		for _, s := range secrets {
			clone.Mix(s)
		}

		if _, err := io.ReadFull(cfg.rand, r[:]); err != nil {
			return zero, err
		}
		clone.Mix(r[:])

		if v, ok := f(clone); ok {
			return v, nil
		}
	}

	return zero, ErrHedgeExhausted
}
