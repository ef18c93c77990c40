// Copyright (c) 2024 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package lockstitch

import "io"

// copyBufferLen is the chunk size for streaming reads.
const copyBufferLen = 64 * 1024

// MixStream absorbs the contents of r into the protocol's transcript and
// returns the number of bytes read. The resulting transcript is identical to
// a single Mix of the concatenated stream.
//
// If r fails mid-stream, the transcript has absorbed exactly the prefix
// counted by the returned byte count, and the Mix operation is left open;
// the protocol should not be used further.
func (p *Protocol) MixStream(r io.Reader) (int64, error) {
	return p.CopyStream(r, io.Discard)
}

// CopyStream absorbs the contents of r into the protocol's transcript while
// copying them to w. It returns the number of bytes absorbed and the first
// error encountered, if any. On a writer error the returned count still
// reflects every byte the transcript absorbed, including the chunk whose
// write failed.
func (p *Protocol) CopyStream(r io.Reader, w io.Writer) (int64, error) {
	buf := make([]byte, copyBufferLen)
	var n int64

	for {
		m, err := r.Read(buf)
		if m > 0 {
			block := buf[:m]
			p.state.Write(block)
			n += int64(m)
			if _, werr := w.Write(block); werr != nil {
				return n, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
	}

	p.endOp(opMix, uint64(n))
	return n, nil
}
