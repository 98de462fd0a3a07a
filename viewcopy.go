// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"github.com/pkg/errors"
)

var (
	// ErrNilTensor is returned when a tensor argument is nil.
	ErrNilTensor = errors.New("nil tensor")
	// ErrByteMismatch is returned when the input and output buffers do not
	// hold the same number of bytes.
	ErrByteMismatch = errors.New("byte count mismatch")
)

// ViewCopyOut copies the bytes of input into out and returns out.
//
// out is the reshaped view of input: size is its intended shape and is not
// consulted, the copy is driven by input's byte count only. The caller must
// guarantee that out.Data holds at least input.NBytes() bytes; otherwise the
// call panics with an out of range slice access before anything is written.
//
// input is never modified and nothing is allocated. Calls on disjoint
// (input, out) pairs may run concurrently.
func ViewCopyOut(input *Tensor, size []uint64, out *Tensor) *Tensor {
	copy(out.Data[:len(input.Data):len(out.Data)], input.Data)
	return out
}

// ViewCopy is the checked form of ViewCopyOut.
//
// It returns an error wrapping ErrNilTensor or ErrByteMismatch instead of
// faulting, and leaves out untouched in that case.
func ViewCopy(input *Tensor, size []uint64, out *Tensor) (*Tensor, error) {
	if input == nil || out == nil {
		return nil, errors.Wrap(ErrNilTensor, "view_copy")
	}
	if in, o := input.NBytes(), out.NBytes(); in != o {
		return nil, errors.Wrapf(ErrByteMismatch, "view_copy: input has %d bytes, out has %d", in, o)
	}
	return ViewCopyOut(input, size, out), nil
}
