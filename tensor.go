// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"github.com/pkg/errors"
)

// Tensor is a view of a tensor's contiguous memory.
//
// Data is borrowed: it may point into a memory mapped file or into a buffer
// owned by the caller. Endianness is assumed to be little-endian. Ordering is
// assumed to be 'C'.
type Tensor struct {
	// The DType of each element of the tensor.
	DType DType
	// The Shape of the tensor. An empty shape is a scalar.
	Shape []uint64
	// Data is the raw backing buffer.
	Data []byte
}

// NamedTensor is a pair of a Tensor and its name (or label, or key).
type NamedTensor struct {
	Name string
	Tensor
}

// NewTensor creates a new Tensor, ensuring data is exactly as large as the
// dtype and shape require.
func NewTensor(dType DType, shape []uint64, data []byte) (*Tensor, error) {
	t := &Tensor{DType: dType, Shape: shape, Data: data}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NumElements returns the number of elements described by the shape.
func (t *Tensor) NumElements() (uint64, error) {
	return numElements(t.Shape)
}

// NBytes returns the size of the backing buffer in bytes.
func (t *Tensor) NBytes() int {
	return len(t.Data)
}

// Validate validates the object.
func (t *Tensor) Validate() error {
	if err := t.DType.Validate(); err != nil {
		return errors.Wrap(err, "invalid tensor")
	}
	want, err := byteSize(t.DType, t.Shape)
	if err != nil {
		return errors.Wrap(err, "invalid tensor")
	}
	if n := uint64(len(t.Data)); n != want {
		return errors.Errorf("invalid tensor: dtype=%s shape=%+v len(data)=%d", t.DType, t.Shape, n)
	}
	return nil
}

//

// numElements multiplies the dimensions of shape. A scalar has one element.
func numElements(shape []uint64) (uint64, error) {
	n := uint64(1)
	for _, v := range shape {
		var err error
		if n, err = checkedMul(n, v); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// byteSize returns the number of bytes needed to store shape elements of dType.
func byteSize(dType DType, shape []uint64) (uint64, error) {
	n, err := numElements(shape)
	if err != nil {
		return 0, errors.Wrap(err, "failed to compute num elements from shape")
	}
	b, err := checkedMul(n, dType.WordSize())
	if err != nil {
		return 0, errors.Wrap(err, "failed to compute num bytes from num elements")
	}
	return b, nil
}

// checkedMul multiplies a and b and checks for overflow.
func checkedMul(a, b uint64) (uint64, error) {
	c := a * b
	if a > 1 && b > 1 && c/a != b {
		return c, errors.Errorf("multiplication overflow: %d * %d", a, b)
	}
	return c, nil
}

func equalShape(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
