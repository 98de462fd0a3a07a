// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, []string{ViewCopyKernelName}, Default.Names())
	input := &Tensor{DType: U8, Shape: []uint64{4}, Data: []byte{1, 2, 3, 4}}
	out := &Tensor{DType: U8, Shape: []uint64{2, 2}, Data: make([]byte, 4)}
	got, err := Default.Call(ViewCopyKernelName, input, []uint64{2, 2}, out)
	require.NoError(t, err)
	assert.Same(t, out, got)
	assert.Equal(t, []byte{1, 2, 3, 4}, out.Data)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.EqualError(t, r.Register("", ViewCopy), "kernel name is empty")
	require.EqualError(t, r.Register("foo", nil), `kernel "foo" is nil`)
	require.NoError(t, r.Register("b", ViewCopy))
	require.NoError(t, r.Register("a", ViewCopy))
	require.EqualError(t, r.Register("a", ViewCopy), `kernel "a" already registered`)
	assert.Equal(t, []string{"a", "b"}, r.Names())
	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("c")
	assert.False(t, ok)
}

func TestRegistry_Call_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("nope", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKernel))
	assert.EqualError(t, err, `"nope": unknown kernel`)
}

func TestRegistry_Call_Validation(t *testing.T) {
	called := false
	r := NewRegistry()
	require.NoError(t, r.Register("k", func(input *Tensor, size []uint64, out *Tensor) (*Tensor, error) {
		called = true
		return ViewCopy(input, size, out)
	}))
	input := &Tensor{DType: F32, Shape: []uint64{2, 3}, Data: make([]byte, 24)}
	data := []struct {
		name string
		size []uint64
		out  *Tensor
		want error
		err  string
	}{
		{"nil", nil, nil, ErrNilTensor, "k: nil tensor"},
		{
			"invalid out",
			[]uint64{6},
			&Tensor{DType: F32, Shape: []uint64{6}, Data: make([]byte, 20)},
			nil,
			"k: out: invalid tensor: dtype=F32 shape=[6] len(data)=20",
		},
		{
			"dtype",
			[]uint64{6},
			&Tensor{DType: I32, Shape: []uint64{6}, Data: make([]byte, 24)},
			ErrDTypeMismatch,
			"k: input is F32, out is I32: dtype mismatch",
		},
		{
			"size",
			[]uint64{3, 2},
			&Tensor{DType: F32, Shape: []uint64{6}, Data: make([]byte, 24)},
			ErrShapeMismatch,
			"k: size [3 2], out shape [6]: shape mismatch",
		},
		{
			"bytes",
			[]uint64{5},
			&Tensor{DType: F32, Shape: []uint64{5}, Data: make([]byte, 20)},
			ErrByteMismatch,
			"k: input has 24 bytes, out has 20: byte count mismatch",
		},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			_, err := r.Call("k", input, line.size, line.out)
			require.EqualError(t, err, line.err)
			if line.want != nil {
				assert.True(t, errors.Is(err, line.want), "%v", err)
			}
		})
	}
	assert.False(t, called, "kernel must not run on invalid arguments")

	out := &Tensor{DType: F32, Shape: []uint64{3, 2}, Data: make([]byte, 24)}
	got, err := r.Call("k", input, []uint64{3, 2}, out)
	require.NoError(t, err)
	assert.Same(t, out, got)
	assert.True(t, called)
}
