// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ViewCopyKernelName is the name ViewCopy is registered under in Default.
const ViewCopyKernelName = "aten::view_copy.out"

var (
	// ErrUnknownKernel is returned by Registry.Call for an unregistered name.
	ErrUnknownKernel = errors.New("unknown kernel")
	// ErrShapeMismatch is returned when size does not match the output shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDTypeMismatch is returned when input and output dtypes differ.
	ErrDTypeMismatch = errors.New("dtype mismatch")
)

// OutKernel is an operator writing its result into a preallocated out tensor
// and returning it.
type OutKernel func(input *Tensor, size []uint64, out *Tensor) (*Tensor, error)

// Registry maps operator names to kernels.
//
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]OutKernel
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kernels: map[string]OutKernel{}}
}

// Default is the process wide registry. It has ViewCopy registered as
// ViewCopyKernelName.
var Default = func() *Registry {
	r := NewRegistry()
	if err := r.Register(ViewCopyKernelName, ViewCopy); err != nil {
		panic(err)
	}
	return r
}()

// Register binds name to k. A name can only be registered once.
func (r *Registry) Register(name string, k OutKernel) error {
	if name == "" {
		return errors.New("kernel name is empty")
	}
	if k == nil {
		return errors.Errorf("kernel %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kernels[name]; ok {
		return errors.Errorf("kernel %q already registered", name)
	}
	r.kernels[name] = k
	return nil
}

// Lookup returns the kernel registered as name.
func (r *Registry) Lookup(name string) (OutKernel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kernels[name]
	return k, ok
}

// Names returns the registered kernel names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.kernels))
	for n := range r.kernels {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Call validates the arguments with ValidateView and runs the kernel
// registered as name.
func (r *Registry) Call(name string, input *Tensor, size []uint64, out *Tensor) (*Tensor, error) {
	k, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKernel, "%q", name)
	}
	if err := ValidateView(input, size, out); err != nil {
		return nil, errors.Wrap(err, name)
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s: %s%v -> %v (%d bytes)", name, input.DType, input.Shape, size, input.NBytes())
	}
	return k(input, size, out)
}

// ValidateView checks that out is a valid reshaped view of input with shape
// size.
//
// Both tensors must be internally consistent, share the same dtype and byte
// count, and size must equal out's declared shape.
func ValidateView(input *Tensor, size []uint64, out *Tensor) error {
	if input == nil || out == nil {
		return ErrNilTensor
	}
	if err := input.Validate(); err != nil {
		return errors.Wrap(err, "input")
	}
	if err := out.Validate(); err != nil {
		return errors.Wrap(err, "out")
	}
	if input.DType != out.DType {
		return errors.Wrapf(ErrDTypeMismatch, "input is %s, out is %s", input.DType, out.DType)
	}
	if !equalShape(size, out.Shape) {
		return errors.Wrapf(ErrShapeMismatch, "size %v, out shape %v", size, out.Shape)
	}
	if in, o := input.NBytes(), out.NBytes(); in != o {
		return errors.Wrapf(ErrByteMismatch, "input has %d bytes, out has %d", in, o)
	}
	return nil
}
