// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Mapped is a read-only memory mapped safetensors file.
//
// The tensors' Data point into the mapping: they are valid until Close and
// writing to them faults, which makes them safe inputs for ViewCopyOut.
type Mapped struct {
	*File
	f io.Closer
	m mmap.MMap
}

// Close releases the memory region and the file handle.
func (s *Mapped) Close() error {
	err := s.m.Unmap()
	if err2 := s.f.Close(); err == nil {
		err = err2
	}
	s.File = nil
	return err
}

// Open opens a file and memory maps it read-only.
func (s *Mapped) Open(name string) error {
	f, err := os.OpenFile(name, os.O_RDONLY, 0o600)
	if err != nil {
		return err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to map %q", name)
	}
	s.f = f
	s.m = m
	if s.File, err = Parse(m); err != nil {
		_ = s.Close()
		return errors.Wrapf(err, "failed to parse %q", name)
	}
	return nil
}
