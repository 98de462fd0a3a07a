// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DType identifies the element type of a tensor.
//
// The names match the ones used in safetensors headers.
type DType string

const (
	// Boolean type
	BOOL DType = "BOOL"
	// Unsigned byte
	U8 DType = "U8"
	// Signed byte
	I8 DType = "I8"
	// FP8 <https://arxiv.org/pdf/2209.05433.pdf>
	F8_E5M2 DType = "F8_E5M2"
	// FP8 <https://arxiv.org/pdf/2209.05433.pdf>
	F8_E4M3 DType = "F8_E4M3"
	// Signed integer (16-bit)
	I16 DType = "I16"
	// Unsigned integer (16-bit)
	U16 DType = "U16"
	// Half-precision floating point
	F16 DType = "F16"
	// Brain floating point
	BF16 DType = "BF16"
	// Signed integer (32-bit)
	I32 DType = "I32"
	// Unsigned integer (32-bit)
	U32 DType = "U32"
	// Floating point (32-bit)
	F32 DType = "F32"
	// Floating point (64-bit)
	F64 DType = "F64"
	// Signed integer (64-bit)
	I64 DType = "I64"
	// Unsigned integer (64-bit)
	U64 DType = "U64"
)

// DTypeToWordSize is the number of bytes used by one element of each known
// DType.
var DTypeToWordSize = map[DType]uint64{
	BOOL:    1,
	U8:      1,
	I8:      1,
	F8_E5M2: 1,
	F8_E4M3: 1,
	I16:     2,
	U16:     2,
	F16:     2,
	BF16:    2,
	I32:     4,
	U32:     4,
	F32:     4,
	F64:     8,
	I64:     8,
	U64:     8,
}

// WordSize returns the size in bytes of one element of this data type.
//
// It returns 0 for an unknown DType.
func (dt DType) WordSize() uint64 {
	return DTypeToWordSize[dt]
}

// Validate returns an error if the DType is unknown.
func (dt DType) Validate() error {
	if DTypeToWordSize[dt] == 0 {
		return errors.Errorf("%q is not a valid DType", string(dt))
	}
	return nil
}

func (dt *DType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if err := DType(s).Validate(); err != nil {
		return err
	}
	*dt = DType(s)
	return nil
}
