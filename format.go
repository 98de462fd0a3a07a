// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// FormatElements decodes the elements of t for display, e.g. "[1 2 3]".
//
// At most max elements are printed, followed by "..." when truncated. A max
// of 0 or less prints every element. FP8 elements are printed as hex bytes.
func FormatElements(t *Tensor, max int) (string, error) {
	w := int(t.DType.WordSize())
	if w == 0 {
		return "", t.DType.Validate()
	}
	if len(t.Data)%w != 0 {
		return "", errors.Errorf("%d bytes is not a multiple of %s word size %d", len(t.Data), t.DType, w)
	}
	n := len(t.Data) / w
	shown := n
	if max > 0 && max < n {
		shown = max
	}
	var f32 []float32
	if t.DType == BF16 {
		f32 = bfloat16.DecodeFloat32(t.Data[:shown*w])
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < shown; i++ {
		if i != 0 {
			sb.WriteByte(' ')
		}
		b := t.Data[i*w : (i+1)*w]
		switch t.DType {
		case BOOL:
			sb.WriteString(strconv.FormatBool(b[0] != 0))
		case U8:
			sb.WriteString(strconv.FormatUint(uint64(b[0]), 10))
		case I8:
			sb.WriteString(strconv.FormatInt(int64(int8(b[0])), 10))
		case F8_E5M2, F8_E4M3:
			sb.WriteString("0x")
			sb.WriteString(strconv.FormatUint(uint64(b[0]), 16))
		case I16:
			sb.WriteString(strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10))
		case U16:
			sb.WriteString(strconv.FormatUint(uint64(binary.LittleEndian.Uint16(b)), 10))
		case F16:
			v := float16.Frombits(binary.LittleEndian.Uint16(b)).Float32()
			sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		case BF16:
			sb.WriteString(strconv.FormatFloat(float64(f32[i]), 'g', -1, 32))
		case I32:
			sb.WriteString(strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10))
		case U32:
			sb.WriteString(strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b)), 10))
		case F32:
			v := math.Float32frombits(binary.LittleEndian.Uint32(b))
			sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		case F64:
			v := math.Float64frombits(binary.LittleEndian.Uint64(b))
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case I64:
			sb.WriteString(strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10))
		case U64:
			sb.WriteString(strconv.FormatUint(binary.LittleEndian.Uint64(b), 10))
		}
	}
	if shown < n {
		sb.WriteString(" ...")
	}
	sb.WriteByte(']')
	return sb.String(), nil
}
