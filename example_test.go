// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/maruel/viewcopy"
)

func ExampleViewCopy() {
	input, err := viewcopy.NewTensor(viewcopy.U8, []uint64{4}, []byte{0x01, 0x02, 0x03, 0x04})
	if err != nil {
		log.Fatal(err)
	}
	out, err := viewcopy.NewTensor(viewcopy.U8, []uint64{2, 2}, make([]byte, 4))
	if err != nil {
		log.Fatal(err)
	}
	if _, err = viewcopy.ViewCopy(input, out.Shape, out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("shape = %v\n", out.Shape)
	fmt.Printf("data = %#v\n", out.Data)

	// Output:
	// shape = [2 2]
	// data = []byte{0x1, 0x2, 0x3, 0x4}
}

func ExampleRegistry_Call() {
	floatData := []float32{0, 1, 2, 3, 4, 5}
	data := make([]byte, 0, len(floatData)*4)
	for _, v := range floatData {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	input := &viewcopy.Tensor{DType: viewcopy.F32, Shape: []uint64{1, 2, 3}, Data: data}
	out := &viewcopy.Tensor{DType: viewcopy.F32, Shape: []uint64{3, 2}, Data: make([]byte, len(data))}
	if _, err := viewcopy.Default.Call(viewcopy.ViewCopyKernelName, input, []uint64{3, 2}, out); err != nil {
		log.Fatal(err)
	}
	s, err := viewcopy.FormatElements(out, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(s)

	_, err = viewcopy.Default.Call(viewcopy.ViewCopyKernelName, input, []uint64{2, 3}, out)
	fmt.Println(err)

	// Output:
	// [0 1 2 3 4 5]
	// aten::view_copy.out: size [2 3], out shape [3 2]: shape mismatch
}

func ExampleFile_Serialize() {
	f := viewcopy.File{
		Tensors: []viewcopy.NamedTensor{
			{Name: "foo", Tensor: viewcopy.Tensor{DType: viewcopy.I16, Shape: []uint64{2}, Data: []byte{1, 0, 2, 0}}},
		},
	}
	buf := bytes.Buffer{}
	if err := f.Serialize(&buf); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("data len = %d\n", buf.Len())
	fmt.Printf("data excerpt: ...%s...\n", buf.Bytes()[8:30])

	// Output:
	// data len = 68
	// data excerpt: ...{"foo":{"dtype":"I16",...
}
