// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package viewcopy

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"
)

const maxHeaderSize = 100_000_000

const metadataKey = "__metadata__"

// File is a set of tensors stored in the safetensors format.
//
// It is the storage layer view copies read from and write to.
type File struct {
	Tensors  []NamedTensor
	Metadata map[string]string
}

// Tensor returns the tensor named name, or nil.
func (f *File) Tensor(name string) *Tensor {
	// Linear search. Files hold at most a few hundred tensors.
	for i := range f.Tensors {
		if f.Tensors[i].Name == name {
			return &f.Tensors[i].Tensor
		}
	}
	return nil
}

// Parse parses a whole safetensors file.
//
// The tensors' Data alias b; nothing is copied.
func Parse(b []byte) (*File, error) {
	size := uint64(len(b))
	if size < 8 {
		return nil, errors.Errorf("invalid header: too small (%d bytes)", size)
	}
	n := binary.LittleEndian.Uint64(b)
	if n > maxHeaderSize {
		return nil, errors.Errorf("invalid header: too large max %d, actual %d", maxHeaderSize, n)
	}
	stop := n + 8
	if stop > size {
		return nil, errors.Errorf("invalid header: invalid length %d", stop)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b[8:stop], &raw); err != nil {
		return nil, errors.Wrap(err, "invalid header")
	}
	f := &File{}
	infos := make([]namedInfo, 0, len(raw))
	for k, v := range raw {
		if k == metadataKey {
			if err := json.Unmarshal(v, &f.Metadata); err != nil {
				return nil, errors.Wrapf(err, "invalid header: %s", metadataKey)
			}
			continue
		}
		info, err := decodeInfo(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid header: tensor %q", k)
		}
		infos = append(infos, namedInfo{name: k, info: info})
	}

	// Sort by offsets. Writers are not required to order the header.
	sort.Slice(infos, func(i, j int) bool {
		a := infos[i].info.DataOffsets
		b := infos[j].info.DataOffsets
		if a != b {
			return a[0] < b[0] || (a[0] == b[0] && a[1] < b[1])
		}
		return infos[i].name < infos[j].name
	})
	end, err := validateInfos(infos)
	if err != nil {
		return nil, errors.Wrap(err, "invalid metadata")
	}
	if end != size-stop {
		return nil, errors.Errorf("metadata incomplete buffer: %d != %d", end+stop, size)
	}

	data := b[stop:]
	f.Tensors = make([]NamedTensor, len(infos))
	for i, v := range infos {
		f.Tensors[i] = NamedTensor{
			Name: v.name,
			Tensor: Tensor{
				DType: v.info.DType,
				Shape: v.info.Shape,
				Data:  data[v.info.DataOffsets[0]:v.info.DataOffsets[1]:v.info.DataOffsets[1]],
			},
		}
	}
	return f, nil
}

// Serialize writes the file in safetensors format.
//
// Tensors are stored by descending word size then by name so every tensor
// stays aligned to its word size.
func (f *File) Serialize(w io.Writer) error {
	tensors := make([]*NamedTensor, len(f.Tensors))
	for i := range f.Tensors {
		t := &f.Tensors[i]
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "tensor %q", t.Name)
		}
		tensors[i] = t
	}
	sort.SliceStable(tensors, func(i, j int) bool {
		l, r := tensors[i], tensors[j]
		lw, rw := l.DType.WordSize(), r.DType.WordSize()
		return lw > rw || (lw == rw && l.Name < r.Name)
	})

	obj := make(map[string]any, len(tensors)+1)
	if len(f.Metadata) != 0 {
		obj[metadataKey] = f.Metadata
	}
	offset := uint64(0)
	for _, t := range tensors {
		if _, ok := obj[t.Name]; ok {
			return errors.Errorf("duplicate tensor %q", t.Name)
		}
		shape := t.Shape
		if shape == nil {
			shape = []uint64{}
		}
		end := offset + uint64(len(t.Data))
		obj[t.Name] = &tensorInfo{DType: t.DType, Shape: shape, DataOffsets: [2]uint64{offset, end}}
		offset = end
	}
	header, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, "failed to JSON-marshal metadata")
	}
	// Force alignment to 8 bytes.
	if extra := (8 - len(header)%8) % 8; extra > 0 {
		header = append(header, bytes.Repeat([]byte{' '}, extra)...)
	}

	var nbArr [8]byte
	binary.LittleEndian.PutUint64(nbArr[:], uint64(len(header)))
	if _, err = w.Write(nbArr[:]); err != nil {
		return err
	}
	if _, err = w.Write(header); err != nil {
		return err
	}
	for _, t := range tensors {
		if _, err = w.Write(t.Data); err != nil {
			return err
		}
	}
	return nil
}

//

// tensorInfo is the header entry of a single tensor.
type tensorInfo struct {
	DType       DType     `json:"dtype"`
	Shape       []uint64  `json:"shape"`
	DataOffsets [2]uint64 `json:"data_offsets"`
}

type namedInfo struct {
	name string
	info tensorInfo
}

func decodeInfo(raw json.RawMessage) (tensorInfo, error) {
	var info tensorInfo
	d := json.NewDecoder(bytes.NewReader(raw))
	d.DisallowUnknownFields()
	if err := d.Decode(&info); err != nil {
		return info, err
	}
	if info.DType == "" {
		return info, errors.New(`missing "dtype"`)
	}
	if info.Shape == nil {
		return info, errors.New(`missing "shape"`)
	}
	return info, nil
}

// validateInfos checks that the tensors are contiguous and sized according to
// their dtype and shape.
//
// It returns the end offset of the last tensor, which must be the end of the
// data buffer.
func validateInfos(infos []namedInfo) (uint64, error) {
	start := uint64(0)
	for i, v := range infos {
		s, e := v.info.DataOffsets[0], v.info.DataOffsets[1]
		if s != start || e < s {
			return 0, errors.Errorf("tensor %q #%d: invalid offset", v.name, i)
		}
		start = e
		n, err := byteSize(v.info.DType, v.info.Shape)
		if err != nil {
			return 0, errors.Wrapf(err, "tensor %q #%d", v.name, i)
		}
		if e-s != n {
			return 0, errors.Errorf("tensor %q #%d: info data offsets mismatch", v.name, i)
		}
	}
	return start, nil
}
