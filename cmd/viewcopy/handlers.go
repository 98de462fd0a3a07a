// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/maruel/viewcopy"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

func ListHandler(cmd *cobra.Command, args []string) error {
	return list(cmd.OutOrStdout(), args[0])
}

func ShowHandler(cmd *cobra.Command, args []string) error {
	max, err := cmd.Flags().GetInt("max")
	if err != nil {
		return err
	}
	return show(cmd.OutOrStdout(), args[0], args[1], max)
}

func ReshapeHandler(cmd *cobra.Command, args []string) error {
	views, err := cmd.Flags().GetStringArray("view")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	return reshape(cmd.Context(), args[0], args[1], views, jobs)
}

func list(w io.Writer, name string) error {
	m := viewcopy.Mapped{}
	if err := m.Open(name); err != nil {
		return err
	}
	defer m.Close()

	var data [][]string
	total := uint64(0)
	for _, t := range m.Tensors {
		n := uint64(t.NBytes())
		total += n
		data = append(data, []string{t.Name, string(t.DType), formatShape(t.Shape), humanize.Bytes(n)})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "DTYPE", "SHAPE", "SIZE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	_, err := fmt.Fprintf(w, "%d tensors, %s\n", len(m.Tensors), humanize.Bytes(total))
	return err
}

func show(w io.Writer, name, tensor string, max int) error {
	m := viewcopy.Mapped{}
	if err := m.Open(name); err != nil {
		return err
	}
	defer m.Close()

	t := m.Tensor(tensor)
	if t == nil {
		return errors.Errorf("%s: no tensor %q", name, tensor)
	}
	s, err := viewcopy.FormatElements(t, max)
	if err != nil {
		return errors.Wrapf(err, "tensor %q", tensor)
	}
	_, err = fmt.Fprintf(w, "%s %s %s\n%s\n", tensor, t.DType, formatShape(t.Shape), s)
	return err
}

// reshape copies every tensor of in into out through the view_copy kernel.
// Tensors named in views get the requested shape, the others keep theirs.
func reshape(ctx context.Context, in, out string, views []string, jobs int) error {
	shapes, err := parseViews(views)
	if err != nil {
		return err
	}
	m := viewcopy.Mapped{}
	if err := m.Open(in); err != nil {
		return err
	}
	defer m.Close()
	for name := range shapes {
		if m.Tensor(name) == nil {
			return errors.Errorf("%s: no tensor %q", in, name)
		}
	}

	dst := &viewcopy.File{Metadata: m.Metadata, Tensors: make([]viewcopy.NamedTensor, len(m.Tensors))}
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range m.Tensors {
		src := &m.Tensors[i]
		shape, ok := shapes[src.Name]
		if !ok {
			shape = src.Shape
		}
		dst.Tensors[i] = viewcopy.NamedTensor{
			Name:   src.Name,
			Tensor: viewcopy.Tensor{DType: src.DType, Shape: shape, Data: make([]byte, src.NBytes())},
		}
		t := &dst.Tensors[i].Tensor
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := viewcopy.Default.Call(viewcopy.ViewCopyKernelName, &src.Tensor, shape, t); err != nil {
				return errors.Wrapf(err, "tensor %q", src.Name)
			}
			if ok {
				klog.V(1).Infof("%s: %v -> %v", src.Name, src.Shape, shape)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return writeFile(out, dst)
}

func writeFile(name string, f *viewcopy.File) error {
	o, err := os.Create(name)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(o)
	err = f.Serialize(w)
	if err == nil {
		err = w.Flush()
	}
	if err2 := o.Close(); err == nil {
		err = err2
	}
	if err != nil {
		_ = os.Remove(name)
		return errors.Wrapf(err, "failed to write %q", name)
	}
	return nil
}

// parseViews parses "name=d0,d1,..." arguments. An empty dimension list is a
// scalar.
func parseViews(views []string) (map[string][]uint64, error) {
	out := make(map[string][]uint64, len(views))
	for _, v := range views {
		name, dims, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid view %q: expected name=d0,d1,...", v)
		}
		if _, ok := out[name]; ok {
			return nil, errors.Errorf("invalid view %q: tensor %q specified twice", v, name)
		}
		shape := []uint64{}
		if dims != "" {
			for _, d := range strings.Split(dims, ",") {
				n, err := strconv.ParseUint(strings.TrimSpace(d), 10, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid view %q", v)
				}
				shape = append(shape, n)
			}
		}
		out[name] = shape
	}
	return out, nil
}

func formatShape(shape []uint64) string {
	s := make([]string, len(shape))
	for i, d := range shape {
		s[i] = strconv.FormatUint(d, 10)
	}
	return "[" + strings.Join(s, ",") + "]"
}
