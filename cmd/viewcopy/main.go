// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// viewcopy inspects safetensors files and rewrites tensors under new shapes
// with the aten::view_copy.out kernel.
package main

import (
	"context"
	"flag"
	"runtime"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "viewcopy",
		Short:         "Reshape tensors stored in safetensors files",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	lsCmd := &cobra.Command{
		Use:   "ls FILE",
		Short: "List the tensors of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  ListHandler,
	}

	showCmd := &cobra.Command{
		Use:   "show FILE TENSOR",
		Short: "Print the elements of a tensor",
		Args:  cobra.ExactArgs(2),
		RunE:  ShowHandler,
	}
	showCmd.Flags().Int("max", 16, "Maximum number of elements to print, 0 for all")

	reshapeCmd := &cobra.Command{
		Use:   "reshape IN OUT",
		Short: "Copy IN to OUT, giving tensors new shapes",
		Example: `  viewcopy reshape model.safetensors out.safetensors --view wte=50257,16,48
  viewcopy reshape in.safetensors out.safetensors --view a=6 --view b=2,3 --jobs 2`,
		Args: cobra.ExactArgs(2),
		RunE: ReshapeHandler,
	}
	reshapeCmd.Flags().StringArray("view", nil, "Tensor view as name=d0,d1,...; repeatable")
	reshapeCmd.Flags().Int("jobs", runtime.GOMAXPROCS(0), "Number of tensors copied concurrently")

	rootCmd.AddCommand(lsCmd, showCmd, reshapeCmd)
	return rootCmd
}

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()
	cobra.CheckErr(NewCLI().ExecuteContext(context.Background()))
}
