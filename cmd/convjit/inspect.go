package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepteams/convjit"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report whether the host CPU can run emitted kernels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if convjit.CPUSupported() {
				fmt.Fprintln(cmd.OutOrStdout(), "AVX2+FMA: supported")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "AVX2+FMA: not supported")
			}
			return nil
		},
	}
}
