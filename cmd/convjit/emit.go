package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepteams/convjit"
	"github.com/deepteams/convjit/internal/config"
)

func newEmitCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Plan a problem shape and emit its machine code to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			shape, err := config.BuildShape(cfg.Problem)
			if err != nil {
				return err
			}

			conf, err := convjit.Plan(shape.Direction, shape.Conv, shape.Src, shape.Weights, shape.Dst, shape.WithRelu, shape.ReluSlope)
			if err != nil {
				if errors.Is(err, convjit.ErrUnimplemented) {
					fmt.Fprintln(cmd.OutOrStdout(), "unimplemented:", err)
					return nil
				}
				return err
			}

			code, relocs, err := convjit.Emit(conf)
			if err != nil {
				if errors.Is(err, convjit.ErrUnsupportedCPU) {
					fmt.Fprintln(cmd.OutOrStdout(), "cannot emit:", err)
					return nil
				}
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, code, 0o644); err != nil {
					return fmt.Errorf("write code blob: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "emitted %d bytes, %d relocations\n", len(code), len(relocs))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the sealed machine code to this file")
	return cmd
}
