package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deepteams/convjit"
	"github.com/deepteams/convjit/internal/config"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Validate a problem shape and print the resulting ConvConf",
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
					slog.Warn("shape not supported", "reason", err)
					fmt.Fprintln(cmd.OutOrStdout(), "unimplemented:", err)
					return nil
				}
				return err
			}

			printConf(cmd, conf)
			return nil
		},
	}
}

func printConf(cmd *cobra.Command, conf *convjit.ConvConf) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "direction:     %s\n", conf.Direction)
	fmt.Fprintf(out, "mb=%d groups=%d ic=%d oc=%d\n", conf.MB, conf.NGroups, conf.IC, conf.OC)
	fmt.Fprintf(out, "ih=%d iw=%d oh=%d ow=%d kh=%d kw=%d\n", conf.IH, conf.IW, conf.OH, conf.OW, conf.KH, conf.KW)
	fmt.Fprintf(out, "stride=(%d,%d) t_pad=%d l_pad=%d r_pad=%d\n", conf.StrideH, conf.StrideW, conf.TPad, conf.LPad, conf.RPad)
	fmt.Fprintf(out, "ic_block=%d oc_block=%d nb_ic=%d nb_oc=%d nb_ic_blocking=%d nb_oc_blocking=%d ic_block_step=%d\n",
		conf.ICBlock, conf.OCBlock, conf.NBIC, conf.NBOC, conf.NBICBlocking, conf.NBOCBlocking, conf.ICBlockStep)
	fmt.Fprintf(out, "ur_w=%d ur_w_tail=%d with_bias=%v with_relu=%v\n", conf.URW, conf.URWTail, conf.WithBias, conf.WithRelu)
}
