// Package config loads the cmd/convjit CLI's configuration from flags, an
// optional config file, and environment variables, following the
// teacher-pack's layered-viper pattern: flag defaults seed viper, a config
// file (if present) overrides them, and environment variables take final
// priority.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of knobs cmd/convjit needs to plan and emit one
// kernel: the problem shape plus process-wide options.
type Config struct {
	Problem  ProblemConfig `mapstructure:"problem"`
	LogLevel string        `mapstructure:"log_level"`
}

// ProblemConfig mirrors the fields convjit.Plan needs: tensor shape,
// padding/stride, memory layouts, and epilogue options.
type ProblemConfig struct {
	Direction string `mapstructure:"direction"`

	MB      int `mapstructure:"mb"`
	Groups  int `mapstructure:"groups"`
	IC      int `mapstructure:"ic"`
	OC      int `mapstructure:"oc"`
	IH      int `mapstructure:"ih"`
	IW      int `mapstructure:"iw"`
	OH      int `mapstructure:"oh"`
	OW      int `mapstructure:"ow"`
	KH      int `mapstructure:"kh"`
	KW      int `mapstructure:"kw"`
	StrideH int `mapstructure:"stride_h"`
	StrideW int `mapstructure:"stride_w"`
	TPad    int `mapstructure:"t_pad"`
	LPad    int `mapstructure:"l_pad"`

	SrcFormat     string `mapstructure:"src_format"`
	WeightsFormat string `mapstructure:"weights_format"`
	DstFormat     string `mapstructure:"dst_format"`

	WithBias  bool    `mapstructure:"with_bias"`
	WithRelu  bool    `mapstructure:"with_relu"`
	ReluSlope float64 `mapstructure:"relu_slope"`
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// LoadOptions bundles the inputs Load needs: the command whose bound flags
// take priority, an explicit config file path (empty to auto-discover
// ./convjit.{yaml,toml,json}), and the flag defaults to seed viper with.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

// DefaultConfig returns a representative 3x3/stride-1/same-padding
// blocked-layout forward problem, small enough to plan and emit quickly
// when no shape is given on the command line.
func DefaultConfig() Config {
	return Config{
		Problem: ProblemConfig{
			Direction:     "forward",
			MB:            1,
			Groups:        1,
			IC:            64,
			OC:            64,
			IH:            28,
			IW:            28,
			OH:            28,
			OW:            28,
			KH:            3,
			KW:            3,
			StrideH:       1,
			StrideW:       1,
			TPad:          1,
			LPad:          1,
			SrcFormat:     "nChw8c",
			WeightsFormat: "OIhw8i8o",
			DstFormat:     "nChw8c",
			WithBias:      false,
			WithRelu:      false,
			ReluSlope:     0,
		},
		LogLevel: "info",
	}
}

// RegisterFlags binds every Config field to a persistent flag on fs, using
// defaults for each flag's displayed default value.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	p := defaults.Problem
	fs.String("direction", p.Direction, "Convolution pass (forward|backward-data|backward-weights)")
	fs.Int("mb", p.MB, "Minibatch size")
	fs.Int("groups", p.Groups, "Convolution group count")
	fs.Int("ic", p.IC, "Input channels per group")
	fs.Int("oc", p.OC, "Output channels per group")
	fs.Int("ih", p.IH, "Input height")
	fs.Int("iw", p.IW, "Input width")
	fs.Int("oh", p.OH, "Output height")
	fs.Int("ow", p.OW, "Output width")
	fs.Int("kh", p.KH, "Kernel height")
	fs.Int("kw", p.KW, "Kernel width")
	fs.Int("stride-h", p.StrideH, "Vertical stride")
	fs.Int("stride-w", p.StrideW, "Horizontal stride")
	fs.Int("t-pad", p.TPad, "Top/bottom padding")
	fs.Int("l-pad", p.LPad, "Left/right padding")
	fs.String("src-format", p.SrcFormat, "Source tensor layout")
	fs.String("weights-format", p.WeightsFormat, "Weights tensor layout")
	fs.String("dst-format", p.DstFormat, "Destination tensor layout")
	fs.Bool("with-bias", p.WithBias, "Include a bias term (forward/backward-weights)")
	fs.Bool("with-relu", p.WithRelu, "Apply ReLU in the forward epilogue")
	fs.Float64("relu-slope", p.ReluSlope, "Negative-side ReLU slope recorded in the plan (the emitted epilogue clamps negatives to zero and does not apply it)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// Load layers flag defaults, an optional config file, and environment
// variables (CONVJIT_-prefixed) into a Config.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("CONVJIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("convjit")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	p := c.Problem
	v.SetDefault("problem.direction", p.Direction)
	v.SetDefault("problem.mb", p.MB)
	v.SetDefault("problem.groups", p.Groups)
	v.SetDefault("problem.ic", p.IC)
	v.SetDefault("problem.oc", p.OC)
	v.SetDefault("problem.ih", p.IH)
	v.SetDefault("problem.iw", p.IW)
	v.SetDefault("problem.oh", p.OH)
	v.SetDefault("problem.ow", p.OW)
	v.SetDefault("problem.kh", p.KH)
	v.SetDefault("problem.kw", p.KW)
	v.SetDefault("problem.stride_h", p.StrideH)
	v.SetDefault("problem.stride_w", p.StrideW)
	v.SetDefault("problem.t_pad", p.TPad)
	v.SetDefault("problem.l_pad", p.LPad)
	v.SetDefault("problem.src_format", p.SrcFormat)
	v.SetDefault("problem.weights_format", p.WeightsFormat)
	v.SetDefault("problem.dst_format", p.DstFormat)
	v.SetDefault("problem.with_bias", p.WithBias)
	v.SetDefault("problem.with_relu", p.WithRelu)
	v.SetDefault("problem.relu_slope", p.ReluSlope)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("problem.direction", "direction")
	v.RegisterAlias("problem.mb", "mb")
	v.RegisterAlias("problem.groups", "groups")
	v.RegisterAlias("problem.ic", "ic")
	v.RegisterAlias("problem.oc", "oc")
	v.RegisterAlias("problem.ih", "ih")
	v.RegisterAlias("problem.iw", "iw")
	v.RegisterAlias("problem.oh", "oh")
	v.RegisterAlias("problem.ow", "ow")
	v.RegisterAlias("problem.kh", "kh")
	v.RegisterAlias("problem.kw", "kw")
	v.RegisterAlias("problem.stride_h", "stride-h")
	v.RegisterAlias("problem.stride_w", "stride-w")
	v.RegisterAlias("problem.t_pad", "t-pad")
	v.RegisterAlias("problem.l_pad", "l-pad")
	v.RegisterAlias("problem.src_format", "src-format")
	v.RegisterAlias("problem.weights_format", "weights-format")
	v.RegisterAlias("problem.dst_format", "dst-format")
	v.RegisterAlias("problem.with_bias", "with-bias")
	v.RegisterAlias("problem.with_relu", "with-relu")
	v.RegisterAlias("problem.relu_slope", "relu-slope")
	v.RegisterAlias("log_level", "log-level")
}
