package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepteams/convjit/internal/config"
)

var (
	cfgFile   string
	activeCfg config.Config
)

// NewRootCmd builds the convjit command tree: a persistent --config flag
// plus one flag per problem-shape field, loaded once in
// PersistentPreRunE and shared by every subcommand via activeCfg.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "convjit",
		Short: "Plan and emit AVX2+FMA convolution microkernels",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newEmitCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

func setupLogger(levelStr string) {
	lvl := slog.LevelInfo
	switch levelStr {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func currentConfig() (config.Config, error) {
	if activeCfg.Problem.Direction == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}
