package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/freefloat/internal/config"
	"github.com/aristath/freefloat/internal/di"
	"github.com/aristath/freefloat/pkg/logger"
)

// app holds the state shared by the subcommands.
type app struct {
	logLevel  string
	container *di.Container
	log       zerolog.Logger
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd(&app{}).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "freefloat",
		Short:         "Free-float weighted portfolio simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newTableCmd(a))
	return root
}

func (a *app) init(stderr io.Writer) error {
	if a.container != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(logger.Config{Level: level, Pretty: true, Output: stderr})

	container, err := di.Wire(cfg, a.log)
	if err != nil {
		return err
	}
	a.container = container
	return nil
}

func (a *app) close() error {
	if a.container == nil {
		return nil
	}
	return a.container.Close()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
