package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cavusmuhammed68/ICC-IEEE/config"
	coremon "github.com/cavusmuhammed68/ICC-IEEE/core/monitoring"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/monitoring"
)

var (
	cfgPath string
	outDir  string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "microgrid",
	Short:             "Microgrid dispatch simulator",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory, overrides output.dir")
}

// Execute runs the CLI until it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// PersistentPostRun is skipped on failure, which is when reports are queued.
	defer coremon.Flush(2 * time.Second)
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if outDir != "" {
		c.Output.Dir = outDir
	}
	c.Log.Apply()
	mon, err := monitoring.NewSentryMonitor(c.Sentry)
	if err != nil {
		logger.New("main").Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	cfg = c
	return nil
}

// tracked wraps a command body so failures reach the error tracker.
func tracked(op string, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return coremon.Track(op, func() error { return fn(cmd, args) })
	}
}
