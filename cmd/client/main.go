package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pulse-server/internal/client"
	"github.com/vovakirdan/pulse-server/internal/config"
	applog "github.com/vovakirdan/pulse-server/internal/log"
	"github.com/vovakirdan/pulse-server/internal/mirror"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		overrides     config.Config
		wavePeriod    time.Duration
		printInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:           "pulse-client",
		Short:         "Headless presence participant that mirrors the room and reports a synthetic intensity",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(applog.New(overrides.LogLevel), configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			logger := applog.New(cfg.LogLevel)

			var sampler client.Sampler = client.Unavailable
			if wavePeriod > 0 {
				sampler = client.NewWaveSampler(wavePeriod)
			}

			c := client.New(client.Options{
				URL:          cfg.ServerURL,
				EmitInterval: cfg.EmitInterval,
				Sampler:      sampler,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if printInterval > 0 {
				go printLoop(ctx, cmd.OutOrStdout(), c.Mirror(), printInterval)
			}
			return c.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config.yaml")
	flags.StringVar(&overrides.ServerURL, "url", "", "server WebSocket URL")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&overrides.EmitInterval, "emit-interval", 0, "minimum interval between state updates")
	flags.DurationVar(&wavePeriod, "wave-period", 4*time.Second, "period of the synthetic intensity wave (0 reports nothing)")
	flags.DurationVar(&printInterval, "print-interval", time.Second, "how often to print the mirror (0 disables)")

	cmd.SetContext(context.Background())
	return cmd
}

func printLoop(ctx context.Context, out io.Writer, m *mirror.Mirror, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			printMirror(out, m)
		}
	}
}

func printMirror(out io.Writer, m *mirror.Mirror) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tCOLOR\tX\tY\tINTENSITY\tSELF")
	for _, e := range m.Records() {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%t\n", e.UserID, e.Color.Hex, e.Position.X, e.Position.Y, e.Intensity, e.IsSelf)
	}
	fmt.Fprintln(tw)
	tw.Flush()
}
