package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jpalmerr/activitystream"
	"github.com/jpalmerr/activitystream/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// streamCmd follows the configured activity stream.
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Follow the activity stream",
	Long: `Follow the activity stream of the configured network.

The command will:
  - Load configuration from the specified YAML file
  - Poll the stream from the configured (or --since) position
  - Print every comment event to stdout

Events are printed as JSON lines, or as text when stdout is a terminal.
Logs go to stderr. The command runs until interrupted (Ctrl+C) or
receives SIGTERM. With --once a single page is fetched and printed.

Example:
  activitystream stream -c stream.yaml
  activitystream stream -c stream.yaml --since 1448046383446497 --once
  activitystream stream -c stream.yaml --format json | jq .comment.content`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	streamCmd.Flags().String("since", "", "event id to start from (overrides config)")
	streamCmd.Flags().Bool("once", false, "fetch a single page and exit")
	streamCmd.Flags().String("format", "", "output format: json or text (default: text on a terminal, json otherwise)")
	streamCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = streamCmd.MarkFlagRequired("config")
}

func runStream(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := resolveFormat(formatFlag, os.Stdout)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	since := cfg.Since
	if cmd.Flags().Changed("since") {
		since, _ = cmd.Flags().GetString("since")
	}

	client, err := config.NewClient(cfg, activitystream.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("config loaded",
		"network", client.URN(),
		"type", client.Type(),
		"interval", client.Interval().String(),
		"format", format,
	)

	out := newPrinter(cmd.OutOrStdout(), format)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	once, _ := cmd.Flags().GetBool("once")
	if once {
		batch := client.Once(ctx, since)
		out.Print(batch)
		if batch.Err != nil {
			return fmt.Errorf("poll failed: %w", batch.Err)
		}
		logger.Info("page fetched",
			"since", since,
			"events", humanize.Comma(int64(len(batch.Events))),
		)
		return nil
	}

	var delivered int64
	handler := func(batch activitystream.Batch) {
		delivered += int64(len(batch.Events))
		out.Print(batch)
	}

	// start polling - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- client.Start(ctx, since, handler)
	}()

	select {
	case err := <-errChan:
		return err

	case <-ctx.Done():
		// signal received, wait for the loop to stop with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return err
			}
			logger.Info("shutdown complete",
				"position", client.Position(),
				"events", humanize.Comma(delivered),
			)
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
