package main

import (
	"fmt"

	"github.com/jpalmerr/activitystream/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without polling.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an activitystream configuration file without polling.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  activitystream validate -c stream.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	client, err := config.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Network:  %s\n", client.URN())
	fmt.Fprintf(out, "  URL:      %s\n", client.URL())
	fmt.Fprintf(out, "  Type:     %d\n", client.Type())
	fmt.Fprintf(out, "  Interval: %s\n", client.Interval())
	fmt.Fprintf(out, "  Since:    %s\n", cfg.Since)

	return nil
}
