package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"rozhodnutia/pkg/config"
	"rozhodnutia/pkg/ui"
)

const defaultConfigPath = "rozhodnutia.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage rozhodnutia configuration files.

Configuration is loaded from, in order of priority:
  - Command line flags
  - Environment variables (ROZHODNUTIA_*)
  - .env files (./.env, ~/.rozhodnutia.env)
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'rozhodnutia.yaml'
unless a different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from all sources and check every value.

This command checks YAML syntax, value ranges, the site URL and, when one
is configured, that the output directory is usable.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# rozhodnutia configuration file
#
# Every option can also be set through environment variables prefixed with
# ROZHODNUTIA_, for example ROZHODNUTIA_MAX_ATTEMPTS or ROZHODNUTIA_OUTPUT_DIR.

site:
  # Origin of the court site; listing and relative file links are built on it
  base_url: "http://www.supcourt.gov.sk"
  # Overrides the built-in browser user agent
  # user_agent: ""

fetch:
  # Attempts per listing page before the harvest is aborted
  max_attempts: 5
  # Pause between attempts
  retry_delay: 10s
  # Values above 1 grow the pause after every failure, up to max_retry_delay
  backoff_multiplier: 1
  max_retry_delay: 5m
  # Timeout of a single listing request
  timeout: 60s
  # Timeout of a single file download, 0 means no limit
  download_timeout: 0s
  # Politeness limit, 0 disables it
  requests_per_minute: 0
  # Wait for Enter after a failure instead of giving up
  wait_for_operator: false

crawl:
  # Consecutive empty fetches of a page that end the crawl
  empty_page_confirmations: 1
  # Write metadata for the pages fetched before an abort
  export_partial_on_abort: false

output:
  # Existing output directory, usually given with --output
  directory: ""
  files_directory: "files"
  metadata_file: "metadata.csv"
  write_json: false

notifications:
  # Desktop notifications when the harvest ends or waits for the operator
  enabled: false

logging:
  # debug, info, warn, error or disabled
  level: "info"
  # Optional JSON log file
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file %s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("creating configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("formatting configuration: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var problems []error
	if cfg.Output.Directory != "" {
		if _, err := resolveOutputDir(cfg.Output.Directory); err != nil {
			problems = append(problems, err)
		}
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			problems = append(problems, fmt.Errorf("log file: %w", err))
		} else {
			f.Close()
		}
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	if cfg.Fetch.WaitForOperator {
		ui.PrintWarning("wait_for_operator is on, failed fetches are retried until Enter is pressed")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Site", cfg.Site.BaseURL)
	ui.PrintInfo("Attempts per page", fmt.Sprintf("%d, %s apart", cfg.Fetch.MaxAttempts, cfg.Fetch.RetryDelay))
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}
