package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"rozhodnutia/pkg/config"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/scraper"
	"rozhodnutia/pkg/ui"
)

var (
	// Harvest command flags
	dateFrom  string
	dateTo    string
	outputDir string
	wait      bool
	writeJSON bool
	baseURL   string
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Download decisions and their metadata for a date range",
	Long: `Download every decision listed for the given range of decision dates.

Listing pages are fetched one after another until a page contains no
decisions. Each linked document is stored under <output>/files and the
metadata of all decisions is written to <output>/metadata.csv.

A listing page that keeps failing aborts the harvest without writing any
metadata. With --wait the harvest instead pauses after every failure until
Enter is pressed.`,
	Example: `  # Harvest January 2021 into ./decisions
  rozhodnutia harvest --date-from 2021-01-01 --date-to 2021-01-31 -o decisions

  # Wait for the operator instead of giving up on a failing page
  rozhodnutia harvest --date-from 2021-01-01 --date-to 2021-01-31 -o decisions --wait

  # Also write metadata.json
  rozhodnutia --date-from 2021-01-01 --date-to 2021-01-31 -o decisions --json`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	addHarvestFlags(harvestCmd)
}

// addHarvestFlags registers the harvest flags; the root command carries them
// too so that harvesting works without the subcommand.
func addHarvestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dateFrom, "date-from", "", "first decision date, YYYY-MM-DD")
	cmd.Flags().StringVar(&dateTo, "date-to", "", "last decision date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "existing, writable output directory")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for Enter after a failed fetch instead of giving up")
	cmd.Flags().BoolVar(&writeJSON, "json", false, "also write metadata.json")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "court site origin")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if !cmd.HasParent() && dateFrom == "" && dateTo == "" {
		return cmd.Help()
	}

	r, err := models.ParseDateRange(dateFrom, dateTo)
	if err != nil {
		return err
	}

	flags := map[string]interface{}{
		"output":    outputDir,
		"wait":      wait,
		"log-level": logLevel,
		"base-url":  baseURL,
		"json":      writeJSON,
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("notifications") {
		cfg.Notifications.Enabled = notifications
	}

	out, err := resolveOutputDir(cfg.Output.Directory)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("rozhodnutia starting")

	ui.PrintBanner()
	ui.PrintInfo("Decision dates", r.From.Format(models.DateLayout)+" to "+r.To.Format(models.DateLayout))
	ui.PrintInfo("Output", out)

	notifier := ui.NewNotifier(cfg.Notifications.Enabled)
	opts := scraper.Options{Notifier: notifier}
	if cfg.Fetch.WaitForOperator {
		prompt := ui.NewPrompt(notifier)
		if !prompt.IsInteractive() {
			log.Warn("Standard input is not a terminal, each input line acknowledges one failed fetch")
		}
		opts.Acknowledger = prompt
	}

	s, err := scraper.New(cfg, opts, log)
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	result, err := s.Run(cmd.Context(), r, out)
	if err != nil {
		log.WithError(err).Error("Harvest failed")
		return err
	}

	ui.PrintSuccess("Harvest completed")
	ui.PrintInfo("Decisions", strconv.Itoa(len(result.Records)))
	ui.PrintInfo("Files downloaded", strconv.Itoa(result.Downloads.Downloaded))
	if result.Downloads.Failed > 0 {
		ui.PrintWarning("Files failed", result.Downloads.Failed)
	}
	for _, path := range result.Exported {
		ui.PrintInfo("Metadata", path)
	}
	return nil
}

// resolveOutputDir returns the absolute output directory after checking that
// it exists, is a directory and accepts new files
func resolveOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("output directory is required, use --output")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("output directory %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("output directory %s does not exist", abs)
		}
		return "", fmt.Errorf("output directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path %s is not a directory", abs)
	}

	scratch, err := os.CreateTemp(abs, ".rozhodnutia-*")
	if err != nil {
		return "", fmt.Errorf("output directory %s is not writable: %w", abs, err)
	}
	scratch.Close()
	_ = os.Remove(scratch.Name())

	return abs, nil
}
