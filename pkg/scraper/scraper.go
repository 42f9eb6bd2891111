package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"rozhodnutia/internal/downloader"
	"rozhodnutia/pkg/config"
	"rozhodnutia/pkg/crawler"
	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/export"
	"rozhodnutia/pkg/extract"
	"rozhodnutia/pkg/fetch"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/ratelimit"
	"rozhodnutia/pkg/retry"
	"rozhodnutia/pkg/supcourt"
	"rozhodnutia/pkg/ui"
)

// Options carries the collaborators that are not part of the configuration
type Options struct {
	// Acknowledger gates retries when fetch.wait_for_operator is on
	Acknowledger fetch.Acknowledger
	// Notifier reports the outcome of a run; nil disables notifications
	Notifier *ui.Notifier
	// Transport overrides the HTTP round tripper, mainly for tests
	Transport http.RoundTripper
}

// Result summarises one harvest
type Result struct {
	Records   []models.Record
	Downloads downloader.Summary
	// Exported lists the paths of the metadata files written
	Exported []string
	Duration time.Duration
}

// Scraper orchestrates crawl, collect and export for one date range
type Scraper struct {
	crawler   *crawler.Crawler
	collector *downloader.Collector
	exporters []export.Exporter
	notifier  *ui.Notifier
	config    *config.Config
	logger    logger.Logger
}

// New wires the pipeline from configuration
func New(cfg *config.Config, opts Options, log logger.Logger) (*Scraper, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log = logger.OrNop(log)

	client := supcourt.NewClient(supcourt.ClientOptions{
		UserAgent:       cfg.Site.UserAgent,
		Timeout:         cfg.Fetch.Timeout,
		DownloadTimeout: cfg.Fetch.DownloadTimeout,
		Limiter:         ratelimit.PerMinute(cfg.Fetch.RequestsPerMinute),
		Transport:       opts.Transport,
	}, log)

	fetcher, err := fetch.New(client, fetch.Options{
		MaxAttempts:     cfg.Fetch.MaxAttempts,
		RetryDelay:      cfg.Fetch.RetryDelay,
		Backoff:         retry.NewBackoff(cfg.Fetch.RetryDelay, cfg.Fetch.MaxRetryDelay, cfg.Fetch.BackoffMultiplier),
		WaitForOperator: cfg.Fetch.WaitForOperator,
		Acknowledger:    opts.Acknowledger,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("configuring fetcher: %w", err)
	}

	c := crawler.New(fetcher, extract.NewExtractor(cfg.Site.BaseURL, log), crawler.Options{
		BaseURL:                cfg.Site.BaseURL,
		EmptyPageConfirmations: cfg.Crawl.EmptyPageConfirmations,
		ReturnPartialOnAbort:   cfg.Crawl.ExportPartialOnAbort,
	}, log)

	exporters := []export.Exporter{export.NewCSVExporter(cfg.Output.MetadataFile)}
	if cfg.Output.WriteJSON {
		exporters = append(exporters, export.NewJSONExporter(""))
	}

	return &Scraper{
		crawler:   c,
		collector: downloader.NewCollector(client, cfg.Output.FilesDirectory, log),
		exporters: exporters,
		notifier:  opts.Notifier,
		config:    cfg,
		logger:    log.WithField("component", "scraper"),
	}, nil
}

// Run harvests every decision in r into outputRoot. The crawl runs to
// completion first, then every file is downloaded, then metadata is written.
// An aborted crawl returns an error matching errors.ErrCrawlAborted and
// exports nothing unless crawl.export_partial_on_abort is set.
func (s *Scraper) Run(ctx context.Context, r models.DateRange, outputRoot string) (*Result, error) {
	start := time.Now()
	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"date_from": r.From.Format(models.DateLayout),
		"date_to":   r.To.Format(models.DateLayout),
		"output":    outputRoot,
	})

	result := &Result{}

	records, crawlErr := s.crawler.Crawl(ctx, r)
	if crawlErr != nil && (records == nil || !errors.Is(crawlErr, errs.ErrCrawlAborted)) {
		s.logger.WithError(crawlErr).Error("Harvest aborted")
		s.notifier.SendError("Harvest aborted", crawlErr.Error())
		return result, crawlErr
	}
	if crawlErr != nil {
		s.logger.WithError(crawlErr).WarnWithFields("Exporting partial results", map[string]interface{}{
			"records": len(records),
		})
	}
	result.Records = records

	summary, err := s.collector.Collect(ctx, outputRoot, records)
	result.Downloads = summary
	switch {
	case errors.Is(err, errs.ErrFilesDirectory):
		s.logger.WithError(err).Warn("Continuing without downloaded files")
	case err != nil:
		return result, fmt.Errorf("collecting files: %w", err)
	}

	for _, e := range s.exporters {
		if err := e.Export(outputRoot, records); err != nil {
			return result, fmt.Errorf("exporting %s: %w", e.Name(), err)
		}
		result.Exported = append(result.Exported, filepath.Join(outputRoot, e.Name()))
	}

	result.Duration = time.Since(start)
	logger.LogMetrics(s.logger, "harvest", map[string]interface{}{
		"records":     len(records),
		"downloaded":  summary.Downloaded,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"duration_ms": result.Duration.Milliseconds(),
	})

	if crawlErr != nil {
		s.notifier.SendError("Harvest aborted", fmt.Sprintf("partial metadata for %d records written", len(records)))
		return result, crawlErr
	}

	logger.LogComponentStop(s.logger, "scraper", "completed")
	s.notifier.SendSuccess("Harvest complete", fmt.Sprintf("%d records, %d files", len(records), summary.Downloaded))
	return result, nil
}
