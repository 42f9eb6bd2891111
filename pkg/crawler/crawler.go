package crawler

import (
	"context"
	"errors"
	"fmt"

	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/supcourt"
)

// Options configures pagination
type Options struct {
	// BaseURL is the site origin listing URLs are built from
	BaseURL string
	// EmptyPageConfirmations is how many consecutive empty fetches of the
	// same page end the crawl
	EmptyPageConfirmations int
	// ReturnPartialOnAbort keeps the records gathered before an abort
	ReturnPartialOnAbort bool
}

// Crawler walks the listing pages of a date range
type Crawler struct {
	fetcher   PageFetcher
	extractor PageExtractor
	opts      Options
	logger    logger.Logger
}

// New creates a crawler
func New(fetcher PageFetcher, extractor PageExtractor, opts Options, log logger.Logger) *Crawler {
	if opts.BaseURL == "" {
		opts.BaseURL = supcourt.DefaultBaseURL
	}
	if opts.EmptyPageConfirmations < 1 {
		opts.EmptyPageConfirmations = 1
	}
	return &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		logger:    logger.OrNop(log).WithField("component", "crawler"),
	}
}

// Crawl fetches pages 0, 1, 2, ... until a page yields no records and
// returns every record in page then row order. When a page cannot be
// fetched the crawl stops with an error matching errors.ErrCrawlAborted.
func (c *Crawler) Crawl(ctx context.Context, r models.DateRange) ([]models.Record, error) {
	logger.LogComponentStart(c.logger, "crawler", map[string]interface{}{
		"date_from": r.From.Format(models.DateLayout),
		"date_to":   r.To.Format(models.DateLayout),
	})

	var records []models.Record
	page := 0
	empties := 0

	for {
		url := supcourt.ListingURL(c.opts.BaseURL, r, page)
		c.logger.InfoWithFields("Downloading page", map[string]interface{}{
			"page": page,
			"url":  url,
		})

		html, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			return c.abort(records, page, err)
		}

		pageRecords, err := c.extractor.Extract(html)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", page, err)
		}

		if len(pageRecords) == 0 {
			empties++
			if empties >= c.opts.EmptyPageConfirmations {
				break
			}
			c.logger.WarnWithFields("Empty page, fetching again to confirm", map[string]interface{}{
				"page":          page,
				"confirmations": empties,
			})
			continue
		}

		empties = 0
		records = append(records, pageRecords...)
		logger.LogPageProgress(c.logger, page, len(pageRecords), len(records))
		page++
	}

	logger.LogComponentStop(c.logger, "crawler", "empty page")
	logger.LogMetrics(c.logger, "crawl", map[string]interface{}{
		"pages":   page,
		"records": len(records),
	})
	return records, nil
}

func (c *Crawler) abort(records []models.Record, page int, err error) ([]models.Record, error) {
	if !errors.Is(err, errs.ErrFetchExhausted) {
		return nil, fmt.Errorf("fetching page %d: %w", page, err)
	}

	c.logger.WithError(err).ErrorWithFields("Aborting crawl", map[string]interface{}{
		"page":    page,
		"records": len(records),
	})
	aborted := fmt.Errorf("%w at page %d: %w", errs.ErrCrawlAborted, page, err)

	if c.opts.ReturnPartialOnAbort {
		return records, aborted
	}
	return nil, aborted
}
