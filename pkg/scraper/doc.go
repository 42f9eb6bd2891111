// Package scraper wires the harvest pipeline together.
//
// A Scraper is built from a config.Config and runs three stages in order:
//
//   - crawl: listing pages 0, 1, 2, ... of the date range are fetched and
//     parsed until a page yields no decisions
//   - collect: every linked file is downloaded into <output>/files
//   - export: metadata.csv (and metadata.json when enabled) is written to
//     the output directory
//
// Usage:
//
//	cfg, _ := config.Load("", nil)
//	s, err := scraper.New(cfg, scraper.Options{}, logger.GetLogger())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, _ := models.ParseDateRange("2021-01-01", "2021-01-31")
//	result, err := s.Run(ctx, r, "decisions")
//
// Failure handling:
//
// When a listing page cannot be fetched the run stops with an error matching
// errors.ErrCrawlAborted and no metadata is written, unless
// crawl.export_partial_on_abort is set. A file that fails to download only
// leaves its record without a local path. When fetch.wait_for_operator is
// on, Options.Acknowledger decides when a failed page is fetched again.
package scraper
