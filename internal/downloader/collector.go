package downloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/storage"
)

// FileDownloader streams url into dest and reports the response status
type FileDownloader interface {
	Download(ctx context.Context, url, dest string) (int, error)
}

// Outcome classifies what happened to one record
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// DownloadResult represents the result of one record's download
type DownloadResult struct {
	Record   *models.Record
	Outcome  Outcome
	Status   int
	Error    error
	Duration time.Duration
}

// Summary counts outcomes of a collection run
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (s *Summary) add(r DownloadResult) {
	switch r.Outcome {
	case OutcomeDownloaded:
		s.Downloaded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Collector downloads the file each record links to, one at a time
type Collector struct {
	client   FileDownloader
	filesDir string
	logger   logger.Logger
}

// NewCollector creates a collector storing files under <root>/<filesDir>
func NewCollector(client FileDownloader, filesDir string, log logger.Logger) *Collector {
	return &Collector{
		client:   client,
		filesDir: filesDir,
		logger:   logger.OrNop(log).WithField("component", "collector"),
	}
}

// Collect downloads every linked file into <outputRoot>/files and sets
// LocalPath on each record whose download answered 200. If the files
// directory cannot be created no record is touched and the error matches
// errors.ErrFilesDirectory. Per-record failures are logged, not returned.
func (c *Collector) Collect(ctx context.Context, outputRoot string, records []models.Record) (Summary, error) {
	var summary Summary

	store := storage.NewManager(outputRoot, c.filesDir)
	if err := store.EnsureFilesDir(); err != nil {
		c.logger.WithError(err).ErrorWithFields("Cannot create files directory, skipping downloads", map[string]interface{}{
			"directory": store.FilesDir(),
		})
		return summary, err
	}

	logger.LogComponentStart(c.logger, "collector", map[string]interface{}{
		"records":   len(records),
		"directory": store.FilesDir(),
	})

	for i := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := c.collectOne(ctx, store, &records[i])
		summary.add(result)

		// a failed download only stops the loop when the caller cancelled
		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	logger.LogMetrics(c.logger, "collect", map[string]interface{}{
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	})
	return summary, nil
}

func (c *Collector) collectOne(ctx context.Context, store *storage.Manager, rec *models.Record) DownloadResult {
	start := time.Now()
	result := DownloadResult{Record: rec}

	if !rec.HasSource() {
		c.logger.WarnWithFields("Empty file URL", map[string]interface{}{
			"case_number": rec.CaseNumber,
		})
		result.Outcome = OutcomeSkipped
		return result
	}

	basename, err := storage.Basename(rec.SourceURL)
	if err != nil {
		c.logger.WithError(err).WarnWithFields("Cannot derive file name, skipping", map[string]interface{}{
			"url": rec.SourceURL,
		})
		result.Outcome = OutcomeSkipped
		result.Error = err
		return result
	}

	dest := store.PathFor(basename)
	c.logger.InfoWithFields("Downloading file", map[string]interface{}{
		"url":  rec.SourceURL,
		"path": dest,
	})

	status, err := c.client.Download(ctx, rec.SourceURL, dest)
	result.Status = status
	result.Duration = time.Since(start)

	if err == nil && status != http.StatusOK {
		err = fmt.Errorf("integrity check failed: status %d", status)
	}
	if err != nil {
		if rmErr := store.Remove(basename); rmErr != nil {
			c.logger.WithError(rmErr).Warn("Failed to remove rejected download")
		}
		logger.LogDownload(c.logger, rec.SourceURL, "", false, err)
		result.Outcome = OutcomeFailed
		result.Error = err
		return result
	}

	rec.LocalPath = store.RelativePath(basename)
	logger.LogDownload(c.logger, rec.SourceURL, rec.LocalPath, true, nil)
	result.Outcome = OutcomeDownloaded
	return result
}
