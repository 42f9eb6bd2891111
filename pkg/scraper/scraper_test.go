package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rozhodnutia/pkg/config"
	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/fetch"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/ui"
)

type listingRow struct {
	date, chamber, caseNumber, subject, href string
}

// mockCourtServer mimics the decision listing and its attachments
type mockCourtServer struct {
	server *httptest.Server

	mu           sync.Mutex
	pages        map[int][]listingRow
	failPages    map[int]int // page -> remaining failures, -1 for always
	missingFiles map[string]bool
	slowFiles    map[string]time.Duration

	listingCalls  int32
	downloadCalls int32
}

func newMockCourtServer(t *testing.T) *mockCourtServer {
	t.Helper()
	m := &mockCourtServer{
		pages:        map[int][]listingRow{},
		failPages:    map[int]int{},
		missingFiles: map[string]bool{},
		slowFiles:    map[string]time.Duration{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rozhodnutia/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.listingCalls, 1)

		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)

		m.mu.Lock()
		defer m.mu.Unlock()

		if remaining, ok := m.failPages[page]; ok && remaining != 0 {
			if remaining > 0 {
				m.failPages[page] = remaining - 1
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingHTML(m.pages[page]))
	})
	mux.HandleFunc("/data/att/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.downloadCalls, 1)

		m.mu.Lock()
		missing := m.missingFiles[r.URL.Path]
		delay := m.slowFiles[r.URL.Path]
		m.mu.Unlock()

		if missing {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "%PDF ")
		if delay > 0 {
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			time.Sleep(delay)
		}
		fmt.Fprint(w, r.URL.Path)
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func listingHTML(rows []listingRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="rozlist"><tr><th>Dátum</th><th>Kolégium</th><th>Spisová značka</th><th>Merito</th><th>Súbor</th></tr>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td><a href="%s">pdf</a></td></tr>`,
			r.date, r.chamber, r.caseNumber, r.subject, r.href)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func threeRows() []listingRow {
	return []listingRow{
		{"4.1.2021", "Civilnoprávne", "1Cdo/1/2020", "určenie vlastníctva", "/data/att/1.pdf"},
		{"5.1.2021", "Trestnoprávne", "2Tdo/7/2020", "dovolanie", "/data/att/2.pdf"},
		{"6.1.2021", "Obchodnoprávne", "3Obdo/4/2020", "zaplatenie", "/data/att/3.pdf"},
	}
}

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = baseURL
	cfg.Fetch.MaxAttempts = 2
	cfg.Fetch.RetryDelay = time.Millisecond
	cfg.Fetch.Timeout = 5 * time.Second
	return cfg
}

func januaryRange(t *testing.T) models.DateRange {
	t.Helper()
	r, err := models.ParseDateRange("2021-01-01", "2021-01-31")
	require.NoError(t, err)
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunEndToEnd(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()

	out := t.TempDir()
	s, err := New(testConfig(m.server.URL), Options{}, logger.NewTestLogger())
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&m.listingCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&m.downloadCalls))
	require.Len(t, result.Records, 3)
	assert.Equal(t, 3, result.Downloads.Downloaded)
	assert.Equal(t, []string{filepath.Join(out, "metadata.csv")}, result.Exported)

	for i, name := range []string{"1.pdf", "2.pdf", "3.pdf"} {
		data, err := os.ReadFile(filepath.Join(out, "files", name))
		require.NoError(t, err)
		assert.Equal(t, "%PDF /data/att/"+name, string(data))
		assert.Equal(t, "files/"+name, result.Records[i].LocalPath)
		assert.Equal(t, m.server.URL+"/data/att/"+name, result.Records[i].SourceURL)
	}

	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Datum", "Kolégium", "Spisová značka", "Merito věci", "URL", "Soubor"}, rows[0])
	assert.Equal(t, "2Tdo/7/2020", rows[2][2])
	assert.Equal(t, "files/3.pdf", rows[3][5])
}

func TestRunNoDecisions(t *testing.T) {
	m := newMockCourtServer(t)

	out := t.TempDir()
	s, err := New(testConfig(m.server.URL), Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.listingCalls))

	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	assert.Len(t, rows, 1)
}

func TestRunAbortedCrawlExportsNothing(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.failPages[1] = -1

	out := t.TempDir()
	log := logger.NewTestLogger()
	s, err := New(testConfig(m.server.URL), Options{}, log)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), januaryRange(t), out)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCrawlAborted)
	assert.ErrorIs(t, err, errs.ErrFetchExhausted)

	assert.Equal(t, int32(3), atomic.LoadInt32(&m.listingCalls), "page 0 once, page 1 twice")
	assert.Zero(t, atomic.LoadInt32(&m.downloadCalls))
	assert.NoFileExists(t, filepath.Join(out, "metadata.csv"))
	assert.True(t, log.HasMessage("Harvest aborted"))
}

func TestRunPartialExportOnAbort(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.failPages[1] = -1

	cfg := testConfig(m.server.URL)
	cfg.Crawl.ExportPartialOnAbort = true

	out := t.TempDir()
	s, err := New(cfg, Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	assert.ErrorIs(t, err, errs.ErrCrawlAborted)
	require.NotNil(t, result)
	assert.Len(t, result.Records, 3)

	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	assert.Len(t, rows, 4)
}

func TestRunFailedDownloadLeavesRecordWithoutFile(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.missingFiles["/data/att/2.pdf"] = true

	out := t.TempDir()
	s, err := New(testConfig(m.server.URL), Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Downloads.Downloaded)
	assert.Equal(t, 1, result.Downloads.Failed)
	assert.Empty(t, result.Records[1].LocalPath)
	assert.NoFileExists(t, filepath.Join(out, "files", "2.pdf"))

	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, m.server.URL+"/data/att/2.pdf", rows[2][4])
}

func TestRunSlowDownloadIsNotBoundByListingTimeout(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.slowFiles["/data/att/1.pdf"] = 600 * time.Millisecond

	cfg := testConfig(m.server.URL)
	cfg.Fetch.Timeout = 300 * time.Millisecond

	out := t.TempDir()
	s, err := New(cfg, Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Downloads.Downloaded)

	data, err := os.ReadFile(filepath.Join(out, "files", "1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF /data/att/1.pdf", string(data))
}

func TestRunTimedOutDownloadDoesNotStopHarvest(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.slowFiles["/data/att/1.pdf"] = 600 * time.Millisecond

	cfg := testConfig(m.server.URL)
	cfg.Fetch.DownloadTimeout = 200 * time.Millisecond

	out := t.TempDir()
	s, err := New(cfg, Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Downloads.Failed)
	assert.Equal(t, 2, result.Downloads.Downloaded)

	assert.Empty(t, result.Records[0].LocalPath)
	assert.NoFileExists(t, filepath.Join(out, "files", "1.pdf"))
	assert.FileExists(t, filepath.Join(out, "files", "3.pdf"))

	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	require.Len(t, rows, 4)
	assert.Equal(t, "files/3.pdf", rows[3][5])
}

func TestRunWithoutFilesDirectoryStillExports(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()

	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "files"), []byte("not a directory"), 0644))

	s, err := New(testConfig(m.server.URL), Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&m.downloadCalls))

	for _, rec := range result.Records {
		assert.Empty(t, rec.LocalPath)
	}
	rows := readCSV(t, filepath.Join(out, "metadata.csv"))
	assert.Len(t, rows, 4)
}

func TestRunWritesJSONWhenEnabled(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()

	cfg := testConfig(m.server.URL)
	cfg.Output.WriteJSON = true

	out := t.TempDir()
	s, err := New(cfg, Options{}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Len(t, result.Exported, 2)
	assert.FileExists(t, filepath.Join(out, "metadata.json"))
}

func TestRunWaitModeRetriesAfterAcknowledgement(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()
	m.failPages[0] = 3

	cfg := testConfig(m.server.URL)
	cfg.Fetch.WaitForOperator = true

	ack := fetch.NewChannelAcknowledger()
	go func() {
		for range ack.Failures {
			ack.Acks <- struct{}{}
		}
	}()
	defer close(ack.Failures)

	out := t.TempDir()
	s, err := New(cfg, Options{Acknowledger: ack}, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), januaryRange(t), out)
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, int32(5), atomic.LoadInt32(&m.listingCalls), "three failures, page 0, page 1")
}

func TestNewRequiresAcknowledgerInWaitMode(t *testing.T) {
	cfg := testConfig("http://example.test")
	cfg.Fetch.WaitForOperator = true

	_, err := New(cfg, Options{}, nil)
	assert.Error(t, err)
}

func TestRunNotifiesOutcome(t *testing.T) {
	m := newMockCourtServer(t)
	m.pages[0] = threeRows()

	sender := &recordingSender{}
	prev := ui.Output
	ui.Output = &strings.Builder{}
	t.Cleanup(func() { ui.Output = prev })

	s, err := New(testConfig(m.server.URL), Options{Notifier: ui.NewNotifierWithSender(sender)}, nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), januaryRange(t), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"Harvest complete"}, sender.titles)
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, _ string) error {
	r.titles = append(r.titles, title)
	return nil
}
