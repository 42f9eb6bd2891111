package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/supcourt"
)

const (
	// tableSelector matches tables whose class attribute is exactly "rozlist"
	tableSelector = `table[class="rozlist"]`

	// cellsPerRow is the number of data cells a decision row carries
	cellsPerRow = 5
)

// Extractor turns listing pages into records
type Extractor struct {
	origin string
	logger logger.Logger
}

// NewExtractor creates an extractor resolving links against origin
func NewExtractor(origin string, log logger.Logger) *Extractor {
	if origin == "" {
		origin = supcourt.DefaultBaseURL
	}
	return &Extractor{
		origin: origin,
		logger: logger.OrNop(log).WithField("component", "extractor"),
	}
}

// Extract parses a listing page with the court's own origin
func Extract(html string) ([]models.Record, error) {
	return NewExtractor(supcourt.DefaultBaseURL, nil).Extract(html)
}

// Extract returns one record per qualifying row of every rozlist table, in
// document order. Rows without exactly five td cells, such as th header
// rows, are skipped. Malformed markup is not an error.
func (e *Extractor) Extract(html string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, 0, err, "reading listing page: %v", err)
	}

	var records []models.Record
	skipped := 0

	doc.Find(tableSelector).Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() != cellsPerRow {
				skipped++
				return
			}
			records = append(records, e.record(cells))
		})
	})

	if skipped > 0 {
		e.logger.DebugWithFields("Skipped rows without five cells", map[string]interface{}{
			"skipped": skipped,
			"records": len(records),
		})
	}

	return records, nil
}

func (e *Extractor) record(cells *goquery.Selection) models.Record {
	rec := models.Record{
		DecisionDate:  cells.Eq(0).Text(),
		Chamber:       cells.Eq(1).Text(),
		CaseNumber:    cells.Eq(2).Text(),
		SubjectMatter: cells.Eq(3).Text(),
	}

	if href, ok := cells.Eq(4).Find("a").First().Attr("href"); ok {
		if link, ok := supcourt.ResolveLink(e.origin, href); ok {
			rec.SourceURL = link
		}
	}

	return rec
}
