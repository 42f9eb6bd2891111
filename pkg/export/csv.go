package export

import (
	"encoding/csv"
	"io"

	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/storage"
)

// DefaultCSVName is the metadata export file name
const DefaultCSVName = "metadata.csv"

// CSVExporter writes one header row then one row per record
type CSVExporter struct {
	Filename string
}

// NewCSVExporter creates a CSV exporter; an empty name means metadata.csv
func NewCSVExporter(filename string) *CSVExporter {
	if filename == "" {
		filename = DefaultCSVName
	}
	return &CSVExporter{Filename: filename}
}

// Name implements Exporter
func (e *CSVExporter) Name() string {
	return e.Filename
}

// Export writes the records in order. Absent URLs and local paths are
// written as empty cells.
func (e *CSVExporter) Export(outputRoot string, records []models.Record) error {
	return storage.NewManager(outputRoot, "").WriteFile(e.Filename, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			return err
		}
		for i := range records {
			if err := cw.Write(records[i].Fields()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
