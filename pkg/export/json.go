package export

import (
	"encoding/json"
	"io"
	"time"

	"rozhodnutia/pkg/models"
	"rozhodnutia/pkg/storage"
)

// DefaultJSONName is the JSON export file name
const DefaultJSONName = "metadata.json"

// Document is the JSON export layout
type Document struct {
	ExportedAt time.Time       `json:"exported_at"`
	Count      int             `json:"count"`
	Records    []models.Record `json:"records"`
}

// JSONExporter writes all records as one indented JSON document
type JSONExporter struct {
	Filename string
	now      func() time.Time
}

// NewJSONExporter creates a JSON exporter; an empty name means metadata.json
func NewJSONExporter(filename string) *JSONExporter {
	if filename == "" {
		filename = DefaultJSONName
	}
	return &JSONExporter{Filename: filename, now: time.Now}
}

// Name implements Exporter
func (e *JSONExporter) Name() string {
	return e.Filename
}

// Export implements Exporter
func (e *JSONExporter) Export(outputRoot string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}

	doc := Document{
		ExportedAt: now().UTC(),
		Count:      len(records),
		Records:    records,
	}

	return storage.NewManager(outputRoot, "").WriteFile(e.Filename, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}
