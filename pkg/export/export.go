package export

import (
	"rozhodnutia/pkg/models"
)

// Exporter writes harvested records below an output root
type Exporter interface {
	// Name is the file the exporter writes, relative to the output root
	Name() string
	Export(outputRoot string, records []models.Record) error
}

// Header labels the export columns. The labels are kept exactly as
// earlier harvests wrote them so downstream tooling keeps working.
var Header = []string{"Datum", "Kolégium", "Spisová značka", "Merito věci", "URL", "Soubor"}
