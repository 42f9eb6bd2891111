// Package export writes harvested records to the output directory, always
// as metadata.csv and optionally as metadata.json.
package export
