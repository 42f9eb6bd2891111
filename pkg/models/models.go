package models

import (
	"fmt"
	"time"
)

// DateLayout is the input format for dates on the command line
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of decision dates
type DateRange struct {
	From time.Time `json:"from" yaml:"from"`
	To   time.Time `json:"to" yaml:"to"`
}

// ParseDateRange parses two YYYY-MM-DD dates into a validated range
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("date from is invalid, proper format is YYYY-MM-DD: %w", err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("date to is invalid, proper format is YYYY-MM-DD: %w", err)
	}
	r := DateRange{From: f, To: t}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate checks that From is not after To
func (r DateRange) Validate() error {
	if r.To.Before(r.From) {
		return fmt.Errorf("date from %s is after date to %s", r.From.Format(DateLayout), r.To.Format(DateLayout))
	}
	return nil
}

// Record is one decision row of the listing plus its downloaded file.
// SourceURL and LocalPath are empty when absent.
type Record struct {
	DecisionDate  string `json:"decision_date"`
	Chamber       string `json:"chamber"`
	CaseNumber    string `json:"case_number"`
	SubjectMatter string `json:"subject_matter"`
	SourceURL     string `json:"source_url,omitempty"`
	LocalPath     string `json:"local_file,omitempty"`
}

// HasSource reports whether the row linked to a file
func (r *Record) HasSource() bool {
	return r.SourceURL != ""
}

// HasLocalFile reports whether the linked file was stored
func (r *Record) HasLocalFile() bool {
	return r.LocalPath != ""
}

// Fields returns the record in export column order
func (r *Record) Fields() []string {
	return []string{
		r.DecisionDate,
		r.Chamber,
		r.CaseNumber,
		r.SubjectMatter,
		r.SourceURL,
		r.LocalPath,
	}
}
