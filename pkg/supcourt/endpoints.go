package supcourt

import (
	"fmt"
	"net/url"
	"strings"

	"rozhodnutia/pkg/models"
)

const (
	// DefaultBaseURL is the court's site origin
	DefaultBaseURL = "http://www.supcourt.gov.sk"

	// ListingPath is the decisions listing endpoint
	ListingPath = "/rozhodnutia/"

	// DateFormat renders dates as day.month.year without leading zeros
	DateFormat = "2.1.2006"
)

// ListingURL builds the listing URL for one page of decisions within r.
// The query keeps the server's quirky leading "&" verbatim.
func ListingURL(base string, r models.DateRange, page int) string {
	return fmt.Sprintf("%s%s?&art_datrozh_od=%s&art_datrozh_do=%s&page=%d",
		strings.TrimRight(base, "/"),
		ListingPath,
		r.From.Format(DateFormat),
		r.To.Format(DateFormat),
		page,
	)
}

// ResolveLink resolves a row's href against the site origin. It reports
// false for an empty href or one that cannot be parsed.
func ResolveLink(base, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	origin, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	return origin.ResolveReference(ref).String(), true
}
