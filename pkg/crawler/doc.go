// Package crawler drives pagination over the decisions listing.
//
// Pages are fetched strictly one after another starting at page 0, and the
// crawl ends at the first page that yields no rows. There is no page limit;
// the server's own empty page is the only stop signal. A page that cannot
// be fetched aborts the crawl as a whole.
package crawler
