// Package supcourt knows how to talk to the Supreme Court decisions site:
// how listing URLs are built, how row links are resolved, and how pages and
// referenced files are fetched over HTTP.
package supcourt
