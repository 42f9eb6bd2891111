// Package downloader fetches the decision files referenced by harvested
// records. Downloads run sequentially; a failed download only affects its
// own record.
package downloader
