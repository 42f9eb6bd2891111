// Package storage owns the on-disk layout of a harvest.
//
//	<root>/files/<basename>   downloaded decision files
//	<root>/metadata.csv       export
//	<root>/metadata.json      optional export
//
// Downloads are named after the last path segment of their URL, so two
// URLs sharing a basename overwrite each other. Exports are written through
// a temporary file and renamed into place.
package storage
