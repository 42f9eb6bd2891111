// Package extract pulls decision rows out of the court's listing HTML.
package extract
