// Package models defines data structures for bookgraph analyses.
package models

// Sentinel values used when metadata extraction comes up empty.
// The rest of the pipeline relies on these fields never being absent.
const (
	UnknownTitle       = "Unknown Title"
	UnknownAuthor      = "Unknown Author"
	UnknownLanguage    = "Unknown Language"
	UnknownReleaseDate = "Unknown Release Date"
)

// BookMetadata holds the bibliographic fields scraped from the book's
// catalog page. Matches the wire shape of the original analyze-book API.
type BookMetadata struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Language    string   `json:"language"`
	ReleaseDate string   `json:"releaseDate"`
	Subjects    []string `json:"subjects"`
}

// UnknownMetadata returns metadata with every field set to its sentinel.
func UnknownMetadata() BookMetadata {
	return BookMetadata{
		Title:       UnknownTitle,
		Author:      UnknownAuthor,
		Language:    UnknownLanguage,
		ReleaseDate: UnknownReleaseDate,
		Subjects:    []string{},
	}
}
