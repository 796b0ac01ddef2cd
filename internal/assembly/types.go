package assembly

import (
	"fmt"
	"strings"
)

// Selection picks how a page range boundary is chosen.
type Selection string

const (
	FirstPage    Selection = "first"
	LastPage     Selection = "last"
	SpecificPage Selection = "page"
	Keyword      Selection = "keyword"
)

// Occurrence picks which keyword match a boundary uses.
type Occurrence string

const (
	FirstOccurrence    Occurrence = "first"
	LastOccurrence     Occurrence = "last"
	SpecificOccurrence Occurrence = "specific"
)

// KeywordSpec describes a keyword boundary.
type KeywordSpec struct {
	Text                string     `json:"text"`
	Occurrence          Occurrence `json:"occurrence"`
	Index               int        `json:"index,omitempty"` // 1-based, SpecificOccurrence only
	IncludeMatchingPage bool       `json:"include_matching_page"`
	CaseSensitive       bool       `json:"case_sensitive"`
}

// PageRangeSpec describes one boundary of a page range.
type PageRangeSpec struct {
	Selection Selection    `json:"selection"`
	Page      int          `json:"page,omitempty"`
	Keyword   *KeywordSpec `json:"keyword,omitempty"`
}

func (s PageRangeSpec) String() string {
	switch s.Selection {
	case SpecificPage:
		return fmt.Sprintf("page %d", s.Page)
	case Keyword:
		if s.Keyword == nil {
			return "keyword <nil>"
		}
		occ := string(s.Keyword.Occurrence)
		if s.Keyword.Occurrence == SpecificOccurrence {
			occ = fmt.Sprintf("#%d", s.Keyword.Index)
		}
		return fmt.Sprintf("keyword %q %s", s.Keyword.Text, occ)
	default:
		return string(s.Selection)
	}
}

// ExtractionRequest copies a page range out of one source document.
type ExtractionRequest struct {
	Source                 string        `json:"source"`
	Output                 string        `json:"output"`
	Start                  PageRangeSpec `json:"start"`
	End                    PageRangeSpec `json:"end"`
	ThrowIfKeywordNotFound bool          `json:"throw_if_keyword_not_found"`
}

// MissingPolicy decides what happens when an additional merge input does not
// exist.
type MissingPolicy string

const (
	MissingStrict  MissingPolicy = "strict"
	MissingLenient MissingPolicy = "lenient"
)

// MergeOptions tunes a merge.
type MergeOptions struct {
	ExcludePatterns               []string      `json:"exclude_patterns,omitempty"`
	RequiredSections              []string      `json:"required_sections,omitempty"`
	PreserveBookmarks             bool          `json:"preserve_bookmarks"`
	BookmarkPerAdditionalDocument bool          `json:"create_bookmarks_for_additional_documents"`
	MissingDocuments              MissingPolicy `json:"missing_documents,omitempty"`
}

// MergeRequest concatenates a main document and any number of additional
// documents, in order, into Output.
type MergeRequest struct {
	Main       string       `json:"main"`
	Additional []string     `json:"additional,omitempty"`
	Output     string       `json:"output"`
	Options    MergeOptions `json:"options"`
}

// ExtractResult reports a completed extraction.
type ExtractResult struct {
	Output    string `json:"output"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	PageCount int    `json:"page_count"`
}

// MergeResult reports a completed merge.
type MergeResult struct {
	Output    string   `json:"output"`
	PageCount int      `json:"page_count"`
	Documents []string `json:"documents"`
	Excluded  []string `json:"excluded,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	Bookmarks int      `json:"bookmarks"`
}

// ParseSelection maps a user-facing selection name onto a Selection.
func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "firstpage", "first_page":
		return FirstPage, nil
	case "last", "lastpage", "last_page":
		return LastPage, nil
	case "page", "specific", "specificpage", "specific_page":
		return SpecificPage, nil
	case "keyword":
		return Keyword, nil
	}
	return "", fmt.Errorf("%w: unknown selection %q", ErrInvalidSelection, s)
}

// ParseOccurrence maps a user-facing occurrence name onto an Occurrence.
func ParseOccurrence(s string) (Occurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstOccurrence, nil
	case "last":
		return LastOccurrence, nil
	case "specific", "nth":
		return SpecificOccurrence, nil
	}
	return "", fmt.Errorf("%w: unknown occurrence %q", ErrInvalidSelection, s)
}
