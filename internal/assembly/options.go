package assembly

import "fmt"

// ExtractionOptions is the flat, user-facing form of an extraction. Fields
// that do not apply to the chosen selection are ignored.
type ExtractionOptions struct {
	StartSelection    string `json:"start_page_selection_type"`
	StartKeyword      string `json:"start_keyword,omitempty"`
	StartPage         int    `json:"start_page_number,omitempty"`
	StartOccurrence   string `json:"start_occurrence,omitempty"`
	StartIndex        int    `json:"start_occurrence_index,omitempty"`
	StartIncludeMatch *bool  `json:"start_include_matching_page,omitempty"`

	EndSelection    string `json:"end_page_selection_type"`
	EndKeyword      string `json:"end_keyword,omitempty"`
	EndPage         int    `json:"end_page_number,omitempty"`
	EndOccurrence   string `json:"end_occurrence,omitempty"`
	EndIndex        int    `json:"end_occurrence_index,omitempty"`
	EndIncludeMatch *bool  `json:"end_include_matching_page,omitempty"`

	CaseSensitive          bool `json:"case_sensitive,omitempty"`
	ThrowIfKeywordNotFound bool `json:"throw_if_keyword_not_found"`
}

// Request builds the ExtractionRequest described by o. A missing include
// flag defaults to including the matching page.
func (o ExtractionOptions) Request(source, output string) (ExtractionRequest, error) {
	start, err := buildSpec("start", o.StartSelection, o.StartKeyword, o.StartPage,
		o.StartOccurrence, o.StartIndex, o.StartIncludeMatch, o.CaseSensitive)
	if err != nil {
		return ExtractionRequest{}, err
	}
	end, err := buildSpec("end", o.EndSelection, o.EndKeyword, o.EndPage,
		o.EndOccurrence, o.EndIndex, o.EndIncludeMatch, o.CaseSensitive)
	if err != nil {
		return ExtractionRequest{}, err
	}
	return ExtractionRequest{
		Source:                 source,
		Output:                 output,
		Start:                  start,
		End:                    end,
		ThrowIfKeywordNotFound: o.ThrowIfKeywordNotFound,
	}, nil
}

func buildSpec(edge, selection, keyword string, page int, occurrence string, index int, include *bool, caseSensitive bool) (PageRangeSpec, error) {
	sel, err := ParseSelection(selection)
	if err != nil {
		return PageRangeSpec{}, fmt.Errorf("%s: %w", edge, err)
	}
	spec := PageRangeSpec{Selection: sel}
	switch sel {
	case SpecificPage:
		if page < 1 {
			return PageRangeSpec{}, fmt.Errorf("%w: %s page number %d", ErrInvalidSelection, edge, page)
		}
		spec.Page = page
	case Keyword:
		if keyword == "" {
			return PageRangeSpec{}, fmt.Errorf("%w: %s keyword is empty", ErrInvalidSelection, edge)
		}
		occ, err := ParseOccurrence(occurrence)
		if err != nil {
			return PageRangeSpec{}, fmt.Errorf("%s: %w", edge, err)
		}
		includeMatch := true
		if include != nil {
			includeMatch = *include
		}
		spec.Keyword = &KeywordSpec{
			Text:                keyword,
			Occurrence:          occ,
			Index:               index,
			IncludeMatchingPage: includeMatch,
			CaseSensitive:       caseSensitive,
		}
	}
	return spec, nil
}
