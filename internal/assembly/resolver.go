package assembly

import "fmt"

// Edge tells the resolver which end of a range it is resolving. It decides
// the direction of the IncludeMatchingPage adjustment and the fallback page
// for a keyword that does not occur.
type Edge int

const (
	StartEdge Edge = iota
	EndEdge
)

func (e Edge) String() string {
	if e == EndEdge {
		return "end"
	}
	return "start"
}

// ResolvePage turns spec into a concrete 1-based page of doc. The result is
// not range checked; ResolveRange does that once both edges are known.
func ResolvePage(doc Document, spec PageRangeSpec, edge Edge, throwIfKeywordNotFound bool) (int, error) {
	total := doc.PageCount()

	switch spec.Selection {
	case FirstPage:
		return 1, nil
	case LastPage:
		return total, nil
	case SpecificPage:
		if spec.Page < 1 {
			return 0, fmt.Errorf("%w: %s page %d is below 1", ErrInvalidSelection, edge, spec.Page)
		}
		return min(spec.Page, total), nil
	case Keyword:
		return resolveKeyword(doc, spec.Keyword, edge, throwIfKeywordNotFound)
	}
	return 0, fmt.Errorf("%w: %s selection %q", ErrInvalidSelection, edge, spec.Selection)
}

func resolveKeyword(doc Document, kw *KeywordSpec, edge Edge, throwIfNotFound bool) (int, error) {
	if kw == nil {
		return 0, fmt.Errorf("%w: %s keyword selection without keyword", ErrInvalidSelection, edge)
	}
	if kw.Occurrence == SpecificOccurrence && kw.Index < 1 {
		return 0, fmt.Errorf("%w: %s occurrence index %d is below 1", ErrInvalidSelection, edge, kw.Index)
	}

	matches, err := FindKeyword(doc, kw.Text, kw.CaseSensitive)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		if throwIfNotFound {
			return 0, fmt.Errorf("%w: %q in %s", ErrKeywordNotFound, kw.Text, doc.Path())
		}
		if edge == EndEdge {
			return doc.PageCount(), nil
		}
		return 1, nil
	}

	var page int
	switch kw.Occurrence {
	case FirstOccurrence, "":
		page = matches[0]
	case LastOccurrence:
		page = matches[len(matches)-1]
	case SpecificOccurrence:
		if kw.Index > len(matches) {
			return 0, fmt.Errorf("%w: %q occurs %d times, occurrence %d requested",
				ErrOutOfRangeOccurrence, kw.Text, len(matches), kw.Index)
		}
		page = matches[kw.Index-1]
	default:
		return 0, fmt.Errorf("%w: %s occurrence %q", ErrInvalidSelection, edge, kw.Occurrence)
	}

	if !kw.IncludeMatchingPage {
		if edge == StartEdge {
			page++
		} else {
			page--
		}
	}
	return page, nil
}

// ResolveRange resolves both edges and enforces 1 <= start <= end <= pages.
func ResolveRange(doc Document, start, end PageRangeSpec, throwIfKeywordNotFound bool) (int, int, error) {
	total := doc.PageCount()
	if total < 1 {
		return 0, 0, fmt.Errorf("%w: %s has no pages", ErrInvalidRange, doc.Path())
	}

	from, err := ResolvePage(doc, start, StartEdge, throwIfKeywordNotFound)
	if err != nil {
		return 0, 0, err
	}
	to, err := ResolvePage(doc, end, EndEdge, throwIfKeywordNotFound)
	if err != nil {
		return 0, 0, err
	}

	if from < 1 || to > total || from > to {
		return 0, 0, fmt.Errorf("%w: start %d, end %d, %d pages (start %s, end %s)",
			ErrInvalidRange, from, to, total, start, end)
	}
	return from, to, nil
}
