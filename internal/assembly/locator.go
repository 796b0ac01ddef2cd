package assembly

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// fold applies Unicode case folding. It is locale independent, so matches
// are identical on every platform. A Caser is stateful and not shared.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

// FindKeyword returns the ascending 1-based pages of doc whose text contains
// text. An empty result means the keyword does not occur.
func FindKeyword(doc Document, text string, caseSensitive bool) ([]int, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty keyword", ErrInvalidSelection)
	}
	needle := text
	if !caseSensitive {
		needle = fold(text)
	}

	var pages []int
	for p := 1; p <= doc.PageCount(); p++ {
		pageText, err := doc.PageText(p)
		if err != nil {
			return nil, ioErr("read page text", doc.Path(), err)
		}
		if !caseSensitive {
			pageText = fold(pageText)
		}
		if strings.Contains(pageText, needle) {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
