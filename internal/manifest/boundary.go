package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/pdfassembly/internal/assembly"
)

// ParseBoundary parses one page range boundary:
//
//	first
//	last
//	page 3
//	keyword "EK-B"
//	keyword "EK-B" last exclude
//	keyword "EK-B" #2 case-sensitive
//
// A keyword boundary defaults to the first occurrence, includes the matching
// page and matches case-insensitively. Occurrence, inclusion and case words
// may come in any order after the keyword text.
func ParseBoundary(expr string) (assembly.PageRangeSpec, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return assembly.PageRangeSpec{}, err
	}
	if len(tokens) == 0 {
		return assembly.PageRangeSpec{}, fmt.Errorf("%w: empty boundary", assembly.ErrInvalidSelection)
	}

	sel, err := assembly.ParseSelection(tokens[0])
	if err != nil {
		return assembly.PageRangeSpec{}, err
	}
	rest := tokens[1:]

	switch sel {
	case assembly.FirstPage, assembly.LastPage:
		if len(rest) > 0 {
			return assembly.PageRangeSpec{}, fmt.Errorf("%w: unexpected %q after %s", assembly.ErrInvalidSelection, rest[0], sel)
		}
		return assembly.PageRangeSpec{Selection: sel}, nil

	case assembly.SpecificPage:
		if len(rest) != 1 {
			return assembly.PageRangeSpec{}, fmt.Errorf("%w: page needs exactly one number", assembly.ErrInvalidSelection)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			return assembly.PageRangeSpec{}, fmt.Errorf("%w: bad page number %q", assembly.ErrInvalidSelection, rest[0])
		}
		return assembly.PageRangeSpec{Selection: sel, Page: n}, nil
	}

	if len(rest) == 0 || rest[0] == "" {
		return assembly.PageRangeSpec{}, fmt.Errorf("%w: keyword needs text", assembly.ErrInvalidSelection)
	}
	kw := &assembly.KeywordSpec{
		Text:                rest[0],
		Occurrence:          assembly.FirstOccurrence,
		IncludeMatchingPage: true,
	}
	for _, tok := range rest[1:] {
		switch word := strings.ToLower(tok); {
		case word == "first":
			kw.Occurrence = assembly.FirstOccurrence
		case word == "last":
			kw.Occurrence = assembly.LastOccurrence
		case word == "include":
			kw.IncludeMatchingPage = true
		case word == "exclude":
			kw.IncludeMatchingPage = false
		case word == "case-sensitive":
			kw.CaseSensitive = true
		case word == "case-insensitive":
			kw.CaseSensitive = false
		default:
			n, err := strconv.Atoi(strings.TrimPrefix(word, "#"))
			if err != nil {
				return assembly.PageRangeSpec{}, fmt.Errorf("%w: unexpected %q in keyword boundary", assembly.ErrInvalidSelection, tok)
			}
			if n < 1 {
				return assembly.PageRangeSpec{}, fmt.Errorf("%w: occurrence %d", assembly.ErrInvalidSelection, n)
			}
			kw.Occurrence = assembly.SpecificOccurrence
			kw.Index = n
		}
	}
	return assembly.PageRangeSpec{Selection: assembly.Keyword, Keyword: kw}, nil
}

// tokenize splits on spaces, keeping double-quoted strings together.
func tokenize(s string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quoted bool
		inTok  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			if quoted {
				tokens = append(tokens, cur.String())
				cur.Reset()
				quoted, inTok = false, false
				continue
			}
			if inTok {
				return nil, fmt.Errorf("%w: stray quote in %q", assembly.ErrInvalidSelection, s)
			}
			quoted = true
		case quoted:
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			if inTok {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote in %q", assembly.ErrInvalidSelection, s)
	}
	if inTok {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
