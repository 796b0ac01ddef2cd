// Package manifest reads assembly plans written in Markdown.
//
// A plan looks like:
//
//	# out/report.pdf
//
//	## Main
//	- main.pdf
//
//	## Documents
//	- annexes/ek-a.pdf
//	- annexes/ek-b.pdf
//
//	## Exclude
//	- *_draft*
//
//	## Required sections
//	- EK-A
//
//	## Options
//	- preserve bookmarks: yes
//	- bookmark documents: yes
//	- missing documents: lenient
//
// A plan with an "Extract" section describes an extraction from Main instead
// of a merge:
//
//	## Extract
//	- start: first
//	- end: keyword "EK-B" last exclude
//
// A keyword that is not found falls back to the first or last page unless
// the plan sets "throw if keyword not found: yes".
package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind says what a Plan asks for.
type Kind string

const (
	KindMerge   Kind = "merge"
	KindExtract Kind = "extract"
)

// Plan is a parsed manifest. Exactly one of Merge and Extract is set,
// matching Kind.
type Plan struct {
	Kind    Kind
	Merge   *assembly.MergeRequest
	Extract *assembly.ExtractionRequest
}

type section string

const (
	secNone     section = ""
	secMain     section = "main"
	secDocs     section = "documents"
	secExclude  section = "exclude"
	secRequired section = "required sections"
	secOptions  section = "options"
	secExtract  section = "extract"
)

var sectionAliases = map[string]section{
	"main":              secMain,
	"main document":     secMain,
	"source":            secMain,
	"documents":         secDocs,
	"additional":        secDocs,
	"exclude":           secExclude,
	"exclusions":        secExclude,
	"required":          secRequired,
	"required sections": secRequired,
	"options":           secOptions,
	"extract":           secExtract,
}

// Parse reads a Markdown plan.
func Parse(src []byte) (*Plan, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		output  string
		current = secNone
		entries = map[section][]string{}
		seen    = map[section]bool{}
	)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := unquote(rawText(node, src))
			switch node.Level {
			case 1:
				if output != "" {
					return nil, fmt.Errorf("manifest: more than one output heading")
				}
				output = title
				current = secNone
			case 2:
				sec, ok := sectionAliases[strings.ToLower(title)]
				if !ok {
					return nil, fmt.Errorf("manifest: unknown section %q", title)
				}
				current = sec
				seen[sec] = true
			}
		case *ast.List:
			if current == secNone {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := itemText(item, src); t != "" {
					entries[current] = append(entries[current], t)
				}
			}
		case *ast.Paragraph:
			if current == secNone {
				continue
			}
			for _, line := range strings.Split(rawText(node, src), "\n") {
				entries[current] = append(entries[current], unquote(line))
			}
		}
	}

	if output == "" {
		return nil, fmt.Errorf("manifest: missing output heading")
	}
	mains := entries[secMain]
	if len(mains) != 1 {
		return nil, fmt.Errorf("manifest: Main must name exactly one document, got %d", len(mains))
	}
	opts, err := parseOptions(entries[secOptions])
	if err != nil {
		return nil, err
	}

	if seen[secExtract] {
		if len(entries[secDocs]) > 0 {
			return nil, fmt.Errorf("manifest: an extract plan cannot list additional documents")
		}
		req := &assembly.ExtractionRequest{
			Source:                 mains[0],
			Output:                 output,
			ThrowIfKeywordNotFound: opts.throwIfNotFound,
		}
		if err := parseExtract(entries[secExtract], req); err != nil {
			return nil, err
		}
		return &Plan{Kind: KindExtract, Extract: req}, nil
	}

	return &Plan{
		Kind: KindMerge,
		Merge: &assembly.MergeRequest{
			Main:       mains[0],
			Additional: entries[secDocs],
			Output:     output,
			Options: assembly.MergeOptions{
				ExcludePatterns:               entries[secExclude],
				RequiredSections:              entries[secRequired],
				PreserveBookmarks:             opts.preserve,
				BookmarkPerAdditionalDocument: opts.bookmarkDocs,
				MissingDocuments:              opts.missing,
			},
		},
	}, nil
}

type planOptions struct {
	preserve        bool
	bookmarkDocs    bool
	missing         assembly.MissingPolicy
	throwIfNotFound bool
}

func parseOptions(lines []string) (planOptions, error) {
	var opts planOptions
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return opts, fmt.Errorf("manifest: option %q is not key: value", line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "preserve bookmarks":
			opts.preserve, err = parseBool(value)
		case "bookmark documents", "create bookmarks for additional documents":
			opts.bookmarkDocs, err = parseBool(value)
		case "missing documents":
			opts.missing = assembly.MissingPolicy(strings.ToLower(value))
			if opts.missing != assembly.MissingStrict && opts.missing != assembly.MissingLenient {
				err = fmt.Errorf("want strict or lenient")
			}
		case "throw if keyword not found", "keyword required":
			opts.throwIfNotFound, err = parseBool(value)
		default:
			return opts, fmt.Errorf("manifest: unknown option %q", key)
		}
		if err != nil {
			return opts, fmt.Errorf("manifest: option %q: %w", key, err)
		}
	}
	return opts, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseExtract(lines []string, req *assembly.ExtractionRequest) error {
	var haveStart, haveEnd bool
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("manifest: extract entry %q is not start: or end:", line)
		}
		spec, err := ParseBoundary(value)
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "start":
			req.Start, haveStart = spec, true
		case "end":
			req.End, haveEnd = spec, true
		default:
			return fmt.Errorf("manifest: unknown extract entry %q", key)
		}
	}
	if !haveStart {
		req.Start = assembly.PageRangeSpec{Selection: assembly.FirstPage}
	}
	if !haveEnd {
		req.End = assembly.PageRangeSpec{Selection: assembly.LastPage}
	}
	return nil
}

// rawText returns the source lines of block n, trimmed. Entries are read
// raw so glob patterns like *_draft* are not taken as emphasis.
func rawText(n ast.Node, src []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if t := strings.TrimSpace(string(seg.Value(src))); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// itemText returns the text of a list item, joining its blocks with spaces.
func itemText(item ast.Node, src []byte) string {
	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock || c.Kind() == ast.KindList {
			continue
		}
		if t := rawText(c, src); t != "" {
			parts = append(parts, strings.ReplaceAll(t, "\n", " "))
		}
	}
	return unquote(strings.Join(parts, " "))
}

// unquote strips one pair of surrounding backticks.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
