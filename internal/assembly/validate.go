package assembly

import (
	"strings"

	"github.com/dgallion1/pdfassembly/internal/outline"
)

// MissingSections returns the names in required that appear neither as a
// bookmark title nor in the page text of any document in docs. Bookmarks are
// searched first across every document; page text only for names with no
// bookmark hit. Both comparisons are case-insensitive substring matches.
func MissingSections(docs []Document, required []string) ([]string, error) {
	if len(required) == 0 {
		return nil, nil
	}

	outlines := make([]outline.Forest, len(docs))
	for i, doc := range docs {
		forest, err := doc.Outline()
		if err != nil {
			return nil, ioErr("read outline", doc.Path(), err)
		}
		outlines[i] = forest
	}

	var missing []string
	for _, name := range required {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if bookmarkMatches(outlines, name) {
			continue
		}
		found, err := textMatches(docs, name)
		if err != nil {
			return nil, err
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func bookmarkMatches(outlines []outline.Forest, name string) bool {
	needle := fold(name)
	for _, forest := range outlines {
		for _, title := range forest.Titles() {
			if strings.Contains(fold(title), needle) {
				return true
			}
		}
	}
	return false
}

func textMatches(docs []Document, name string) (bool, error) {
	for _, doc := range docs {
		for p := 1; p <= doc.PageCount(); p++ {
			text, err := doc.PageText(p)
			if err != nil {
				return false, ioErr("read page text", doc.Path(), err)
			}
			if containsFold(text, name) {
				return true, nil
			}
		}
	}
	return false, nil
}
