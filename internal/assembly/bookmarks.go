package assembly

import "github.com/dgallion1/pdfassembly/internal/outline"

// BookmarkIndex accumulates the outline of a merged document. Every forest
// added is moved by the page offset of the document it came from.
type BookmarkIndex struct {
	forest outline.Forest
}

// Add appends forest with every target page moved by offset.
func (b *BookmarkIndex) Add(forest outline.Forest, offset int) {
	b.forest = append(b.forest, forest.Shift(offset)...)
}

// AddDocument appends a top-level bookmark with no children.
func (b *BookmarkIndex) AddDocument(title string, page int) {
	b.forest = append(b.forest, outline.Node{Title: title, Page: page})
}

// Len returns the number of top-level bookmarks.
func (b *BookmarkIndex) Len() int {
	return len(b.forest)
}

// Forest returns a copy of the accumulated outline.
func (b *BookmarkIndex) Forest() outline.Forest {
	return b.forest.Shift(0)
}
