package assembly

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dgallion1/pdfassembly/internal/outline"
)

func TestMerge_BookmarkPerAdditionalDocument(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 3), nil)
	docA := writeDoc(t, dir, "A.pdf", numberedPages("A", 2), nil)
	docB := writeDoc(t, dir, "B.pdf", numberedPages("B", 4), nil)
	out := filepath.Join(dir, "out.pdf")

	res, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{docA, docB},
		Output:     out,
		Options:    MergeOptions{BookmarkPerAdditionalDocument: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PageCount != 9 {
		t.Errorf("expected 9 pages, got %d", res.PageCount)
	}

	got := readDoc(t, out)
	if len(got.Pages) != 9 {
		t.Fatalf("expected 9 pages in output, got %d", len(got.Pages))
	}
	want := outline.Forest{{Title: "A", Page: 4}, {Title: "B", Page: 6}}
	if !forestEqual(got.Outline, want) {
		t.Errorf("expected outline %v, got %v", want, got.Outline)
	}
}

func TestMerge_PreservedBookmarksAreRemapped(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 3), outline.Forest{
		{Title: "Cover", Page: 1},
		{Title: "Summary", Page: 2, Children: []outline.Node{{Title: "Scope", Page: 3}}},
	})
	docA := writeDoc(t, dir, "ek-a.pdf", numberedPages("A", 5), outline.Forest{
		{Title: "EK-A", Page: 1, Children: []outline.Node{
			{Title: "Loads", Page: 2, Children: []outline.Node{{Title: "Wind", Page: 4}}},
		}},
	})
	docB := writeDoc(t, dir, "ek-b.pdf", numberedPages("B", 2), outline.Forest{
		{Title: "EK-B", Page: 2},
	})
	out := filepath.Join(dir, "out.pdf")

	res, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{docA, docB},
		Output:     out,
		Options:    MergeOptions{PreserveBookmarks: true, BookmarkPerAdditionalDocument: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := outline.Forest{
		{Title: "Cover", Page: 1},
		{Title: "Summary", Page: 2, Children: []outline.Node{{Title: "Scope", Page: 3}}},
		{Title: "ek-a", Page: 4},
		{Title: "EK-A", Page: 4, Children: []outline.Node{
			{Title: "Loads", Page: 5, Children: []outline.Node{{Title: "Wind", Page: 7}}},
		}},
		{Title: "ek-b", Page: 9},
		{Title: "EK-B", Page: 10},
	}
	got := readDoc(t, out)
	if !forestEqual(got.Outline, want) {
		t.Errorf("expected outline\n%s\ngot\n%s", want.Format(), got.Outline.Format())
	}
	if res.Bookmarks != want.Count() {
		t.Errorf("expected %d bookmarks, got %d", want.Count(), res.Bookmarks)
	}
}

func TestMerge_ExcludedDocumentsContributeNothing(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 2), nil)
	draft := writeDoc(t, dir, "EK-A_DRAFT.pdf", numberedPages("draft", 7), outline.Forest{{Title: "Draft", Page: 1}})
	final := writeDoc(t, dir, "ek-b.pdf", numberedPages("B", 3), outline.Forest{{Title: "Final", Page: 2}})
	out := filepath.Join(dir, "out.pdf")

	res, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{draft, final},
		Output:     out,
		Options: MergeOptions{
			ExcludePatterns:               []string{"*_draft*"},
			PreserveBookmarks:             true,
			BookmarkPerAdditionalDocument: true,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(res.Excluded, []string{draft}) {
		t.Errorf("expected %v excluded, got %v", []string{draft}, res.Excluded)
	}

	got := readDoc(t, out)
	if len(got.Pages) != 5 {
		t.Errorf("expected 5 pages, got %d", len(got.Pages))
	}
	want := outline.Forest{{Title: "ek-b", Page: 3}, {Title: "Final", Page: 4}}
	if !forestEqual(got.Outline, want) {
		t.Errorf("expected outline %v, got %v", want, got.Outline)
	}
}

func TestMerge_MissingRequiredSectionWritesNothing(t *testing.T) {
	a, b := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 2), outline.Forest{{Title: "EK-B", Page: 1}})
	other := writeDoc(t, dir, "other.pdf", []string{"nothing relevant"}, nil)
	out := filepath.Join(dir, "out.pdf")

	_, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{other},
		Output:     out,
		Options:    MergeOptions{RequiredSections: []string{"EK-A", "EK-B", "EK-C"}},
	})
	if !errors.Is(err, ErrMissingRequiredSection) {
		t.Fatalf("expected ErrMissingRequiredSection, got %v", err)
	}
	var missing *MissingSectionsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingSectionsError, got %T", err)
	}
	if !slices.Equal(missing.Names, []string{"EK-A", "EK-C"}) {
		t.Errorf("expected [EK-A EK-C] missing, got %v", missing.Names)
	}
	if b.created != 0 {
		t.Errorf("expected no output to be created, got %d", b.created)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
}

func TestMerge_RequiredSectionFoundInText(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 2), nil)
	annex := writeDoc(t, dir, "annex.pdf", []string{"intro", "Appendix ek-a: calculations"}, nil)
	out := filepath.Join(dir, "out.pdf")

	_, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{annex},
		Output:     out,
		Options:    MergeOptions{RequiredSections: []string{"EK-A"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMerge_RequiredSectionIgnoresExcludedDocuments(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 1), nil)
	old := writeDoc(t, dir, "old-ek-a.pdf", []string{"EK-A"}, nil)

	_, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{old},
		Output:     filepath.Join(dir, "out.pdf"),
		Options: MergeOptions{
			ExcludePatterns:  []string{"old-*"},
			RequiredSections: []string{"EK-A"},
		},
	})
	if !errors.Is(err, ErrMissingRequiredSection) {
		t.Errorf("expected ErrMissingRequiredSection, got %v", err)
	}
}

func TestMerge_InPlaceMatchesDistinctOutput(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	forest := outline.Forest{{Title: "Intro", Page: 2}}
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 3), forest)
	extra := writeDoc(t, dir, "extra.pdf", numberedPages("extra", 2), nil)
	opts := MergeOptions{PreserveBookmarks: true, BookmarkPerAdditionalDocument: true}

	distinct := filepath.Join(dir, "distinct.pdf")
	if _, err := a.Merge(context.Background(), MergeRequest{
		Main: main, Additional: []string{extra}, Output: distinct, Options: opts,
	}); err != nil {
		t.Fatalf("distinct merge: %v", err)
	}

	if _, err := a.Merge(context.Background(), MergeRequest{
		Main: main, Additional: []string{extra}, Output: main, Options: opts,
	}); err != nil {
		t.Fatalf("in-place merge: %v", err)
	}

	want := readDoc(t, distinct)
	got := readDoc(t, main)
	if !slices.Equal(got.Pages, want.Pages) {
		t.Errorf("in-place pages %q differ from %q", got.Pages, want.Pages)
	}
	if !forestEqual(got.Outline, want.Outline) {
		t.Errorf("in-place outline %v differs from %v", got.Outline, want.Outline)
	}
	assertEmptyDir(t, a.TempDir)
}

func TestMerge_CopyFailureCleansUp(t *testing.T) {
	a, b := newTestAssembler(t)
	b.failCopy = "broken.pdf"
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 2), nil)
	broken := writeDoc(t, dir, "broken.pdf", numberedPages("broken", 2), nil)

	_, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{broken},
		Output:     main,
	})
	if !errors.Is(err, ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	assertEmptyDir(t, a.TempDir)

	// The main document is untouched.
	if got := readDoc(t, main); len(got.Pages) != 2 {
		t.Errorf("expected main to keep 2 pages, got %d", len(got.Pages))
	}
}

func TestMerge_MissingAdditionalDocumentPolicy(t *testing.T) {
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 2), nil)
	extra := writeDoc(t, dir, "extra.pdf", numberedPages("extra", 1), nil)
	gone := filepath.Join(dir, "gone.pdf")

	t.Run("strict", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		_, err := a.Merge(context.Background(), MergeRequest{
			Main:       main,
			Additional: []string{gone, extra},
			Output:     filepath.Join(dir, "strict.pdf"),
		})
		if !errors.Is(err, ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		res, err := a.Merge(context.Background(), MergeRequest{
			Main:       main,
			Additional: []string{gone, extra},
			Output:     filepath.Join(dir, "lenient.pdf"),
			Options:    MergeOptions{MissingDocuments: MissingLenient, BookmarkPerAdditionalDocument: true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(res.Skipped, []string{gone}) {
			t.Errorf("expected %v skipped, got %v", []string{gone}, res.Skipped)
		}
		got := readDoc(t, res.Output)
		want := outline.Forest{{Title: "extra", Page: 3}}
		if !forestEqual(got.Outline, want) {
			t.Errorf("expected outline %v, got %v", want, got.Outline)
		}
	})

	t.Run("missing main is always fatal", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		_, err := a.Merge(context.Background(), MergeRequest{
			Main:    gone,
			Output:  filepath.Join(dir, "main-missing.pdf"),
			Options: MergeOptions{MissingDocuments: MissingLenient},
		})
		if !errors.Is(err, ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
	})
}

func TestMerge_ZeroPageAndDuplicateNames(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	sub1 := filepath.Join(dir, "one")
	sub2 := filepath.Join(dir, "two")
	for _, d := range []string{sub1, sub2} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 1), nil)
	empty := writeDoc(t, dir, "empty.pdf", nil, outline.Forest{{Title: "Ghost", Page: 1}})
	calc1 := writeDoc(t, sub1, "calc.pdf", numberedPages("c1", 2), nil)
	calc2 := writeDoc(t, sub2, "calc.pdf", numberedPages("c2", 1), nil)
	out := filepath.Join(dir, "out.pdf")

	res, err := a.Merge(context.Background(), MergeRequest{
		Main:       main,
		Additional: []string{empty, calc1, calc2},
		Output:     out,
		Options:    MergeOptions{PreserveBookmarks: true, BookmarkPerAdditionalDocument: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PageCount != 4 {
		t.Errorf("expected 4 pages, got %d", res.PageCount)
	}
	want := outline.Forest{{Title: "calc", Page: 2}, {Title: "calc", Page: 4}}
	if got := readDoc(t, out); !forestEqual(got.Outline, want) {
		t.Errorf("expected outline %v, got %v", want, got.Outline)
	}
}

func TestMerge_RoundTripWithExtract(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	src := writeDoc(t, dir, "src.pdf", numberedPages("src", 8), nil)
	part := filepath.Join(dir, "part.pdf")
	merged := filepath.Join(dir, "merged.pdf")

	if _, err := a.Extract(context.Background(), ExtractionRequest{
		Source: src,
		Output: part,
		Start:  PageRangeSpec{Selection: SpecificPage, Page: 3},
		End:    PageRangeSpec{Selection: SpecificPage, Page: 5},
	}); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, err := a.Merge(context.Background(), MergeRequest{Main: part, Output: merged}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got := readDoc(t, merged)
	want := numberedPages("src", 8)[2:5]
	if !slices.Equal(got.Pages, want) {
		t.Errorf("expected %q, got %q", want, got.Pages)
	}
}

func TestMerge_CancelledBeforeCopy(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", numberedPages("main", 1), nil)
	out := filepath.Join(dir, "out.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Merge(ctx, MergeRequest{Main: main, Output: out})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
}

func TestFilterExcluded(t *testing.T) {
	paths := []string{"/in/Main.pdf", "/in/EK-A.PDF", "/in/notes_DRAFT.pdf", "/in/ek-b.pdf"}

	kept, excluded, err := FilterExcluded(paths, []string{"*draft*", "ek-a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(kept, []string{"/in/Main.pdf", "/in/ek-b.pdf"}) {
		t.Errorf("unexpected kept %v", kept)
	}
	if !slices.Equal(excluded, []string{"/in/EK-A.PDF", "/in/notes_DRAFT.pdf"}) {
		t.Errorf("unexpected excluded %v", excluded)
	}
	if len(paths) != 4 || paths[1] != "/in/EK-A.PDF" {
		t.Errorf("input slice was modified: %v", paths)
	}

	if _, _, err := FilterExcluded(paths, []string{"[unclosed"}); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection for bad pattern, got %v", err)
	}
}

func forestEqual(a, b outline.Forest) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Page != b[i].Page {
			return false
		}
		if !forestEqual(a[i].Children, b[i].Children) {
			return false
		}
	}
	return true
}

func TestMerge_ReportsPhases(t *testing.T) {
	a, _ := newTestAssembler(t)
	dir := t.TempDir()
	main := writeDoc(t, dir, "main.pdf", []string{"EK-A inside"}, nil)

	var phases []Phase
	ctx := WithPhaseFunc(context.Background(), func(p Phase) { phases = append(phases, p) })
	_, err := a.Merge(ctx, MergeRequest{
		Main:    main,
		Output:  filepath.Join(dir, "out.pdf"),
		Options: MergeOptions{RequiredSections: []string{"EK-A"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Phase{PhaseResolving, PhaseValidating, PhaseAssembling}
	if !slices.Equal(phases, want) {
		t.Errorf("expected phases %v, got %v", want, phases)
	}
}
