package pdfdoc

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/dgallion1/pdfassembly/internal/outline"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// writeOutline copies in to out with its document outline replaced by
// forest. Any outline the pages brought along from their sources is dropped
// first, so an empty forest yields a file without bookmarks.
//
// Items are written in the order given, with each target page taken as is.
// Siblings need not ascend and a child may point before its parent.
func writeOutline(in, out string, forest outline.Forest, conf *model.Configuration) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	root, err := ctx.Catalog()
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	delete(root, "Outlines")
	if mode, ok := root["PageMode"].(types.Name); ok && mode == "UseOutlines" {
		delete(root, "PageMode")
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("validate %s: %w", in, err)
	}

	if len(forest) > 0 {
		outlinesDict := types.Dict{"Type": types.Name("Outlines")}
		outlinesRef, err := ctx.IndRefForNewObject(outlinesDict)
		if err != nil {
			return err
		}
		first, last, count, err := addOutlineItems(ctx, forest, *outlinesRef)
		if err != nil {
			return err
		}
		outlinesDict["First"] = *first
		outlinesDict["Last"] = *last
		outlinesDict["Count"] = types.Integer(count)
		root["Outlines"] = *outlinesRef
		root["PageMode"] = types.Name("UseOutlines")
	}

	if err := api.WriteContextFile(ctx, out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// addOutlineItems creates one outline item per node under parent and
// returns the first and last item and the number of items written,
// descendants included.
func addOutlineItems(ctx *model.Context, nodes []outline.Node, parent types.IndirectRef) (*types.IndirectRef, *types.IndirectRef, int, error) {
	var (
		first, prev *types.IndirectRef
		prevDict    types.Dict
		count       int
	)
	for _, n := range nodes {
		_, pageRef, _, err := ctx.PageDict(n.Page, false)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("bookmark %q: page %d: %w", n.Title, n.Page, err)
		}
		if pageRef == nil {
			return nil, nil, 0, fmt.Errorf("bookmark %q: page %d not found", n.Title, n.Page)
		}

		d := types.Dict{
			"Title":  titleObject(n.Title),
			"Parent": parent,
			"Dest":   types.Array{*pageRef, types.Name("Fit")},
		}
		ref, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return nil, nil, 0, err
		}
		if first == nil {
			first = ref
		}
		if prevDict != nil {
			prevDict["Next"] = *ref
			d["Prev"] = *prev
		}
		count++

		if len(n.Children) > 0 {
			kidFirst, kidLast, kids, err := addOutlineItems(ctx, n.Children, *ref)
			if err != nil {
				return nil, nil, 0, err
			}
			d["First"] = *kidFirst
			d["Last"] = *kidLast
			d["Count"] = types.Integer(kids)
			count += kids
		}
		prev, prevDict = ref, d
	}
	return first, prev, count, nil
}

// titleObject encodes s as a PDF text string: a literal for plain ASCII,
// UTF-16BE with a byte order mark otherwise.
func titleObject(s string) types.Object {
	plain := true
	for _, r := range s {
		if r < 0x20 || r > 0x7e || r == '(' || r == ')' || r == '\\' {
			plain = false
			break
		}
	}
	if plain {
		return types.StringLiteral(s)
	}

	var sb strings.Builder
	sb.WriteString("FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&sb, "%04X", u)
	}
	return types.HexLiteral(sb.String())
}
