package outline

import (
	"fmt"
	"strings"
)

// Node is one bookmark in a document outline.
type Node struct {
	Title    string `json:"title"`
	Page     int    `json:"page"` // 1-based target page
	Children []Node `json:"children,omitempty"`
}

// Forest is an ordered list of top-level outline nodes.
type Forest []Node

// Shift returns a copy of the forest with every target page moved by offset.
// The receiver is not modified.
func (f Forest) Shift(offset int) Forest {
	if len(f) == 0 {
		return nil
	}
	out := make(Forest, len(f))
	for i, n := range f {
		out[i] = n.Shift(offset)
	}
	return out
}

// Shift returns a deep copy of the node and its subtree moved by offset.
func (n Node) Shift(offset int) Node {
	return Node{
		Title:    n.Title,
		Page:     n.Page + offset,
		Children: Forest(n.Children).Shift(offset),
	}
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn stops the walk.
func (f Forest) Walk(fn func(n Node, depth int) bool) {
	var walk func(nodes []Node, depth int) bool
	walk = func(nodes []Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(f, 0)
}

// Count returns the total number of nodes in the forest.
func (f Forest) Count() int {
	total := 0
	f.Walk(func(Node, int) bool {
		total++
		return true
	})
	return total
}

// Titles flattens the forest into its titles in walk order.
func (f Forest) Titles() []string {
	var titles []string
	f.Walk(func(n Node, _ int) bool {
		titles = append(titles, n.Title)
		return true
	})
	return titles
}

// Format renders the forest as an indented list, one node per line.
func (f Forest) Format() string {
	var sb strings.Builder
	f.Walk(func(n Node, depth int) bool {
		fmt.Fprintf(&sb, "%s%s (p. %d)\n", strings.Repeat("  ", depth), n.Title, n.Page)
		return true
	})
	return sb.String()
}
