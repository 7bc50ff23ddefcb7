package markdown

import "iter"

// OutlineNode is one heading in the document tree. The root returned by
// BuildOutline is synthetic (Level 0, no title) and holds the top-level headings.
type OutlineNode struct {
	Heading  Heading        `json:"heading"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// IsRoot reports whether n is the synthetic root.
func (n *OutlineNode) IsRoot() bool {
	return n.Heading.Level == 0
}

// OutlineEntry is a heading yielded by Flatten along with its nesting depth (0 for top-level).
type OutlineEntry struct {
	Heading Heading
	Depth   int
}

// BuildOutline nests headings by level. A heading becomes a child of the nearest
// preceding heading with a strictly smaller level; skipped levels are tolerated.
func BuildOutline(headings []Heading) *OutlineNode {
	root := &OutlineNode{}
	stack := []*OutlineNode{root}

	for _, h := range headings {
		for len(stack) > 1 && stack[len(stack)-1].Heading.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		node := &OutlineNode{Heading: h}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
	}
	return root
}

// OutlineOf is BuildOutline over every heading in content.
func OutlineOf(content string) *OutlineNode {
	return BuildOutline(ExtractHeadings(content))
}

// Flatten walks the tree in pre-order. The synthetic root is skipped.
// The sequence can be ranged over any number of times.
func (n *OutlineNode) Flatten() iter.Seq[OutlineEntry] {
	return func(yield func(OutlineEntry) bool) {
		startDepth := 0
		if !n.IsRoot() {
			if !yield(OutlineEntry{Heading: n.Heading, Depth: 0}) {
				return
			}
			startDepth = 1
		}
		walkOutline(n.Children, startDepth, yield)
	}
}

func walkOutline(nodes []*OutlineNode, depth int, yield func(OutlineEntry) bool) bool {
	for _, child := range nodes {
		if !yield(OutlineEntry{Heading: child.Heading, Depth: depth}) {
			return false
		}
		if !walkOutline(child.Children, depth+1, yield) {
			return false
		}
	}
	return true
}

// Headings returns the flattened headings as a slice.
func (n *OutlineNode) Headings() []Heading {
	var out []Heading
	for e := range n.Flatten() {
		out = append(out, e.Heading)
	}
	return out
}

// Count is the number of real headings in the tree.
func (n *OutlineNode) Count() int {
	count := 0
	for range n.Flatten() {
		count++
	}
	return count
}
