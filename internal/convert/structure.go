package convert

import (
	"github.com/0mao0/minerpick/internal/model"
)

// Section is a heading of the converted document with the headings nested
// below it.
type Section struct {
	Title    string    `json:"title"`
	Level    int       `json:"level"`
	MDIndex  int       `json:"md_index"`
	Page     *int      `json:"page_idx,omitempty"`
	Children []Section `json:"children,omitempty"`
}

type sectionNode struct {
	section  Section
	children []*sectionNode
}

// BuildOutline nests the heading items of a content list by level. A heading
// becomes the child of the closest preceding heading with a lower level.
func BuildOutline(items []model.ContentItem) []Section {
	var roots, stack []*sectionNode

	for _, it := range items {
		if it.Type != model.ContentText || it.TextLevel < 1 {
			continue
		}

		n := &sectionNode{section: Section{
			Title:   it.Text,
			Level:   it.TextLevel,
			MDIndex: it.MDIndex,
			Page:    it.Page,
		}}

		// trim stack to the parent level
		for len(stack) > 0 && stack[len(stack)-1].section.Level >= n.section.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		}

		stack = append(stack, n)
	}

	return attachChildren(roots)
}

func attachChildren(nodes []*sectionNode) []Section {
	out := make([]Section, 0, len(nodes))

	for _, n := range nodes {
		s := n.section
		if len(n.children) > 0 {
			s.Children = attachChildren(n.children)
		}
		out = append(out, s)
	}

	return out
}
