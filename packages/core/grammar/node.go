package grammar

import (
	"fmt"
	"strings"
)

// Node is one matched rule in a parse tree. Start and End are byte offsets
// into the parsed input; Text is input[Start:End].
type Node struct {
	Rule     Rule
	Start    int
	End      int
	Text     string
	Children []*Node
}

// Flatten returns every descendant of n in pre-order. n itself is not
// included.
func (n *Node) Flatten() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		for _, child := range node.Children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(n)
	return out
}

// Find returns the first descendant matching rule, or nil.
func (n *Node) Find(rule Rule) *Node {
	for _, node := range n.Flatten() {
		if node.Rule == rule {
			return node
		}
	}
	return nil
}

// Child returns the first direct child matching rule, or nil.
func (n *Node) Child(rule Rule) *Node {
	for _, child := range n.Children {
		if child.Rule == rule {
			return child
		}
	}
	return nil
}

func (n *Node) String() string {
	if len(n.Children) == 0 {
		return fmt.Sprintf("%s(%q)", n.Rule, n.Text)
	}
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = child.String()
	}
	return fmt.Sprintf("%s[%s]", n.Rule, strings.Join(parts, ", "))
}
