package models

// TreeNode is one path segment of the channel namespace. Nodes are derived
// data, rebuilt fresh on every query from the immutable entry registry; they
// hold no back-references and impose no ordering on children.
type TreeNode struct {
	Label    string               `json:"label"`
	Entries  map[string]*Entry    `json:"entries,omitempty"`
	Children map[string]*TreeNode `json:"children,omitempty"`
}

// NewTreeNode creates an empty node for the given segment label.
func NewTreeNode(label string) *TreeNode {
	return &TreeNode{
		Label:    label,
		Entries:  make(map[string]*Entry),
		Children: make(map[string]*TreeNode),
	}
}
