package logfile

import (
	"strings"

	"github.com/datalog-visualizer/backend/internal/models"
)

// EntryTree partitions the channel namespace into a tree and applies an
// optional case-insensitive substring filter. The first split of each name
// is on ':', every deeper split on '/'; names with no delimiter at the
// current level become leaves of the current node. A node or leaf that
// matches the filter force-includes its whole subtree; nodes left with no
// surviving leaves or children are pruned. The root label is never tested.
// Returns nil when nothing survives.
//
// Pure function of the immutable registry: safe to call concurrently and
// repeatedly (e.g. once per filter keystroke).
func (lf *LogFile) EntryTree(filter string) *models.TreeNode {
	items := make([]namedEntry, 0, len(lf.entries))
	for _, e := range lf.entries {
		items = append(items, namedEntry{name: e.Name, entry: e})
	}

	root := buildNode("", items, ":")
	return filterNode(root, strings.ToLower(filter), false, true)
}

// namedEntry pairs a registry entry with the not-yet-consumed remainder of
// its name at the current tree depth.
type namedEntry struct {
	name  string
	entry *models.Entry
}

func buildNode(label string, items []namedEntry, sep string) *models.TreeNode {
	node := models.NewTreeNode(label)
	groups := make(map[string][]namedEntry)

	for _, item := range items {
		name := strings.TrimLeft(item.name, "/")
		idx := strings.Index(name, sep)
		if idx < 0 {
			node.Entries[name] = item.entry
			continue
		}
		prefix, rest := name[:idx], name[idx+1:]
		groups[prefix] = append(groups[prefix], namedEntry{name: rest, entry: item.entry})
	}

	for prefix, sub := range groups {
		node.Children[prefix] = buildNode(prefix, sub, "/")
	}

	return node
}

// filterNode prunes a built tree against the lowercased filter. force is
// sticky downward: once a node label (or an ancestor's) matches, every
// descendant survives unconditionally.
func filterNode(node *models.TreeNode, filter string, force, isRoot bool) *models.TreeNode {
	if !isRoot {
		force = force || strings.Contains(strings.ToLower(node.Label), filter)
	}

	out := models.NewTreeNode(node.Label)
	for name, entry := range node.Entries {
		if force || strings.Contains(strings.ToLower(name), filter) {
			out.Entries[name] = entry
		}
	}
	for label, child := range node.Children {
		if kept := filterNode(child, filter, force, false); kept != nil {
			out.Children[label] = kept
		}
	}

	if len(out.Entries) == 0 && len(out.Children) == 0 {
		return nil
	}
	return out
}
