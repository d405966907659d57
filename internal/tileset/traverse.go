package tileset

import "strconv"

// Traverse visits the tree depth first in pre-order. Each tile is named by the dash joined chain
// of manifest sibling indices leading to it, starting with "0" for the root.
func Traverse(root *Tile, onNodeFound func(tile *Tile, name string)) {
	if root == nil {
		return
	}
	traverse(root, "0", onNodeFound)
}

func traverse(tile *Tile, name string, onNodeFound func(tile *Tile, name string)) {
	onNodeFound(tile, name)
	for _, child := range tile.Children {
		traverse(child, ChildName(name, child.Index), onNodeFound)
	}
}

func ChildName(parent string, index int) string {
	return parent + "-" + strconv.Itoa(index)
}

// ParentName returns the name of the parent of a traversal name, or false for the root
func ParentName(name string) (string, bool) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '-' {
			return name[:i], true
		}
	}
	return "", false
}
