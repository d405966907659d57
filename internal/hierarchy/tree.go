package hierarchy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/geometry"
)

var (
	ErrUnknownNode     = errors.New("hierarchy: unknown node")
	ErrAlreadyExpanded = errors.New("hierarchy: node already expanded")
)

// Tree is an arena of nodes addressed by NodeID. Removed slots are never reused.
type Tree struct {
	mu     sync.RWMutex
	nodes  []*Node
	byPath map[string]NodeID
	roots  []NodeID
}

func NewTree() *Tree {
	return &Tree{byPath: make(map[string]NodeID)}
}

func (t *Tree) Get(id NodeID) (Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.node(id)
	if n == nil {
		return Node{}, false
	}
	return n.clone(), true
}

// Lookup finds a node by its path
func (t *Tree) Lookup(path string) (NodeID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byPath[path]
	return id, ok
}

// Len returns the number of live nodes
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byPath)
}

func (t *Tree) Roots() []NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]NodeID(nil), t.roots...)
}

// IsExpanded reports whether the nested manifest referenced by the node is already attached
func (t *Tree) IsExpanded(id NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.node(id)
	if n == nil {
		return false
	}
	if n.Expanded {
		return true
	}
	_, ok := t.byPath[nestedPath(n.Path, "0")]
	return ok
}

// Walk visits the subtree in pre-order. Returning false from fn skips the children of that node.
// fn runs without the tree lock held and may mutate the tree.
func (t *Tree) Walk(start NodeID, fn func(n Node) bool) {
	n, ok := t.Get(start)
	if !ok {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		t.Walk(child, fn)
	}
}

// attach publishes staged nodes in one step. staged[0] is the subtree root and every Parent
// field indexes into staged, with NoNode on the root meaning the attach parent.
func (t *Tree) attach(parent NodeID, staged []*Node) (NodeID, error) {
	if len(staged) == 0 {
		return NoNode, fmt.Errorf("hierarchy: empty subtree")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var parentNode *Node
	if parent != NoNode {
		if parentNode = t.node(parent); parentNode == nil {
			return NoNode, fmt.Errorf("%w: %d", ErrUnknownNode, parent)
		}
		if parentNode.Expanded {
			return NoNode, fmt.Errorf("%w: %s", ErrAlreadyExpanded, parentNode.Path)
		}
	}

	base := NodeID(len(t.nodes))
	for i, n := range staged {
		n.ID = base + NodeID(i)
		n.Children = nil

		if i == 0 {
			n.Parent = parent
			if parentNode != nil {
				n.Path = nestedPath(parentNode.Path, n.Name)
				n.Depth = parentNode.Depth + 1
			} else {
				n.Path = n.Name
			}
		} else {
			p := staged[n.Parent]
			n.Parent = p.ID
			n.Path = p.Path[:len(p.Path)-len(p.Name)] + n.Name
			n.Depth = p.Depth + 1
			p.Children = append(p.Children, n.ID)
		}
	}

	for _, n := range staged {
		t.nodes = append(t.nodes, n)
		t.byPath[n.Path] = n.ID
	}

	if parentNode != nil {
		parentNode.Children = append(parentNode.Children, base)
		parentNode.Expanded = true
	} else {
		t.roots = append(t.roots, base)
	}

	return base, nil
}

// Remove deletes the node and its subtree and returns the number of nodes removed
func (t *Tree) Remove(id NodeID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(id)
	if n == nil {
		return 0
	}

	if parent := t.node(n.Parent); parent != nil {
		parent.Children = removeID(parent.Children, id)
	} else {
		t.roots = removeID(t.roots, id)
	}
	return t.remove(n)
}

func (t *Tree) remove(n *Node) int {
	removed := 1
	for _, child := range n.Children {
		if c := t.node(child); c != nil {
			removed += t.remove(c)
		}
	}
	delete(t.byPath, n.Path)
	t.nodes[n.ID] = nil
	return removed
}

// SetActive flags the node and its subtree and returns the number of nodes changed
func (t *Tree) SetActive(id NodeID, active bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setActive(id, active)
}

func (t *Tree) setActive(id NodeID, active bool) int {
	n := t.node(id)
	if n == nil {
		return 0
	}
	changed := 0
	if n.Active != active {
		n.Active = active
		changed++
	}
	for _, child := range n.Children {
		changed += t.setActive(child, active)
	}
	return changed
}

// EnsureBoundingSphere returns the bounding sphere of the node, computing and storing it on first
// use. False means the node has no usable bounding volume.
func (t *Tree) EnsureBoundingSphere(id NodeID) (geometry.Sphere, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(id)
	if n == nil {
		return geometry.Sphere{}, false
	}
	if n.BoundingSphere != nil {
		return *n.BoundingSphere, true
	}
	if n.Tile == nil {
		return geometry.Sphere{}, false
	}

	sphere, ok := BoundingSphere(n.Tile.BoundingVolume)
	if !ok {
		return geometry.Sphere{}, false
	}
	n.BoundingSphere = &sphere
	return sphere, true
}

func (t *Tree) SetLoadState(id NodeID, state LoadState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(id)
	if n == nil {
		return false
	}
	n.LoadState = state
	return true
}

// CompareAndSetLoadState changes the state only when it currently equals from
func (t *Tree) CompareAndSetLoadState(id NodeID, from, to LoadState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(id)
	if n == nil || n.LoadState != from {
		return false
	}
	n.LoadState = to
	return true
}

func (t *Tree) SetCopyright(id NodeID, copyright []string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.node(id)
	if n == nil {
		return false
	}
	n.Copyright = append([]string(nil), copyright...)
	return true
}

// must hold t.mu
func (t *Tree) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func nestedPath(parentPath, name string) string {
	return parentPath + "/" + name
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
