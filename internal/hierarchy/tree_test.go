package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stagedChain stages a root with the given number of direct children
func stagedChain(children int) []*Node {
	staged := []*Node{{Name: "0", Parent: NoNode, Active: true}}
	for i := 0; i < children; i++ {
		staged = append(staged, &Node{Name: "0-" + string(rune('0'+i)), Parent: 0, Active: true})
	}
	return staged
}

func TestTreeAttach(t *testing.T) {
	tree := NewTree()

	root, err := tree.attach(NoNode, stagedChain(2))
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, []NodeID{root}, tree.Roots())

	n, ok := tree.Get(root)
	require.True(t, ok)
	assert.Equal(t, "0", n.Path)
	assert.Len(t, n.Children, 2)

	childID, ok := tree.Lookup("0-1")
	require.True(t, ok)
	child, _ := tree.Get(childID)
	assert.Equal(t, root, child.Parent)
	assert.Equal(t, 1, child.Depth)

	assert.False(t, tree.IsExpanded(childID))
	nested, err := tree.attach(childID, stagedChain(1))
	require.NoError(t, err)
	assert.True(t, tree.IsExpanded(childID))

	nestedRoot, _ := tree.Get(nested)
	assert.Equal(t, "0-1/0", nestedRoot.Path)
	assert.Equal(t, 2, nestedRoot.Depth)
	_, ok = tree.Lookup("0-1/0-0")
	assert.True(t, ok)

	_, err = tree.attach(childID, stagedChain(0))
	assert.ErrorIs(t, err, ErrAlreadyExpanded)

	_, err = tree.attach(NodeID(999), stagedChain(0))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestTreeRemove(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(3))
	require.NoError(t, err)

	childID, _ := tree.Lookup("0-0")
	_, err = tree.attach(childID, stagedChain(2))
	require.NoError(t, err)
	assert.Equal(t, 7, tree.Len())

	assert.Equal(t, 4, tree.Remove(childID))
	assert.Equal(t, 3, tree.Len())
	_, ok := tree.Lookup("0-0/0-1")
	assert.False(t, ok)

	n, _ := tree.Get(root)
	assert.Len(t, n.Children, 2)

	assert.Equal(t, 0, tree.Remove(childID))
	assert.Equal(t, 3, tree.Remove(root))
	assert.Empty(t, tree.Roots())
}

func TestTreeSetActiveAndLoadState(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(2))
	require.NoError(t, err)

	assert.Equal(t, 3, tree.SetActive(root, false))
	assert.Equal(t, 0, tree.SetActive(root, false))

	visited := 0
	tree.Walk(root, func(n Node) bool {
		assert.False(t, n.Active)
		visited++
		return true
	})
	assert.Equal(t, 3, visited)

	assert.True(t, tree.CompareAndSetLoadState(root, LoadStateNone, LoadStateQueued))
	assert.False(t, tree.CompareAndSetLoadState(root, LoadStateNone, LoadStateQueued))
	assert.True(t, tree.SetLoadState(root, LoadStateLoaded))

	n, _ := tree.Get(root)
	assert.Equal(t, LoadStateLoaded, n.LoadState)
	assert.False(t, tree.SetLoadState(NodeID(42), LoadStateLoaded))
}

func TestTreeGetReturnsSnapshot(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(1))
	require.NoError(t, err)
	tree.SetCopyright(root, []string{"A"})

	n, _ := tree.Get(root)
	n.Children[0] = NodeID(77)
	n.Copyright[0] = "B"

	again, _ := tree.Get(root)
	assert.NotEqual(t, NodeID(77), again.Children[0])
	assert.Equal(t, []string{"A"}, again.Copyright)
}
