package hierarchy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyrightCollect(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(4))
	require.NoError(t, err)

	ids := make([]NodeID, 4)
	for i := range ids {
		ids[i], _ = tree.Lookup("0-" + string(rune('0'+i)))
	}
	tree.SetCopyright(ids[0], []string{"Google", " Zenrin "})
	tree.SetCopyright(ids[1], []string{"Zenrin"})
	tree.SetCopyright(ids[2], []string{"Airbus", ""})
	tree.SetCopyright(ids[3], []string{"Hidden"})
	tree.SetActive(ids[3], false)

	collector := NewCopyrightCollector(tree)
	assert.Equal(t, "Zenrin, Airbus, Google", collector.Collect(root))
	assert.Equal(t, "", collector.Collect(NodeID(100)))
}

func TestCopyrightRunReportsChanges(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(1))
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		changes []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewCopyrightCollector(tree).Run(ctx, root, 5*time.Millisecond, func(text string) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, text)
		})
	}()

	tree.SetCopyright(root, []string{"A"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 1
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A"}, changes)
}
