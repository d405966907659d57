package hierarchy

import (
	"context"
	"sort"
	"strings"
	"time"
)

// CopyrightCollector aggregates the attribution strings of active nodes
type CopyrightCollector struct {
	tree *Tree
}

func NewCopyrightCollector(tree *Tree) *CopyrightCollector {
	return &CopyrightCollector{tree: tree}
}

// Collect returns the attributions found under root, the most frequent first, joined by ", "
func (c *CopyrightCollector) Collect(root NodeID) string {
	counts := make(map[string]int)
	c.tree.Walk(root, func(n Node) bool {
		if !n.Active {
			return false
		}
		for _, s := range n.Copyright {
			if s = strings.TrimSpace(s); s != "" {
				counts[s]++
			}
		}
		return true
	})

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	return strings.Join(names, ", ")
}

// Run recomputes the attribution every interval and calls onChange when the text differs from the
// previous one. Returns when ctx is done.
func (c *CopyrightCollector) Run(ctx context.Context, root NodeID, interval time.Duration, onChange func(text string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		if text := c.Collect(root); text != last {
			last = text
			onChange(text)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
