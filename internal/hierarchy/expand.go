package hierarchy

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/golang/glog"
)

var ErrBudgetExceeded = errors.New("hierarchy: expansion budget exceeded")

type ExpandResult struct {
	Visited   int
	Expanded  int
	Failed    int
	Remaining int

	BudgetExceeded bool
	DepthLimited   bool

	// Warning is ErrBudgetExceeded when the node budget cut the traversal short. The tree built so
	// far is still valid.
	Warning error
}

// ExpandSubtrees walks the subtree under start and loads every nested manifest that has not been
// attached yet. maxDepth bounds the manifest nesting below start and maxNodes bounds the number of
// visited nodes across the whole walk; zero or less means unbounded. A manifest that fails to load
// is logged and its branch abandoned. Only cancellation is returned as an error.
func (l *SubtreeLoader) ExpandSubtrees(ctx context.Context, start NodeID, maxDepth, maxNodes int) (ExpandResult, error) {
	if maxDepth <= 0 {
		maxDepth = math.MaxInt
	}
	if maxNodes <= 0 {
		maxNodes = math.MaxInt
	}

	baseLevel := 0
	if n, ok := l.tree.Get(start); ok {
		baseLevel = nestingLevel(n.Path)
	}

	var result ExpandResult
	remaining, err := l.expand(ctx, start, baseLevel, maxDepth, maxNodes, &result)
	result.Remaining = remaining
	if result.BudgetExceeded {
		result.Warning = ErrBudgetExceeded
		glog.Warningf("nested expansion stopped after %d nodes: %v", result.Visited, ErrBudgetExceeded)
	}
	return result, err
}

func (l *SubtreeLoader) expand(ctx context.Context, id NodeID, baseLevel, maxDepth, budget int, result *ExpandResult) (int, error) {
	if budget <= 0 {
		result.BudgetExceeded = true
		return budget, nil
	}
	if err := ctx.Err(); err != nil {
		return budget, &LoadError{Kind: LoadErrorCancelled, Err: err}
	}

	n, ok := l.tree.Get(id)
	if !ok || !n.Active {
		return budget, nil
	}
	budget--
	result.Visited++

	if n.HasManifestContent() && !l.tree.IsExpanded(id) {
		if nestingLevel(n.Path)-baseLevel >= maxDepth {
			result.DepthLimited = true
			return budget, nil
		}

		if _, err := l.Load(ctx, id, n.Tile.Content.URL, false); err != nil {
			if IsCancelled(err) {
				return budget, err
			}
			glog.Warningf("abandoning branch %s: %v", n.Path, err)
			result.Failed++
			return budget, nil
		}
		result.Expanded++

		if n, ok = l.tree.Get(id); !ok {
			return budget, nil
		}
	}

	for _, child := range n.Children {
		if budget <= 0 {
			result.BudgetExceeded = true
			break
		}
		var err error
		if budget, err = l.expand(ctx, child, baseLevel, maxDepth, budget, result); err != nil {
			return budget, err
		}
	}
	return budget, nil
}

func nestingLevel(path string) int {
	return strings.Count(path, "/")
}
