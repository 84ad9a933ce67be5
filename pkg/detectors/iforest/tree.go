package iforest

import "math/rand"

// nodeKind tags the node variant stored in a tree's arena.
type nodeKind uint8

const (
	leafNode nodeKind = iota
	internalNode
)

// node is one tagged variant slot in a tree arena. Leaves carry only size;
// internal nodes carry the split and the arena indices of both children.
type node struct {
	kind      nodeKind
	feature   int32
	threshold float64
	left      int32
	right     int32
	size      int32
}

// tree is a single isolation tree. Nodes live in a flat arena with the root
// at index 0; the tree is immutable once grown.
type tree struct {
	nodes       []node
	heightLimit int
}

const noChild int32 = -1

// buildFrame is one pending partition during iterative growth.
type buildFrame struct {
	rows    [][]float64
	depth   int
	parent  int32
	isRight bool
}

// growTree builds an isolation tree over sample, splitting on uniformly
// random features and thresholds until a partition has at most one row or
// depth reaches heightLimit.
//
// When every row shares the same value on the chosen feature the threshold
// equals that value and all rows compare >= it: the left partition comes out
// empty and the split is a no-op that still consumes one depth unit. That is
// the algorithm as published and it must stay that way; short-circuiting the
// constant feature into a leaf changes scores.
//
// The arena is filled in the same order a left-first recursive build would
// visit nodes, so randomness is consumed identically to the recursive form.
func growTree(sample [][]float64, heightLimit int, rng *rand.Rand) *tree {
	t := &tree{heightLimit: heightLimit}

	stack := []buildFrame{{rows: sample, depth: 0, parent: noChild}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := int32(len(t.nodes))
		if frame.parent != noChild {
			if frame.isRight {
				t.nodes[frame.parent].right = idx
			} else {
				t.nodes[frame.parent].left = idx
			}
		}

		m := len(frame.rows)
		if frame.depth >= heightLimit || m <= 1 {
			t.nodes = append(t.nodes, node{kind: leafNode, size: int32(m)})
			continue
		}

		feature := rng.Intn(len(frame.rows[0]))
		lo, hi := frame.rows[0][feature], frame.rows[0][feature]
		for _, row := range frame.rows[1:] {
			if row[feature] < lo {
				lo = row[feature]
			}
			if row[feature] > hi {
				hi = row[feature]
			}
		}
		threshold := lo + (hi-lo)*rng.Float64()

		var left, right [][]float64
		for _, row := range frame.rows {
			if row[feature] < threshold {
				left = append(left, row)
			} else {
				right = append(right, row)
			}
		}

		t.nodes = append(t.nodes, node{
			kind:      internalNode,
			feature:   int32(feature),
			threshold: threshold,
			left:      noChild,
			right:     noChild,
		})

		// LIFO: push right first so the left partition is grown next,
		// matching recursive left-before-right order.
		stack = append(stack,
			buildFrame{rows: right, depth: frame.depth + 1, parent: idx, isRight: true},
			buildFrame{rows: left, depth: frame.depth + 1, parent: idx},
		)
	}

	return t
}

// pathLength walks row from the root to a leaf and returns the number of
// split decisions taken plus the reached leaf's stored size.
func (t *tree) pathLength(row []float64) (length, leafSize int) {
	idx := int32(0)
	for {
		n := &t.nodes[idx]
		switch n.kind {
		case leafNode:
			return length, int(n.size)
		case internalNode:
			if row[n.feature] >= n.threshold {
				idx = n.right
			} else {
				idx = n.left
			}
			length++
		default:
			panic("iforest: corrupt tree arena")
		}
	}
}
