package soak

import (
	"fmt"
	"math/rand"
)

// Node is the soak-test graph vertex. All fields are exported so the
// reflection copier sees the whole graph.
type Node struct {
	ID       int
	Label    string
	Attrs    map[string]int
	Children []*Node
	Back     *Node
}

// sharedLabel marks the subtree referenced from multiple parents.
const sharedLabel = "shared"

// buildGraph builds a small random graph: a root with 2-5 children, a
// subtree shared between some of them, occasional back-edges to the root,
// and sometimes a self-referential root.
func buildGraph(rng *rand.Rand, id int) *Node {
	root := &Node{
		ID:    id,
		Label: fmt.Sprintf("graph-%d", id),
		Attrs: map[string]int{"depth": 0},
	}
	shared := &Node{
		ID:    id*1000 + 999,
		Label: sharedLabel,
		Attrs: map[string]int{"depth": 2},
	}
	n := 2 + rng.Intn(4)
	for i := 0; i < n; i++ {
		child := &Node{
			ID:    id*1000 + i,
			Label: fmt.Sprintf("graph-%d-child-%d", id, i),
			Attrs: map[string]int{"depth": 1},
		}
		if rng.Intn(2) == 0 {
			child.Children = append(child.Children, shared)
		}
		if rng.Intn(4) == 0 {
			child.Back = root
		}
		root.Children = append(root.Children, child)
	}
	if rng.Intn(2) == 0 {
		root.Back = root
	}
	return root
}

// sharedNodes collects every reference to the shared subtree reachable
// from root's grandchildren.
func sharedNodes(root *Node) []*Node {
	var out []*Node
	for _, child := range root.Children {
		for _, gc := range child.Children {
			if gc.Label == sharedLabel {
				out = append(out, gc)
			}
		}
	}
	return out
}
