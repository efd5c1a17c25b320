package spf

import (
	"fmt"
	"math"
	"sort"
)

// MaxCost bounds a single edge cost, so that path sums over any graph
// below 2^32 nodes stay within int64.
const MaxCost = math.MaxInt32

// NodeID is the dense index the topology loader assigns to a router.
type NodeID int

// Edge is one entry of a node's neighbour list.
type Edge struct {
	To   NodeID
	Cost int64
}

// Graph maps every node to its ordered neighbour list. The position of an
// edge in the list is the interface index of that link on the node.
// An undirected topology is represented with symmetric entries.
//
// A Graph must not be mutated while computations read it.
type Graph map[NodeID][]Edge

// Nodes returns every node of g in ascending order.
func (g Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, len(g))
	for n := range g {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether n is a node of g.
func (g Graph) Has(n NodeID) bool {
	_, ok := g[n]
	return ok
}

// EdgeCount returns the number of directed edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, edges := range g {
		n += len(edges)
	}
	return n
}

// Validate checks that every edge targets a known node and carries a
// cost in [1, MaxCost].
func (g Graph) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGraph
	}
	for _, from := range g.Nodes() {
		for i, e := range g[from] {
			if !g.Has(e.To) {
				return fmt.Errorf("%w: edge %d→%d (neighbour #%d)", ErrUnknownNode, from, e.To, i)
			}
			if e.Cost < 1 || e.Cost > MaxCost {
				return fmt.Errorf("%w: edge %d→%d cost=%d", ErrInvalidCost, from, e.To, e.Cost)
			}
		}
	}
	return nil
}
