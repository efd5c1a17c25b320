package spf

import "sort"

// Predecessors is the shortest-path DAG rooted at one start node. For every
// reachable node it lists, in discovery order, the immediate predecessors
// that lie on some shortest path from the root. A node with several
// predecessors is reached over equal-cost paths.
//
// The root lists itself as its only predecessor. Unreachable nodes have no
// entry. A Predecessors value is never modified after Compute returns it.
type Predecessors struct {
	root    NodeID
	parents map[NodeID][]NodeID
	cost    map[NodeID]int64
}

// NewPredecessors wraps an explicit multimap rooted at root. The map is
// copied; costs are unknown for DAGs built this way.
func NewPredecessors(root NodeID, parents map[NodeID][]NodeID) *Predecessors {
	p := &Predecessors{
		root:    root,
		parents: make(map[NodeID][]NodeID, len(parents)),
	}
	for n, ps := range parents {
		p.parents[n] = append([]NodeID(nil), ps...)
	}
	return p
}

// Root returns the start node the DAG was computed from.
func (p *Predecessors) Root() NodeID { return p.root }

// Len returns the number of reachable nodes, the root included.
func (p *Predecessors) Len() int { return len(p.parents) }

// Reachable reports whether n has an entry.
func (p *Predecessors) Reachable(n NodeID) bool {
	_, ok := p.parents[n]
	return ok
}

// Of returns a copy of n's predecessor list, nil when n is unreachable.
func (p *Predecessors) Of(n NodeID) []NodeID {
	ps, ok := p.parents[n]
	if !ok {
		return nil
	}
	return append([]NodeID(nil), ps...)
}

// Cost returns the shortest-path cost from the root to n.
// The second result is false when n is unreachable or the DAG was built
// without costs.
func (p *Predecessors) Cost(n NodeID) (int64, bool) {
	if p.cost == nil {
		return 0, false
	}
	c, ok := p.cost[n]
	return c, ok
}

// Nodes returns the reachable nodes in ascending order.
func (p *Predecessors) Nodes() []NodeID {
	out := make([]NodeID, 0, len(p.parents))
	for n := range p.parents {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map returns a deep copy of the multimap.
func (p *Predecessors) Map() map[NodeID][]NodeID {
	out := make(map[NodeID][]NodeID, len(p.parents))
	for n, ps := range p.parents {
		out[n] = append([]NodeID(nil), ps...)
	}
	return out
}

// Range calls fn for every reachable node and its predecessor list in
// unspecified order. The slice is shared with p and must not be modified.
func (p *Predecessors) Range(fn func(n NodeID, preds []NodeID)) {
	for n, ps := range p.parents {
		fn(n, ps)
	}
}

// appendParent records from as a predecessor of n unless it is already
// listed (parallel links of equal cost).
func (p *Predecessors) appendParent(n, from NodeID) bool {
	for _, q := range p.parents[n] {
		if q == from {
			return false
		}
	}
	p.parents[n] = append(p.parents[n], from)
	return true
}
