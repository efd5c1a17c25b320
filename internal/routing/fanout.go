package routing

import "github.com/gyaneshwarpardhi/ecmproute/internal/spf"

// ChildrenOf returns every node whose predecessor list contains node, i.e.
// node's children in the DAG. The root's self-entry is not a child.
// It scans the whole multimap; use Fanout when every node is needed.
func ChildrenOf(p *spf.Predecessors, node spf.NodeID) []spf.NodeID {
	children := make(map[spf.NodeID]struct{})
	p.Range(func(n spf.NodeID, preds []spf.NodeID) {
		if n == node {
			return
		}
		for _, q := range preds {
			if q == node {
				children[n] = struct{}{}
				return
			}
		}
	})
	return sortedSet(children)
}

// Fanout inverts p in a single pass, mapping every node with at least one
// child to its sorted children. Nodes absent from the result are leaves.
func Fanout(p *spf.Predecessors) map[spf.NodeID][]spf.NodeID {
	out := make(map[spf.NodeID][]spf.NodeID)
	p.Range(func(n spf.NodeID, preds []spf.NodeID) {
		for _, q := range preds {
			if q != n {
				out[q] = append(out[q], n)
			}
		}
	})
	for _, children := range out {
		sortIDs(children)
	}
	return out
}
