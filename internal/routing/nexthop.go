// Package routing turns a shortest-path DAG into forwarding decisions:
// unicast first hops per destination and multicast fan-out sets per node.
//
// All sets are returned as ascending, duplicate-free slices.
package routing

import (
	"sort"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// FirstHops returns the neighbours of source that begin some shortest path
// to destination in p, which must be rooted at source. A node routes to
// itself over the zero-hop path, so FirstHops(p, s, s) is {s}. An empty
// result means destination is unreachable.
func FirstHops(p *spf.Predecessors, source, destination spf.NodeID) []spf.NodeID {
	if source == destination {
		return []spf.NodeID{source}
	}

	hops := make(map[spf.NodeID]struct{})
	visited := make(map[spf.NodeID]struct{})
	stack := []spf.NodeID{destination}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}

		for _, pred := range p.Of(n) {
			if pred == source {
				// n is adjacent to source on this branch.
				hops[n] = struct{}{}
				continue
			}
			if _, ok := visited[pred]; !ok {
				stack = append(stack, pred)
			}
		}
	}
	return sortedSet(hops)
}

func sortedSet(s map[spf.NodeID]struct{}) []spf.NodeID {
	out := make([]spf.NodeID, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []spf.NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
