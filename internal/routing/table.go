package routing

import (
	"sort"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// Route is the unicast forwarding decision of one source toward one destination.
// NextHops is the policy's selection out of Candidates, the full
// equal-cost first-hop set.
type Route struct {
	Destination spf.NodeID   `json:"destination"`
	Cost        int64        `json:"cost"`
	NextHops    []spf.NodeID `json:"next_hops"`
	Candidates  []spf.NodeID `json:"candidates"`
	Reachable   bool         `json:"reachable"`
}

// ECMP reports whether more than one first hop reaches the destination.
func (r Route) ECMP() bool { return len(r.Candidates) > 1 }

// Routes builds the unicast table of p's root toward every node of
// destinations, skipping the root itself. Unreachable destinations are kept
// with Reachable=false and no next hops.
func Routes(p *spf.Predecessors, destinations []spf.NodeID, pol Policy) []Route {
	source := p.Root()
	out := make([]Route, 0, len(destinations))
	for _, dst := range destinations {
		if dst == source {
			continue
		}
		r := Route{Destination: dst}
		if p.Reachable(dst) {
			r.Candidates = FirstHops(p, source, dst)
			r.NextHops = pol.Select(r.Candidates)
			r.Reachable = len(r.Candidates) > 0
			r.Cost, _ = p.Cost(dst)
		}
		out = append(out, r)
	}
	return out
}

// Branch is one node of a multicast distribution tree.
type Branch struct {
	Node spf.NodeID `json:"node"`
	// Upstream is the lowest predecessor, the neighbour a replicated packet
	// is expected from. The root is its own upstream.
	Upstream spf.NodeID `json:"upstream"`
	// Parents lists every equal-cost predecessor.
	Parents  []spf.NodeID `json:"parents"`
	Children []spf.NodeID `json:"children"`
}

// Leaf reports whether the branch replicates to nobody.
func (b Branch) Leaf() bool { return len(b.Children) == 0 }

// DistributionTree is the source-rooted fan-out structure of one multicast source.
type DistributionTree struct {
	Source   spf.NodeID `json:"source"`
	Branches []Branch   `json:"branches"` // ascending by node
}

// Tree derives the distribution tree of p's root, covering every reachable node.
func Tree(p *spf.Predecessors) *DistributionTree {
	fan := Fanout(p)
	t := &DistributionTree{Source: p.Root()}
	for _, n := range p.Nodes() {
		parents := p.Of(n)
		sortIDs(parents)
		b := Branch{Node: n, Parents: parents, Children: fan[n]}
		if len(parents) > 0 {
			b.Upstream = parents[0]
		}
		if n == t.Source {
			b.Upstream = n
			b.Parents = nil
		}
		t.Branches = append(t.Branches, b)
	}
	return t
}

// Branch returns the branch of node n.
func (t *DistributionTree) Branch(n spf.NodeID) (Branch, bool) {
	i := sort.Search(len(t.Branches), func(i int) bool { return t.Branches[i].Node >= n })
	if i < len(t.Branches) && t.Branches[i].Node == n {
		return t.Branches[i], true
	}
	return Branch{}, false
}

// Leaves returns the nodes with an empty fan-out set.
func (t *DistributionTree) Leaves() []spf.NodeID {
	var out []spf.NodeID
	for _, b := range t.Branches {
		if b.Leaf() {
			out = append(out, b.Node)
		}
	}
	return out
}
