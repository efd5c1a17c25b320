// Package topology loads router topologies and multicast group
// declarations from line-oriented text files.
package topology

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

var (
	// ErrUnknownNode is returned when a name does not match any topology node.
	ErrUnknownNode = errors.New("topology: unknown node")
	// ErrSelfLoop is returned for a link whose two ends are the same node.
	ErrSelfLoop = errors.New("topology: link connects a node to itself")
)

// Neighbor is one interface of a node. Its index in Node.Neighbors is the
// interface number.
type Neighbor struct {
	ID   spf.NodeID `json:"id"`
	Cost int64      `json:"cost"`
}

// Node is a router of the topology.
type Node struct {
	ID        spf.NodeID `json:"id"`
	Name      string     `json:"name"`
	Neighbors []Neighbor `json:"neighbors"`
}

// Link is one undirected link, with the interface index it occupies on
// each end.
type Link struct {
	A    spf.NodeID `json:"a"`
	B    spf.NodeID `json:"b"`
	ItfA int        `json:"itf_a"`
	ItfB int        `json:"itf_b"`
	Cost int64      `json:"cost"`
}

// Topology is an undirected weighted router graph with dense ids assigned
// in first-seen order. It is immutable once loaded.
type Topology struct {
	nodes  []Node
	links  []Link
	byName map[string]spf.NodeID
}

// New returns an empty topology to be filled with AddLink.
func New() *Topology {
	return &Topology{byName: make(map[string]spf.NodeID)}
}

// AddLink connects nodes a and b, creating them on first sight. Both ends
// get a new interface even when the pair is already connected.
func (t *Topology) AddLink(a, b string, cost int64) error {
	if a == b {
		return fmt.Errorf("%w: %s", ErrSelfLoop, a)
	}
	if cost < 1 || cost > spf.MaxCost {
		return fmt.Errorf("%w: %s-%s cost=%d", spf.ErrInvalidCost, a, b, cost)
	}
	ia, ib := t.intern(a), t.intern(b)
	l := Link{
		A:    ia,
		B:    ib,
		ItfA: len(t.nodes[ia].Neighbors),
		ItfB: len(t.nodes[ib].Neighbors),
		Cost: cost,
	}
	t.nodes[ia].Neighbors = append(t.nodes[ia].Neighbors, Neighbor{ID: ib, Cost: cost})
	t.nodes[ib].Neighbors = append(t.nodes[ib].Neighbors, Neighbor{ID: ia, Cost: cost})
	t.links = append(t.links, l)
	return nil
}

func (t *Topology) intern(name string) spf.NodeID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := spf.NodeID(len(t.nodes))
	t.byName[name] = id
	t.nodes = append(t.nodes, Node{ID: id, Name: name})
	return id
}

// Len returns the number of nodes.
func (t *Topology) Len() int { return len(t.nodes) }

// IDs returns every node id in ascending order.
func (t *Topology) IDs() []spf.NodeID {
	out := make([]spf.NodeID, len(t.nodes))
	for i := range t.nodes {
		out[i] = spf.NodeID(i)
	}
	return out
}

// Nodes returns the nodes ordered by id. The result must not be modified.
func (t *Topology) Nodes() []Node { return t.nodes }

// Links returns the links in file order. The result must not be modified.
func (t *Topology) Links() []Link { return t.links }

// Node returns the node with the given id.
func (t *Topology) Node(id spf.NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// ID resolves a node name.
func (t *Topology) ID(name string) (spf.NodeID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Lookup resolves a node name or returns ErrUnknownNode.
func (t *Topology) Lookup(name string) (spf.NodeID, error) {
	id, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return id, nil
}

// Name returns the name of id, or its decimal form when id is unknown.
func (t *Topology) Name(id spf.NodeID) string {
	if n, ok := t.Node(id); ok {
		return n.Name
	}
	return fmt.Sprintf("%d", id)
}

// Interface returns the interface of id that forwards toward neighbor: the
// cheapest of the parallel links to it, the lowest index on a tie.
func (t *Topology) Interface(id, neighbor spf.NodeID) (int, bool) {
	n, ok := t.Node(id)
	if !ok {
		return 0, false
	}
	best, found := 0, false
	for i, nb := range n.Neighbors {
		if nb.ID != neighbor {
			continue
		}
		if !found || nb.Cost < n.Neighbors[best].Cost {
			best, found = i, true
		}
	}
	return best, found
}

// Graph returns a fresh adjacency structure for the shortest-path engine.
func (t *Topology) Graph() spf.Graph {
	g := make(spf.Graph, len(t.nodes))
	for _, n := range t.nodes {
		edges := make([]spf.Edge, len(n.Neighbors))
		for i, nb := range n.Neighbors {
			edges[i] = spf.Edge{To: nb.ID, Cost: nb.Cost}
		}
		g[n.ID] = edges
	}
	return g
}
