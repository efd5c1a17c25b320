package api

import (
	"github.com/gyaneshwarpardhi/ecmproute/internal/engine"
	"github.com/gyaneshwarpardhi/ecmproute/internal/routing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// JSON shapes of the query endpoints. Nodes appear by name.

type interfaceView struct {
	Index    int    `json:"index"`
	Neighbor string `json:"neighbor"`
	Cost     int64  `json:"cost"`
}

type nodeView struct {
	ID         spf.NodeID      `json:"id"`
	Name       string          `json:"name"`
	Interfaces []interfaceView `json:"interfaces"`
}

type linkView struct {
	A    string `json:"a"`
	B    string `json:"b"`
	ItfA int    `json:"itf_a"`
	ItfB int    `json:"itf_b"`
	Cost int64  `json:"cost"`
}

type topologyView struct {
	Snapshot string     `json:"snapshot"`
	Nodes    []nodeView `json:"nodes"`
	Links    []linkView `json:"links"`
}

func newTopologyView(s *engine.Snapshot) topologyView {
	t := s.Topology
	v := topologyView{Snapshot: s.ID}
	for _, n := range t.Nodes() {
		nv := nodeView{ID: n.ID, Name: n.Name, Interfaces: make([]interfaceView, 0, len(n.Neighbors))}
		for i, nb := range n.Neighbors {
			nv.Interfaces = append(nv.Interfaces, interfaceView{Index: i, Neighbor: t.Name(nb.ID), Cost: nb.Cost})
		}
		v.Nodes = append(v.Nodes, nv)
	}
	for _, l := range t.Links() {
		v.Links = append(v.Links, linkView{A: t.Name(l.A), B: t.Name(l.B), ItfA: l.ItfA, ItfB: l.ItfB, Cost: l.Cost})
	}
	return v
}

type hopView struct {
	Node      string `json:"node"`
	Interface int    `json:"interface"`
}

type routeView struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Reachable   bool      `json:"reachable"`
	Cost        int64     `json:"cost,omitempty"`
	ECMP        bool      `json:"ecmp"`
	NextHops    []hopView `json:"next_hops"`
	Candidates  []string  `json:"candidates"`
}

func newRouteView(s *engine.Snapshot, src spf.NodeID, r routing.Route) routeView {
	t := s.Topology
	v := routeView{
		Source:      t.Name(src),
		Destination: t.Name(r.Destination),
		Reachable:   r.Reachable,
		Cost:        r.Cost,
		ECMP:        r.ECMP(),
		NextHops:    make([]hopView, 0, len(r.NextHops)),
		Candidates:  names(s, r.Candidates),
	}
	for _, hop := range r.NextHops {
		itf, _ := t.Interface(src, hop)
		v.NextHops = append(v.NextHops, hopView{Node: t.Name(hop), Interface: itf})
	}
	return v
}

type groupView struct {
	Source  string `json:"source"`
	Address string `json:"address"`
}

type branchView struct {
	Node     string   `json:"node"`
	Upstream string   `json:"upstream"`
	Parents  []string `json:"parents"`
	Children []string `json:"children"`
}

type treeView struct {
	Snapshot string       `json:"snapshot"`
	Source   string       `json:"source"`
	Branches []branchView `json:"branches"`
	Leaves   []string     `json:"leaves"`
}

func newTreeView(s *engine.Snapshot, tree *routing.DistributionTree) treeView {
	t := s.Topology
	v := treeView{Snapshot: s.ID, Source: t.Name(tree.Source), Leaves: names(s, tree.Leaves())}
	for _, b := range tree.Branches {
		v.Branches = append(v.Branches, branchView{
			Node:     t.Name(b.Node),
			Upstream: t.Name(b.Upstream),
			Parents:  names(s, b.Parents),
			Children: names(s, b.Children),
		})
	}
	return v
}

func names(s *engine.Snapshot, ids []spf.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Topology.Name(id))
	}
	return out
}
