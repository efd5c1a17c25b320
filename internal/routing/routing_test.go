package routing_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/ecmproute/internal/routing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

type ids = []spf.NodeID

func link(g spf.Graph, a, b spf.NodeID, cost int64) {
	g[a] = append(g[a], spf.Edge{To: b, Cost: cost})
	g[b] = append(g[b], spf.Edge{To: a, Cost: cost})
}

func lineGraph() spf.Graph {
	g := spf.Graph{}
	link(g, 0, 1, 1)
	link(g, 1, 2, 1)
	return g
}

func diamond() spf.Graph {
	g := spf.Graph{}
	link(g, 0, 1, 1)
	link(g, 0, 2, 1)
	link(g, 1, 3, 1)
	link(g, 2, 3, 1)
	return g
}

func houseGraph() spf.Graph {
	g := spf.Graph{}
	link(g, 0, 1, 1)
	link(g, 0, 2, 10)
	link(g, 1, 2, 1)
	link(g, 1, 3, 1)
	link(g, 1, 4, 10)
	link(g, 2, 4, 1)
	link(g, 2, 5, 1)
	link(g, 3, 5, 1)
	return g
}

func mustCompute(t *testing.T, g spf.Graph, start spf.NodeID) *spf.Predecessors {
	t.Helper()
	p, err := spf.Compute(g, start)
	require.NoError(t, err)
	return p
}

func TestFirstHops_Line(t *testing.T) {
	p := mustCompute(t, lineGraph(), 0)
	assert.Equal(t, ids{1}, routing.FirstHops(p, 0, 2))
	assert.Equal(t, ids{1}, routing.FirstHops(p, 0, 1))
}

func TestFirstHops_Self(t *testing.T) {
	g := houseGraph()
	for _, s := range g.Nodes() {
		p := mustCompute(t, g, s)
		assert.Equal(t, ids{s}, routing.FirstHops(p, s, s))
	}
}

func TestFirstHops_ParallelPaths(t *testing.T) {
	p := mustCompute(t, diamond(), 0)
	assert.Equal(t, ids{1, 2}, routing.FirstHops(p, 0, 3))
}

func TestFirstHops_Unreachable(t *testing.T) {
	g := lineGraph()
	g[5] = nil
	p := mustCompute(t, g, 0)
	assert.Empty(t, routing.FirstHops(p, 0, 5))
}

func TestFirstHops_House(t *testing.T) {
	g := houseGraph()
	cases := []struct {
		src, dst spf.NodeID
		want     ids
	}{
		{0, 5, ids{1}},
		{1, 5, ids{2, 3}},
		{5, 1, ids{2, 3}},
		{5, 0, ids{2, 3}},
		{4, 3, ids{2}},
		{3, 2, ids{1, 5}},
		{2, 0, ids{1}},
	}
	for _, tc := range cases {
		p := mustCompute(t, g, tc.src)
		assert.Equal(t, tc.want, routing.FirstHops(p, tc.src, tc.dst), "%d→%d", tc.src, tc.dst)
	}
}

func TestFirstHops_ExplicitDAG(t *testing.T) {
	// Two branches that merge again before the destination.
	p := spf.NewPredecessors(0, map[spf.NodeID][]spf.NodeID{
		0: {0}, 1: {0}, 2: {0}, 3: {1, 2}, 4: {3}, 5: {4, 3},
	})
	assert.Equal(t, ids{1, 2}, routing.FirstHops(p, 0, 5))
}

// neighbourHops is the reference definition: neighbours n of s for which
// w(s,n) + dist(n,d) == dist(s,d).
func neighbourHops(t *testing.T, g spf.Graph, s, d spf.NodeID) ids {
	fromS := mustCompute(t, g, s)
	total, ok := fromS.Cost(d)
	if !ok {
		return ids{}
	}
	best := map[spf.NodeID]int64{}
	for _, e := range g[s] {
		if c, ok := best[e.To]; !ok || e.Cost < c {
			best[e.To] = e.Cost
		}
	}
	out := ids{}
	for _, n := range g.Nodes() {
		w, ok := best[n]
		if !ok {
			continue
		}
		rest, ok := mustCompute(t, g, n).Cost(d)
		if ok && w+rest == total {
			out = append(out, n)
		}
	}
	return out
}

func TestFirstHops_MatchesNeighbourDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 15; round++ {
		n := 3 + rng.Intn(8)
		g := spf.Graph{}
		for i := 0; i < n; i++ {
			g[spf.NodeID(i)] = nil
		}
		for i := 1; i < n; i++ {
			link(g, spf.NodeID(i), spf.NodeID(rng.Intn(i)), int64(1+rng.Intn(2)))
		}
		for k := 0; k < n; k++ {
			a, b := rng.Intn(n), rng.Intn(n)
			if a != b {
				link(g, spf.NodeID(a), spf.NodeID(b), int64(1+rng.Intn(2)))
			}
		}
		for _, s := range g.Nodes() {
			p := mustCompute(t, g, s)
			for _, d := range g.Nodes() {
				if s == d {
					continue
				}
				want := neighbourHops(t, g, s, d)
				got := routing.FirstHops(p, s, d)
				if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("round %d %d→%d (-want +got):\n%s", round, s, d, diff)
				}
			}
		}
	}
}

func TestChildrenOf_Diamond(t *testing.T) {
	p := mustCompute(t, diamond(), 0)
	assert.Equal(t, ids{1, 2}, routing.ChildrenOf(p, 0))
	assert.Equal(t, ids{3}, routing.ChildrenOf(p, 1))
	assert.Equal(t, ids{3}, routing.ChildrenOf(p, 2))
	assert.Empty(t, routing.ChildrenOf(p, 3))
}

func TestFanout_MatchesChildrenOf(t *testing.T) {
	g := houseGraph()
	for _, s := range g.Nodes() {
		p := mustCompute(t, g, s)
		fan := routing.Fanout(p)
		for _, n := range g.Nodes() {
			want := routing.ChildrenOf(p, n)
			if diff := cmp.Diff(want, fan[n], cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("source %d node %d (-scan +fanout):\n%s", s, n, diff)
			}
		}
		_, rootSelf := fan[s]
		if rootSelf {
			assert.NotContains(t, fan[s], s, "root must not be its own child")
		}
	}
}

func TestParsePolicy(t *testing.T) {
	pol, err := routing.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, routing.PolicyLowest, pol)

	pol, err = routing.ParsePolicy(" ALL ")
	require.NoError(t, err)
	assert.Equal(t, routing.PolicyAll, pol)

	_, err = routing.ParsePolicy("random")
	assert.Error(t, err)
}

func TestPolicy_Select(t *testing.T) {
	assert.Equal(t, ids{2}, routing.PolicyLowest.Select(ids{2, 5}))
	assert.Equal(t, ids{2, 5}, routing.PolicyAll.Select(ids{2, 5}))
	assert.Nil(t, routing.PolicyAll.Select(nil))
}

func TestRoutes(t *testing.T) {
	g := diamond()
	g[9] = nil
	p := mustCompute(t, g, 0)

	got := routing.Routes(p, g.Nodes(), routing.PolicyLowest)
	want := []routing.Route{
		{Destination: 1, Cost: 1, NextHops: ids{1}, Candidates: ids{1}, Reachable: true},
		{Destination: 2, Cost: 1, NextHops: ids{2}, Candidates: ids{2}, Reachable: true},
		{Destination: 3, Cost: 2, NextHops: ids{1}, Candidates: ids{1, 2}, Reachable: true},
		{Destination: 9},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[2].ECMP())
	assert.False(t, got[0].ECMP())
}

func TestTree_Diamond(t *testing.T) {
	p := mustCompute(t, diamond(), 0)
	tree := routing.Tree(p)

	want := &routing.DistributionTree{
		Source: 0,
		Branches: []routing.Branch{
			{Node: 0, Upstream: 0, Children: ids{1, 2}},
			{Node: 1, Upstream: 0, Parents: ids{0}, Children: ids{3}},
			{Node: 2, Upstream: 0, Parents: ids{0}, Children: ids{3}},
			{Node: 3, Upstream: 1, Parents: ids{1, 2}},
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ids{3}, tree.Leaves())

	b, ok := tree.Branch(2)
	require.True(t, ok)
	assert.Equal(t, ids{3}, b.Children)
	_, ok = tree.Branch(7)
	assert.False(t, ok)
}
