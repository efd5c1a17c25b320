package spf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

func TestNewPredecessors_CopiesInput(t *testing.T) {
	src := map[spf.NodeID][]spf.NodeID{0: {0}, 1: {0}, 2: {1}}
	p := spf.NewPredecessors(0, src)
	src[2][0] = 9
	delete(src, 1)

	assert.Equal(t, []spf.NodeID{1}, p.Of(2))
	assert.True(t, p.Reachable(1))
	_, ok := p.Cost(1)
	assert.False(t, ok, "explicit DAGs carry no costs")
}

func TestPredecessors_AccessorsDoNotAlias(t *testing.T) {
	p := spf.NewPredecessors(0, map[spf.NodeID][]spf.NodeID{0: {0}, 3: {1, 2}})
	got := p.Of(3)
	got[0] = 7
	m := p.Map()
	m[3][1] = 7
	assert.Equal(t, []spf.NodeID{1, 2}, p.Of(3))

	seen := map[spf.NodeID]int{}
	p.Range(func(n spf.NodeID, preds []spf.NodeID) { seen[n] = len(preds) })
	assert.Equal(t, map[spf.NodeID]int{0: 1, 3: 2}, seen)
}

func TestGraph_Helpers(t *testing.T) {
	g := spf.Graph{
		2: {{To: 0, Cost: 1}},
		0: {{To: 2, Cost: 1}, {To: 1, Cost: 4}},
		1: {{To: 0, Cost: 4}},
	}
	assert.Equal(t, []spf.NodeID{0, 1, 2}, g.Nodes())
	assert.Equal(t, 4, g.EdgeCount())
	assert.True(t, g.Has(1))
	assert.False(t, g.Has(3))
	assert.NoError(t, g.Validate())
}
