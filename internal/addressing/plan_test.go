package addressing_test

import (
	"fmt"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/ecmproute/internal/addressing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/topology"
)

func triangle(t *testing.T) *topology.Topology {
	t.Helper()
	topo, err := topology.Parse(strings.NewReader("a b 1\nb c 1\nc a 5\n"))
	require.NoError(t, err)
	return topo
}

func TestNew_IPv4(t *testing.T) {
	plan, err := addressing.New(triangle(t), addressing.IPv4)
	require.NoError(t, err)

	assert.Equal(t, "11.0.0.1/32", plan.Loopback(0).String())
	assert.Equal(t, "11.0.2.1/32", plan.Loopback(2).String())
	assert.Equal(t, 32, plan.HostPrefixLen())

	// link 0 is a-b, link 1 b-c, link 2 c-a.
	a0, ok := plan.Interface(0, 0)
	require.True(t, ok)
	assert.Equal(t, "11.1.0.1/30", a0.String())
	b0, _ := plan.Interface(1, 0)
	assert.Equal(t, "11.1.0.2/30", b0.String())
	c1, _ := plan.Interface(2, 1)
	assert.Equal(t, "11.1.0.9/30", c1.String())
	a1, _ := plan.Interface(0, 1)
	assert.Equal(t, "11.1.0.10/30", a1.String())

	gw, ok := plan.Gateway(0, 1)
	require.True(t, ok)
	assert.Equal(t, "11.1.0.9", gw.String())

	_, ok = plan.Interface(0, 5)
	assert.False(t, ok)
	_, ok = plan.Gateway(9, 0)
	assert.False(t, ok)
}

func TestNew_IPv6(t *testing.T) {
	plan, err := addressing.New(triangle(t), addressing.IPv6)
	require.NoError(t, err)

	assert.Equal(t, netip.MustParsePrefix("babe:cafe:1::1/64"), plan.Loopback(1))
	assert.Equal(t, 64, plan.HostPrefixLen())
	assert.Equal(t, "ipv6", plan.Family().String())

	ifs := plan.Interfaces(1)
	require.Len(t, ifs, 2)
	assert.Equal(t, netip.MustParsePrefix("babe:cafe:dead::2/64"), ifs[0])
	assert.Equal(t, netip.MustParsePrefix("babe:cafe:dead:1::1/64"), ifs[1])
}

func TestNew_SubnetsDoNotOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "n%d n%d 1\n", i%40, (i%40+1+i/40)%40)
	}
	topo, err := topology.Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	plan, err := addressing.New(topo, addressing.IPv4)
	require.NoError(t, err)

	seen := map[netip.Addr]bool{}
	for _, id := range topo.IDs() {
		for _, p := range plan.Interfaces(id) {
			require.True(t, p.IsValid())
			require.False(t, seen[p.Addr()], "duplicate address %s", p)
			seen[p.Addr()] = true
		}
	}
	assert.Len(t, seen, 600)
}

func TestNew_LoopbackPoolExhausted(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "hub n%d 1\n", i)
	}
	topo, err := topology.Parse(strings.NewReader(b.String()))
	require.NoError(t, err)

	_, err = addressing.New(topo, addressing.IPv4)
	assert.ErrorIs(t, err, addressing.ErrPoolExhausted)

	_, err = addressing.New(topo, addressing.IPv6)
	assert.NoError(t, err)
}
