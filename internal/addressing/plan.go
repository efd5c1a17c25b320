// Package addressing allocates loopback and point-to-point link addresses
// for every router of a topology.
package addressing

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
	"github.com/gyaneshwarpardhi/ecmproute/internal/topology"
)

// ErrPoolExhausted is returned when a topology needs more addresses than a
// pool holds.
var ErrPoolExhausted = errors.New("addressing: address pool exhausted")

// Family selects the IP version of a plan.
type Family int

const (
	IPv6 Family = iota
	IPv4
)

func (f Family) String() string {
	if f == IPv4 {
		return "ipv4"
	}
	return "ipv6"
}

const (
	maxLoopbacksV4 = 256     // 11.0.<i>.1
	maxLinksV4     = 1 << 14 // /30 blocks in 11.1.0.0/16
	maxV6          = 1 << 16 // one 16-bit group per loopback or link
)

// Plan holds the addresses assigned to a topology.
type Plan struct {
	family    Family
	loopbacks []netip.Prefix
	// ifaces[node][itf] is the address of that interface with its link prefix.
	ifaces [][]netip.Prefix
	// peers[node][itf] is the address of the other end of that link.
	peers [][]netip.Addr
}

// New assigns addresses to every node and link of t. Loopbacks follow the
// node ids; links get consecutive subnets in file order.
func New(t *topology.Topology, family Family) (*Plan, error) {
	p := &Plan{
		family:    family,
		loopbacks: make([]netip.Prefix, t.Len()),
		ifaces:    make([][]netip.Prefix, t.Len()),
		peers:     make([][]netip.Addr, t.Len()),
	}
	for _, n := range t.Nodes() {
		lo, err := loopback(family, int(n.ID))
		if err != nil {
			return nil, fmt.Errorf("loopback of %s: %w", n.Name, err)
		}
		p.loopbacks[n.ID] = lo
		p.ifaces[n.ID] = make([]netip.Prefix, len(n.Neighbors))
		p.peers[n.ID] = make([]netip.Addr, len(n.Neighbors))
	}
	for k, l := range t.Links() {
		a, b, err := linkPair(family, k)
		if err != nil {
			return nil, fmt.Errorf("link %s-%s: %w", t.Name(l.A), t.Name(l.B), err)
		}
		p.ifaces[l.A][l.ItfA] = a
		p.ifaces[l.B][l.ItfB] = b
		p.peers[l.A][l.ItfA] = b.Addr()
		p.peers[l.B][l.ItfB] = a.Addr()
	}
	return p, nil
}

// Family returns the IP version of the plan.
func (p *Plan) Family() Family { return p.family }

// HostPrefixLen is the prefix length used for host routes and group
// addresses: 32 for IPv4, 64 for IPv6.
func (p *Plan) HostPrefixLen() int {
	if p.family == IPv4 {
		return 32
	}
	return 64
}

// Loopback returns the loopback prefix of node id.
func (p *Plan) Loopback(id spf.NodeID) netip.Prefix { return p.loopbacks[id] }

// Interfaces returns the link addresses of node id indexed by interface.
func (p *Plan) Interfaces(id spf.NodeID) []netip.Prefix { return p.ifaces[id] }

// Interface returns the address of interface itf of node id.
func (p *Plan) Interface(id spf.NodeID, itf int) (netip.Prefix, bool) {
	if int(id) >= len(p.ifaces) || itf < 0 || itf >= len(p.ifaces[id]) {
		return netip.Prefix{}, false
	}
	return p.ifaces[id][itf], true
}

// Gateway returns the address of the neighbour reached through interface
// itf of node id.
func (p *Plan) Gateway(id spf.NodeID, itf int) (netip.Addr, bool) {
	if int(id) >= len(p.peers) || itf < 0 || itf >= len(p.peers[id]) {
		return netip.Addr{}, false
	}
	return p.peers[id][itf], true
}

func loopback(f Family, i int) (netip.Prefix, error) {
	if f == IPv4 {
		if i >= maxLoopbacksV4 {
			return netip.Prefix{}, fmt.Errorf("%w: node %d exceeds %d ipv4 loopbacks", ErrPoolExhausted, i, maxLoopbacksV4)
		}
		return netip.PrefixFrom(netip.AddrFrom4([4]byte{11, 0, byte(i), 1}), 32), nil
	}
	if i >= maxV6 {
		return netip.Prefix{}, fmt.Errorf("%w: node %d exceeds %d ipv6 loopbacks", ErrPoolExhausted, i, maxV6)
	}
	// babe:cafe:<i>::1/64
	a := [16]byte{0xba, 0xbe, 0xca, 0xfe, byte(i >> 8), byte(i), 15: 1}
	return netip.PrefixFrom(netip.AddrFrom16(a), 64), nil
}

// linkPair returns the two interface addresses of the k-th link.
func linkPair(f Family, k int) (netip.Prefix, netip.Prefix, error) {
	if f == IPv4 {
		if k >= maxLinksV4 {
			return netip.Prefix{}, netip.Prefix{}, fmt.Errorf("%w: link %d exceeds %d ipv4 subnets", ErrPoolExhausted, k, maxLinksV4)
		}
		base := 4 * k
		hi, lo := byte(base>>8), byte(base)
		a := netip.AddrFrom4([4]byte{11, 1, hi, lo + 1})
		b := netip.AddrFrom4([4]byte{11, 1, hi, lo + 2})
		return netip.PrefixFrom(a, 30), netip.PrefixFrom(b, 30), nil
	}
	if k >= maxV6 {
		return netip.Prefix{}, netip.Prefix{}, fmt.Errorf("%w: link %d exceeds %d ipv6 subnets", ErrPoolExhausted, k, maxV6)
	}
	// babe:cafe:dead:<k>::1/64 and ::2/64
	a := [16]byte{0xba, 0xbe, 0xca, 0xfe, 0xde, 0xad, byte(k >> 8), byte(k), 15: 1}
	b := a
	b[15] = 2
	return netip.PrefixFrom(netip.AddrFrom16(a), 64), netip.PrefixFrom(netip.AddrFrom16(b), 64), nil
}
