// Package mininet renders computed routes as the text files consumed by the
// Mininet bootstrap script: loopbacks, links, unicast paths and multicast
// paths. Nodes are referred to by their numeric id, which is also the
// Mininet host name.
package mininet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gyaneshwarpardhi/ecmproute/internal/addressing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/routing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
	"github.com/gyaneshwarpardhi/ecmproute/internal/topology"
)

// ErrFamilyMismatch is returned when a group address is not of the plan's IP version.
var ErrFamilyMismatch = errors.New("mininet: group address family does not match the address plan")

// GroupTree pairs a multicast group with the distribution tree of its source.
type GroupTree struct {
	Group topology.Group
	Tree  *routing.DistributionTree
}

// Input is everything needed to render the configuration of one topology.
type Input struct {
	Topology *topology.Topology
	Plan     *addressing.Plan
	// Routes holds the unicast table of every source.
	Routes map[spf.NodeID][]routing.Route
	Groups []GroupTree
}

// File names produced by Emit, relative to its directory.
func fileName(prefix, kind string) string {
	return fmt.Sprintf("%s-%s.txt", prefix, kind)
}

// Emit writes all files for in under dir and returns their paths. The
// multicast file is only written when groups are present.
func Emit(dir, prefix string, in Input) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	type job struct {
		kind  string
		write func(io.Writer, Input) error
	}
	jobs := []job{
		{"loopbacks", WriteLoopbacks},
		{"links", WriteLinks},
		{"paths", WritePaths},
	}
	if len(in.Groups) > 0 {
		jobs = append(jobs, job{"multicast-paths", WriteMulticast})
	}

	var written []string
	for _, j := range jobs {
		path := filepath.Join(dir, fileName(prefix, j.kind))
		if err := writeFile(path, in, j.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, in Input, fn func(io.Writer, Input) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw, in); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteLoopbacks writes "<id> <loopback>" per node.
func WriteLoopbacks(w io.Writer, in Input) error {
	for _, id := range in.Topology.IDs() {
		if _, err := fmt.Fprintf(w, "%d %s\n", id, in.Plan.Loopback(id)); err != nil {
			return err
		}
	}
	return nil
}

// WriteLinks writes "<id> <peer> <itf> <address> <peer loopback>" per
// interface of every node.
func WriteLinks(w io.Writer, in Input) error {
	for _, n := range in.Topology.Nodes() {
		for itf, nb := range n.Neighbors {
			addr, ok := in.Plan.Interface(n.ID, itf)
			if !ok {
				return fmt.Errorf("node %d interface %d has no address", n.ID, itf)
			}
			if _, err := fmt.Fprintf(w, "%d %d %d %s %s\n", n.ID, nb.ID, itf, addr, in.Plan.Loopback(nb.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePaths writes "<id> <itf> <gateway> <destination>" static routes.
// Every reachable destination gets a route to its loopback and to each of
// its link addresses, except the links shared with the source, once per
// selected next hop.
func WritePaths(w io.Writer, in Input) error {
	hostLen := in.Plan.HostPrefixLen()
	for _, src := range sortedSources(in.Routes) {
		for _, r := range in.Routes[src] {
			if !r.Reachable {
				continue
			}
			dst, ok := in.Topology.Node(r.Destination)
			if !ok {
				return fmt.Errorf("route %d→%d: %w", src, r.Destination, topology.ErrUnknownNode)
			}
			for _, hop := range r.NextHops {
				itf, ok := in.Topology.Interface(src, hop)
				if !ok {
					return fmt.Errorf("route %d→%d: next hop %d is not a neighbour", src, r.Destination, hop)
				}
				gw, _ := in.Plan.Gateway(src, itf)
				if _, err := fmt.Fprintf(w, "%d %d %s %s\n", src, itf, gw, in.Plan.Loopback(dst.ID)); err != nil {
					return err
				}
				for dstItf, nb := range dst.Neighbors {
					if nb.ID == src {
						continue
					}
					addr, _ := in.Plan.Interface(dst.ID, dstItf)
					if _, err := fmt.Fprintf(w, "%d %d %s %s/%d\n", src, itf, gw, addr.Addr(), hostLen); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// WriteMulticast writes "<id> <in itf> <group> <out itf>..." for every
// router that replicates traffic of a group, i.e. every non-source node
// with children in the group's tree.
func WriteMulticast(w io.Writer, in Input) error {
	hostLen := in.Plan.HostPrefixLen()
	for _, gt := range in.Groups {
		if gt.Group.Address.Is4() != (in.Plan.Family() == addressing.IPv4) {
			return fmt.Errorf("%w: %s with %s plan", ErrFamilyMismatch, gt.Group.Address, in.Plan.Family())
		}
		for _, b := range gt.Tree.Branches {
			if b.Node == gt.Tree.Source || b.Leaf() {
				continue
			}
			inItf, ok := in.Topology.Interface(b.Node, b.Upstream)
			if !ok {
				return fmt.Errorf("group %s: node %d has no interface toward %d", gt.Group.Address, b.Node, b.Upstream)
			}
			outs := make([]string, 0, len(b.Children))
			for _, c := range b.Children {
				itf, ok := in.Topology.Interface(b.Node, c)
				if !ok {
					return fmt.Errorf("group %s: node %d has no interface toward %d", gt.Group.Address, b.Node, c)
				}
				outs = append(outs, strconv.Itoa(itf))
			}
			if _, err := fmt.Fprintf(w, "%d %d %s/%d %s\n", b.Node, inItf, gt.Group.Address, hostLen, strings.Join(outs, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedSources(routes map[spf.NodeID][]routing.Route) []spf.NodeID {
	out := make([]spf.NodeID, 0, len(routes))
	for s := range routes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
