package topology

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// ErrNotMulticast is returned for a group address outside the multicast range.
var ErrNotMulticast = errors.New("topology: not a multicast address")

// Group is a multicast group sourced at one router.
type Group struct {
	Source     spf.NodeID `json:"source"`
	SourceName string     `json:"source_name"`
	Address    netip.Addr `json:"address"`
}

// LoadGroups reads a multicast declaration file with one
//
//	<sourceNode> <groupAddress>
//
// entry per line. Source names are resolved against t.
func LoadGroups(path string, t *Topology) ([]Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open multicast groups %s: %w", path, err)
	}
	defer f.Close()
	return parseGroups(f, path, t)
}

// ParseGroups reads multicast declarations from r.
func ParseGroups(r io.Reader, t *Topology) ([]Group, error) {
	return parseGroups(r, "", t)
}

func parseGroups(r io.Reader, name string, t *Topology) ([]Group, error) {
	var groups []Group
	err := scanLines(r, name, func(fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("want \"<node> <group>\", got %d fields", len(fields))
		}
		id, err := t.Lookup(fields[0])
		if err != nil {
			return err
		}
		addr, err := netip.ParseAddr(fields[1])
		if err != nil {
			return fmt.Errorf("group address: %w", err)
		}
		if !addr.IsMulticast() {
			return fmt.Errorf("%w: %s", ErrNotMulticast, addr)
		}
		groups = append(groups, Group{Source: id, SourceName: fields[0], Address: addr})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}
