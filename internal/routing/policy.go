package routing

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// Policy decides which of several equal-cost first hops get installed.
type Policy string

const (
	// PolicyAll installs every equal-cost first hop (full ECMP).
	PolicyAll Policy = "all"
	// PolicyLowest installs only the lowest node id, which is stable
	// across runs regardless of discovery order.
	PolicyLowest Policy = "lowest"
)

// ParsePolicy maps a config or flag value to a Policy. Empty means PolicyLowest.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyLowest:
		return PolicyLowest, nil
	case PolicyAll:
		return PolicyAll, nil
	default:
		return "", fmt.Errorf("unknown ecmp policy %q (want %q or %q)", s, PolicyAll, PolicyLowest)
	}
}

// Select applies the policy to a sorted first-hop set.
func (pol Policy) Select(hops []spf.NodeID) []spf.NodeID {
	if len(hops) == 0 {
		return nil
	}
	if pol == PolicyAll {
		return append([]spf.NodeID(nil), hops...)
	}
	return []spf.NodeID{hops[0]}
}
