package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gyaneshwarpardhi/ecmproute/internal/addressing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/config"
	"github.com/gyaneshwarpardhi/ecmproute/internal/mininet"
	"github.com/gyaneshwarpardhi/ecmproute/internal/topology"
)

// LoadInputs reads the topology file and, when configured, the multicast
// groups file named by cfg.
func LoadInputs(cfg *config.Config) (*topology.Topology, []topology.Group, error) {
	topo, err := topology.Load(cfg.Topology)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Multicast == "" {
		return topo, nil, nil
	}
	groups, err := topology.LoadGroups(cfg.Multicast, topo)
	if err != nil {
		return nil, nil, err
	}
	return topo, groups, nil
}

// Reload recomputes everything from the files named by cfg and swaps the
// result in. The previous snapshot stays current when any step fails.
// With an output directory configured, the Mininet files are rewritten too.
func (e *Engine) Reload(ctx context.Context, cfg *config.Config) (*Snapshot, error) {
	topo, groups, err := LoadInputs(cfg)
	if err != nil {
		return nil, err
	}
	s, err := e.Build(ctx, topo, groups)
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir != "" {
		fam := addressing.IPv6
		if cfg.IPv4 {
			fam = addressing.IPv4
		}
		files, err := s.Emit(cfg.OutputDir, Prefix(cfg.Topology), fam)
		if err != nil {
			return nil, err
		}
		slog.Info("mininet files written", "dir", cfg.OutputDir, "files", len(files))
	}
	e.Swap(s)
	slog.Info("routing snapshot swapped in",
		"id", s.ID,
		"nodes", topo.Len(),
		"groups", len(groups),
		"duration", s.Duration,
	)
	return s, nil
}

// Emit allocates an address plan of the given family and writes the
// snapshot's Mininet files under dir.
func (s *Snapshot) Emit(dir, prefix string, fam addressing.Family) ([]string, error) {
	plan, err := addressing.New(s.Topology, fam)
	if err != nil {
		return nil, fmt.Errorf("address plan: %w", err)
	}
	return mininet.Emit(dir, prefix, mininet.Input{
		Topology: s.Topology,
		Plan:     plan,
		Routes:   s.Routes,
		Groups:   s.Groups,
	})
}

// Prefix derives the output file prefix from a topology path:
// "topos/house.ntf" gives "house".
func Prefix(topoPath string) string {
	base := filepath.Base(topoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
