// Command mnconfig computes ECMP routes and multicast trees for a topology
// file and writes the Mininet configuration files in one shot.
//
//	mnconfig <topology.ntf> -d <dir> [-ipv4] [-m groups.txt] [-ecmp all|lowest] [-workers n] [-v]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gyaneshwarpardhi/ecmproute/internal/addressing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/config"
	"github.com/gyaneshwarpardhi/ecmproute/internal/engine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("mnconfig failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("mnconfig", flag.ContinueOnError)
	dir := fs.String("d", "", "Directory receiving the output files (required)")
	ipv4 := fs.Bool("ipv4", false, "Use IPv4 instead of IPv6")
	groups := fs.String("m", "", "Multicast groups file, one \"<source> <group>\" per line")
	ecmp := fs.String("ecmp", "lowest", "ECMP policy: all or lowest")
	workers := fs.Int("workers", 0, "Concurrent shortest-path jobs (default 8)")
	timeout := fs.Duration("timeout", 30*time.Second, "Deadline for the whole computation")
	verbose := fs.Bool("v", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: mnconfig <topology> -d <dir> [flags]\n")
		fs.PrintDefaults()
	}

	// The topology path may come before or after the flags.
	var topo string
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		topo, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if topo == "" && fs.NArg() > 0 {
		topo = fs.Arg(0)
	}
	if topo == "" || *dir == "" {
		fs.Usage()
		return errors.New("a topology file and -d are required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := &config.Config{
		Version:   "cli",
		Topology:  topo,
		Multicast: *groups,
		OutputDir: *dir,
		IPv4:      *ipv4,
		Engine: config.EngineConf{
			Workers:    *workers,
			TimeoutMs:  int(timeout.Milliseconds()),
			ECMPPolicy: *ecmp,
		},
	}
	cfg.ApplyDefaults()
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng, err := engine.New(ctx, cfg.Engine)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	tp, grps, err := engine.LoadInputs(cfg)
	if err != nil {
		return err
	}
	slog.Debug("topology loaded", "file", topo, "nodes", tp.Len(), "links", len(tp.Links()), "groups", len(grps))

	s, err := eng.Build(ctx, tp, grps)
	if err != nil {
		return err
	}
	fam := addressing.IPv6
	if cfg.IPv4 {
		fam = addressing.IPv4
	}
	files, err := s.Emit(cfg.OutputDir, engine.Prefix(topo), fam)
	if err != nil {
		return err
	}
	for _, f := range files {
		slog.Debug("wrote", "file", f)
	}
	slog.Info("mininet configuration written",
		"dir", cfg.OutputDir,
		"family", fam,
		"policy", s.Policy,
		"files", len(files),
		"duration", s.Duration,
	)
	return nil
}
