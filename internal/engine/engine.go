package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gyaneshwarpardhi/ecmproute/internal/config"
	"github.com/gyaneshwarpardhi/ecmproute/internal/metrics"
	"github.com/gyaneshwarpardhi/ecmproute/internal/mininet"
	"github.com/gyaneshwarpardhi/ecmproute/internal/routing"
	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
	"github.com/gyaneshwarpardhi/ecmproute/internal/topology"
)

const tracerName = "github.com/gyaneshwarpardhi/ecmproute/internal/engine"

// Snapshot is the complete routing state computed from one topology.
// It is immutable once built; reloads build a new Snapshot and swap it in.
type Snapshot struct {
	ID       string                         `json:"id"`
	BuiltAt  time.Time                      `json:"built_at"`
	Duration time.Duration                  `json:"duration"`
	Policy   routing.Policy                 `json:"policy"`
	Topology *topology.Topology             `json:"-"`
	Routes   map[spf.NodeID][]routing.Route `json:"-"`
	Groups   []mininet.GroupTree            `json:"-"`
}

// Tree returns the distribution tree of the first group sourced at source.
func (s *Snapshot) Tree(source spf.NodeID) (*routing.DistributionTree, bool) {
	for _, gt := range s.Groups {
		if gt.Group.Source == source {
			return gt.Tree, true
		}
	}
	return nil, false
}

// Engine computes routing snapshots, one shortest-path job per source,
// on a bounded worker pool.
type Engine struct {
	snapshot atomic.Pointer[Snapshot]
	pool     *workerPool[*spfWork]
	conf     config.EngineConf
	policy   routing.Policy
	tracer   trace.Tracer
}

// spfWork is one source of one build. Every job owns its predecessor map;
// only the graph is shared, read-only.
type spfWork struct {
	ctx      context.Context
	graph    spf.Graph
	source   spf.NodeID
	nodes    []spf.NodeID
	wantTree bool
	resultC  chan<- *spfResult
}

type spfResult struct {
	source spf.NodeID
	routes []routing.Route
	tree   *routing.DistributionTree
	err    error
}

// New creates an Engine using conf and starts its worker pool. The pool
// stops when ctx is cancelled or Shutdown is called.
func New(ctx context.Context, conf config.EngineConf) (*Engine, error) {
	pol, err := routing.ParsePolicy(conf.ECMPPolicy)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		conf:   conf,
		policy: pol,
		tracer: otel.Tracer(tracerName),
	}
	e.pool = newWorkerPool[*spfWork](ctx, conf.Workers, conf.QueueDepth, e.computeSource)
	return e, nil
}

// Policy returns the ECMP policy applied to every route.
func (e *Engine) Policy() routing.Policy { return e.policy }

// Swap atomically replaces the current snapshot.
func (e *Engine) Swap(s *Snapshot) {
	e.snapshot.Store(s)
	metrics.SnapshotNodes.Set(float64(s.Topology.Len()))
}

// Current returns the latest snapshot, nil before the first Swap.
func (e *Engine) Current() *Snapshot {
	return e.snapshot.Load()
}

// Build computes unicast routes for every source of topo and distribution
// trees for every group. The first failing source aborts the build.
func (e *Engine) Build(ctx context.Context, topo *topology.Topology, groups []topology.Group) (*Snapshot, error) {
	start := time.Now()
	s, err := e.build(ctx, topo, groups)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SnapshotBuilds.WithLabelValues(status).Inc()
	if err != nil {
		return nil, err
	}
	s.BuiltAt = start
	s.Duration = time.Since(start)
	return s, nil
}

func (e *Engine) build(ctx context.Context, topo *topology.Topology, groups []topology.Group) (*Snapshot, error) {
	if topo.Len() == 0 {
		return nil, spf.ErrEmptyGraph
	}
	var cancel context.CancelFunc
	if e.conf.TimeoutMs > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.conf.TimeoutMs)*time.Millisecond)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	// Stops the remaining jobs of a failed build.
	defer cancel()
	ctx, span := e.tracer.Start(ctx, "engine.Build", trace.WithAttributes(
		attribute.Int("topology.nodes", topo.Len()),
		attribute.Int("topology.links", len(topo.Links())),
		attribute.Int("multicast.groups", len(groups)),
	))
	defer span.End()

	treeSources := make(map[spf.NodeID]bool, len(groups))
	for _, g := range groups {
		treeSources[g.Source] = true
	}

	graph := topo.Graph()
	nodes := topo.IDs()
	// Buffered so that workers never block on an abandoned build.
	resultC := make(chan *spfResult, len(nodes))
	for _, src := range nodes {
		w := &spfWork{
			ctx:      ctx,
			graph:    graph,
			source:   src,
			nodes:    nodes,
			wantTree: treeSources[src],
			resultC:  resultC,
		}
		if err := e.pool.SubmitWait(ctx, w); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submit")
			return nil, fmt.Errorf("queue source %s: %w", topo.Name(src), err)
		}
		metrics.QueueUtilization.Set(e.QueueUtilization())
	}

	s := &Snapshot{
		ID:       uuid.New().String(),
		Policy:   e.policy,
		Topology: topo,
		Routes:   make(map[spf.NodeID][]routing.Route, len(nodes)),
	}
	trees := make(map[spf.NodeID]*routing.DistributionTree, len(treeSources))
	for range nodes {
		select {
		case res := <-resultC:
			if res.err != nil {
				span.RecordError(res.err)
				span.SetStatus(codes.Error, "spf")
				return nil, fmt.Errorf("source %s: %w", topo.Name(res.source), res.err)
			}
			s.Routes[res.source] = res.routes
			if res.tree != nil {
				trees[res.source] = res.tree
			}
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "deadline")
			return nil, fmt.Errorf("build aborted: %w", ctx.Err())
		}
	}
	for _, g := range groups {
		s.Groups = append(s.Groups, mininet.GroupTree{Group: g, Tree: trees[g.Source]})
	}
	span.SetAttributes(attribute.String("snapshot.id", s.ID))
	span.SetStatus(codes.Ok, "")
	return s, nil
}

// computeSource runs on a pool worker. The predecessor map lives only for
// the duration of this call.
func (e *Engine) computeSource(_ context.Context, w *spfWork) {
	ctx, span := e.tracer.Start(w.ctx, "spf.compute", trace.WithAttributes(
		attribute.Int("spf.source", int(w.source)),
	))
	defer span.End()

	ties := &tieCounter{}
	start := time.Now()
	preds, err := spf.ComputeContext(ctx, w.graph, w.source,
		spf.WithMaxNodes(e.conf.MaxNodes),
		spf.WithObserver(ties),
	)
	metrics.SPFDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.SPFRuns.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "spf failed")
		w.resultC <- &spfResult{source: w.source, err: err}
		return
	}
	metrics.SPFRuns.WithLabelValues("success").Inc()

	res := &spfResult{source: w.source, routes: routing.Routes(preds, w.nodes, e.policy)}
	for _, r := range res.routes {
		switch {
		case !r.Reachable:
			metrics.UnreachableDestinations.Inc()
		case r.ECMP():
			metrics.ECMPDestinations.Inc()
		}
	}
	if w.wantTree {
		res.tree = routing.Tree(preds)
	}
	span.SetAttributes(
		attribute.Int("spf.reachable", preds.Len()),
		attribute.Int("spf.equal_cost_ties", ties.n),
	)
	w.resultC <- res
}

// QueueUtilization returns queue used / capacity (0 to 1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the pool gracefully. Later builds fail with ErrShutdown.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}

// tieCounter is an spf.Observer counting equal-cost alternatives.
type tieCounter struct{ n int }

func (t *tieCounter) OnFinalize(spf.NodeID, spf.NodeID, int64) {}
func (t *tieCounter) OnEqualCost(spf.NodeID, spf.NodeID, int64) { t.n++ }
