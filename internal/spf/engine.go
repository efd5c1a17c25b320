// Package spf computes equal-cost-aware shortest-path DAGs.
//
// Compute runs a single-source Dijkstra that keeps every predecessor lying
// on a shortest path instead of a single parent. The result is the DAG
// consumed by the routing package to derive unicast next hops and
// multicast fan-out sets.
//
// Edge costs must be positive. Complexity is O((V+E) log V) with a binary
// heap and lazy decrease-key.
package spf

import (
	"container/heap"
	"context"
	"fmt"
)

// ctxCheckInterval is how many queue pops happen between context checks.
const ctxCheckInterval = 256

// Compute returns the shortest-path DAG of g rooted at start.
func Compute(g Graph, start NodeID, opts ...Option) (*Predecessors, error) {
	return ComputeContext(context.Background(), g, start, opts...)
}

// ComputeContext is Compute with cancellation. The context is polled
// periodically; a cancelled or expired context aborts the run with its error.
func ComputeContext(ctx context.Context, g Graph, start NodeID, opts ...Option) (*Predecessors, error) {
	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	if len(g) == 0 {
		return nil, ErrEmptyGraph
	}
	if cfg.MaxNodes > 0 && len(g) > cfg.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes, ceiling %d", ErrTooManyNodes, len(g), cfg.MaxNodes)
	}
	if !g.Has(start) {
		return nil, fmt.Errorf("%w: %d", ErrStartNotFound, start)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		g:         g,
		obs:       cfg.Observer,
		finalized: make(map[NodeID]struct{}, len(g)),
		preds: &Predecessors{
			root:    start,
			parents: make(map[NodeID][]NodeID, len(g)),
			cost:    make(map[NodeID]int64, len(g)),
		},
		pq: make(candidateQueue, 0, len(g)),
	}
	heap.Push(&r.pq, candidate{cost: 0, node: start, from: start})

	if err := r.process(ctx); err != nil {
		return nil, err
	}
	return r.preds, nil
}

// runner holds the mutable state of one computation.
type runner struct {
	g         Graph
	obs       Observer
	finalized map[NodeID]struct{}
	preds     *Predecessors
	pq        candidateQueue
}

func (r *runner) process(ctx context.Context) error {
	for pops := 0; r.pq.Len() > 0; pops++ {
		if pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("spf: aborted after %d finalized nodes: %w", len(r.finalized), err)
			}
		}

		c, ok := heap.Pop(&r.pq).(candidate)
		if !ok {
			return ErrQueueUnderflow
		}

		if _, done := r.finalized[c.node]; done {
			// Alternate shortest path: same cost as the frozen one.
			// Anything costlier is a dominated candidate and is dropped.
			if best, ok := r.preds.cost[c.node]; ok && best == c.cost {
				if r.preds.appendParent(c.node, c.from) {
					r.obs.OnEqualCost(c.node, c.from, c.cost)
				}
			}
			continue
		}

		r.finalized[c.node] = struct{}{}
		r.preds.cost[c.node] = c.cost
		r.preds.appendParent(c.node, c.from)
		r.obs.OnFinalize(c.node, c.from, c.cost)

		for _, e := range r.g[c.node] {
			if _, done := r.finalized[e.To]; done {
				continue
			}
			heap.Push(&r.pq, candidate{cost: c.cost + e.Cost, node: e.To, from: c.node})
		}
	}
	return nil
}
