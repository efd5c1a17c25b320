package spf

// Observer receives the engine's intermediate decisions. Implementations
// must be cheap; they run inside the main loop.
type Observer interface {
	// OnFinalize is called when node's shortest cost becomes fixed.
	OnFinalize(node, from NodeID, cost int64)
	// OnEqualCost is called when an alternate shortest path to an already
	// finalized node is found through from.
	OnEqualCost(node, from NodeID, cost int64)
}

// Options configures a single Compute call.
type Options struct {
	// MaxNodes rejects graphs with more nodes than this. Zero disables the ceiling.
	MaxNodes int
	// Observer, if set, is notified of finalizations and ECMP ties.
	Observer Observer
}

// Option mutates Options.
type Option func(*Options)

// WithMaxNodes bounds the size of graphs Compute accepts.
func WithMaxNodes(n int) Option {
	return func(o *Options) { o.MaxNodes = n }
}

// WithObserver installs an observability hook.
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

type nopObserver struct{}

func (nopObserver) OnFinalize(NodeID, NodeID, int64)  {}
func (nopObserver) OnEqualCost(NodeID, NodeID, int64) {}
