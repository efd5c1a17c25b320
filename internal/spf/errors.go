package spf

import "errors"

// Sentinel errors returned by Compute. Callers match them with errors.Is;
// the returned error usually wraps one of them with node context.
var (
	// ErrEmptyGraph is returned when the graph has no nodes.
	ErrEmptyGraph = errors.New("spf: graph is empty")

	// ErrStartNotFound is returned when the start node is not part of the graph.
	ErrStartNotFound = errors.New("spf: start node not found in graph")

	// ErrUnknownNode is returned when an edge references a node absent from the graph.
	ErrUnknownNode = errors.New("spf: edge references unknown node")

	// ErrInvalidCost is returned for edges whose cost is below 1.
	// Negative costs are unsupported, and zero costs make predecessor
	// sets depend on the order in which equal-cost nodes are finalized.
	ErrInvalidCost = errors.New("spf: edge cost must be positive")

	// ErrTooManyNodes is returned when the graph exceeds the configured node ceiling.
	ErrTooManyNodes = errors.New("spf: graph exceeds node ceiling")

	// ErrQueueUnderflow signals an internal inconsistency of the pending queue.
	ErrQueueUnderflow = errors.New("spf: pending queue underflow")
)
