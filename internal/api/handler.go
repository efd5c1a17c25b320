package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/ecmproute/internal/config"
	"github.com/gyaneshwarpardhi/ecmproute/internal/engine"
	"github.com/gyaneshwarpardhi/ecmproute/internal/metrics"
	"github.com/gyaneshwarpardhi/ecmproute/internal/spf"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/topology", h.getTopology)
	h.mux.HandleFunc("GET /v1/routes/{source}", h.listRoutes)
	h.mux.HandleFunc("GET /v1/routes/{source}/{destination}", h.getRoute)
	h.mux.HandleFunc("GET /v1/multicast", h.listGroups)
	h.mux.HandleFunc("GET /v1/multicast/{source}", h.getTree)
	h.mux.HandleFunc("POST /v1/topology/reload", h.reload)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// snapshot writes 503 and returns nil until a snapshot is available.
func (h *Handler) snapshot(w http.ResponseWriter) *engine.Snapshot {
	s := h.eng.Current()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "no routing snapshot yet")
	}
	return s
}

// node resolves a path value holding a node name.
func node(w http.ResponseWriter, r *http.Request, s *engine.Snapshot, key string) (spf.NodeID, bool) {
	name := r.PathValue(key)
	id, err := s.Topology.Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return 0, false
	}
	return id, true
}

// GET /v1/topology: nodes, interfaces and links of the current snapshot.
func (h *Handler) getTopology(w http.ResponseWriter, r *http.Request) {
	s := h.snapshot(w)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, newTopologyView(s))
}

// GET /v1/routes/{source}: unicast table of one source.
func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	s := h.snapshot(w)
	if s == nil {
		return
	}
	src, ok := node(w, r, s, "source")
	if !ok {
		return
	}
	routes := s.Routes[src]
	views := make([]routeView, 0, len(routes))
	for _, rt := range routes {
		views = append(views, newRouteView(s, src, rt))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": s.ID,
		"policy":   s.Policy,
		"source":   s.Topology.Name(src),
		"routes":   views,
	})
}

// GET /v1/routes/{source}/{destination}: one route.
func (h *Handler) getRoute(w http.ResponseWriter, r *http.Request) {
	s := h.snapshot(w)
	if s == nil {
		return
	}
	src, ok := node(w, r, s, "source")
	if !ok {
		return
	}
	dst, ok := node(w, r, s, "destination")
	if !ok {
		return
	}
	if src == dst {
		writeError(w, http.StatusBadRequest, "source and destination are the same node")
		return
	}
	for _, rt := range s.Routes[src] {
		if rt.Destination == dst {
			writeJSON(w, http.StatusOK, newRouteView(s, src, rt))
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("no route from %s to %s", r.PathValue("source"), r.PathValue("destination")))
}

// GET /v1/multicast: configured groups.
func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	s := h.snapshot(w)
	if s == nil {
		return
	}
	groups := make([]groupView, 0, len(s.Groups))
	for _, gt := range s.Groups {
		groups = append(groups, groupView{Source: gt.Group.SourceName, Address: gt.Group.Address.String()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": s.ID,
		"groups":   groups,
	})
}

// GET /v1/multicast/{source}: distribution tree of a group source.
func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	s := h.snapshot(w)
	if s == nil {
		return
	}
	src, ok := node(w, r, s, "source")
	if !ok {
		return
	}
	tree, ok := s.Tree(src)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no multicast group sourced at %s", r.PathValue("source")))
		return
	}
	writeJSON(w, http.StatusOK, newTreeView(s, tree))
}

// POST /v1/topology/reload: re-read the topology and multicast files named
// by the current config, then rebuild. Config edits arrive through the watcher.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	cfg := h.loader.Config()
	s, err := h.eng.Reload(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":    true,
		"snapshot":    s.ID,
		"nodes":       s.Topology.Len(),
		"groups":      len(s.Groups),
		"duration_ms": s.Duration.Milliseconds(),
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 without a snapshot or with the job queue >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if h.eng.Current() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "no snapshot",
		})
		return
	}
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"snapshot":          h.eng.Current().ID,
		"queue_utilization": util,
	})
}

