package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"lpgroute/internal/buildinfo"
	"lpgroute/internal/compare"
	"lpgroute/internal/matrix"
	"lpgroute/internal/metrics"
	"lpgroute/internal/model"
	"lpgroute/internal/problem"
	"lpgroute/internal/scenario"
	"lpgroute/internal/store"
)

// OptimizeHandler handles POST /v1/optimize: build or generate the instance,
// run baseline and optimized pipelines, persist the run, return the record.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		writeProblem(w, http.StatusTooManyRequests, "Rate limited", "optimize requests exceed the configured rate", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}

	in, err := s.buildInstance(&req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid problem instance", err.Error(), r.URL.Path)
		return
	}

	runID := uuid.New().String()
	s.Broker.Publish(runID, SSEEvent{Type: "run.started", Data: map[string]any{
		"runId": runID, "stops": len(in.Stops), "vehicles": len(in.Fleet),
	}})

	start := time.Now()
	cmp, err := compare.RunWithProgress(r.Context(), in, func(cost float64, iteration int) {
		s.Broker.Publish(runID, SSEEvent{Type: "run.progress", Data: map[string]any{
			"runId": runID, "cost": cost, "iteration": iteration,
		}})
	})
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OptimizeRuns.WithLabelValues("error").Inc()
		status := http.StatusInternalServerError
		title := "Optimization failed"
		if problem.IsInputError(err) {
			status = http.StatusBadRequest
			title = "Invalid problem instance"
		}
		s.Broker.Publish(runID, SSEEvent{Type: "run.failed", Data: map[string]any{"runId": runID, "error": err.Error()}})
		writeProblem(w, status, title, err.Error(), r.URL.Path)
		return
	}
	metrics.OptimizeRuns.WithLabelValues("ok").Inc()
	metrics.SearchIterations.Observe(float64(cmp.Metrics.Search.Iterations))
	metrics.DistanceReductionPct.Observe(cmp.Metrics.DistanceReductionPct)

	rec := model.RunRecord{
		ID:        runID,
		CreatedAt: time.Now().UTC(),
		Request:   req,
		Metrics:   cmp.Metrics,
		Baseline:  cmp.Baseline,
		Optimized: cmp.Optimized,
	}
	if err := s.Store.SaveRun(r.Context(), rec); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save run failed", err.Error(), r.URL.Path)
		return
	}
	s.Broker.Publish(runID, SSEEvent{Type: "run.completed", Data: map[string]any{
		"runId":                runID,
		"distanceReductionPct": cmp.Metrics.DistanceReductionPct,
		"costSavings":          cmp.Metrics.CostSavings,
	}})
	writeJSON(w, http.StatusOK, rec)
}

// buildInstance resolves the request into a solver instance: explicit stops
// when supplied, otherwise a seeded generated scenario.
func (s *Server) buildInstance(req *model.OptimizeRequest) (*problem.Instance, error) {
	cfg := s.Cfg
	if req.TimeBudgetMs > 0 {
		cfg.Solver.TimeLimitSec = float64(req.TimeBudgetMs) / 1000
	}
	if req.MaxIterations > 0 {
		cfg.Solver.MaxIterations = req.MaxIterations
	}

	gen := scenario.New(cfg, req.Seed)
	if len(req.Stops) == 0 {
		if req.NumDeliveries == 0 {
			req.NumDeliveries = cfg.Generation.DefaultDeliveries
		}
		return gen.Instance(req.NumDeliveries, req.NumVehicles)
	}

	depot := gen.Depot()
	if d := req.Depot; d != nil {
		depot.Lat, depot.Lng = d.Lat, d.Lng
		if d.CloseMin > d.OpenMin {
			depot.OpenMin, depot.CloseMin = d.OpenMin, d.CloseMin
		}
	}
	stops := make([]problem.Stop, 0, len(req.Stops))
	nodes := []matrix.Node{{ID: problem.DepotID, Lat: depot.Lat, Lng: depot.Lng}}
	for _, in := range req.Stops {
		st := in.ToStop(cfg.Delivery.BaseServiceMin, cfg.Delivery.ServicePerUnit)
		stops = append(stops, st)
		nodes = append(nodes, matrix.Node{ID: st.ID, Lat: st.Lat, Lng: st.Lng})
	}
	m, err := matrix.Build(cfg, nodes)
	if err != nil {
		return nil, err
	}
	fleet := gen.Fleet(req.NumVehicles, len(stops))
	return problem.New(depot, stops, fleet, m, cfg), nil
}

// RunsIndexHandler handles GET /v1/runs
func (s *Server) RunsIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListRuns(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RunByIDHandler handles GET /v1/runs/{id} and /v1/runs/{id}/events/stream
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}

	if len(parts) == 3 && parts[1] == "events" && parts[2] == "stream" {
		s.streamRunEvents(w, r, id)
		return
	}
	if len(parts) != 1 || r.Method != http.MethodGet {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}

	rec, err := s.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Run not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// streamRunEvents streams run progress over SSE until the client disconnects.
func (s *Server) streamRunEvents(w http.ResponseWriter, r *http.Request, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"runId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"runId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// HealthHandler reports liveness with build info.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler reports readiness; fails when the store is unreachable.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Store unavailable", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
