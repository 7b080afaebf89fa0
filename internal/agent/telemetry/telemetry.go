package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aminajavaid30/ai-nexus-herald/config"
)

// Telemetry records pipeline, agent loop and tool events, and exposes them as
// prometheus metrics. All methods are safe on a nil receiver so components can
// run without monitoring wired in.
type Telemetry struct {
	config   config.TelemetryConfig
	logger   *log.Logger
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	loopIterations  *prometheus.CounterVec
	toolInvocations *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
	gateFailures    prometheus.Counter

	mu      sync.RWMutex
	metrics Metrics
}

// Metrics is a point-in-time snapshot of pipeline activity.
type Metrics struct {
	TotalRuns       int64
	SuccessfulRuns  int64
	FailedRuns      int64
	AverageRunTime  time.Duration
	LoopIterations  map[string]int64
	ToolInvocations map[string]int64
	LLMRequests     map[string]int64
	GateFailures    int64

	totalRunTime time.Duration
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config:   cfg,
		logger:   log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		registry: prometheus.NewRegistry(),
		metrics: Metrics{
			LoopIterations:  make(map[string]int64),
			ToolInvocations: make(map[string]int64),
			LLMRequests:     make(map[string]int64),
		},
	}

	t.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "herald_pipeline_runs_total",
		Help: "Completed pipeline runs by outcome.",
	}, []string{"outcome"})
	t.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "herald_pipeline_run_seconds",
		Help:    "Wall-clock duration of a pipeline run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	t.loopIterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "herald_agent_loop_iterations_total",
		Help: "Think/act iterations by agent.",
	}, []string{"agent"})
	t.toolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "herald_tool_invocations_total",
		Help: "Tool executions by tool name and outcome.",
	}, []string{"tool", "outcome"})
	t.llmRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "herald_llm_requests_total",
		Help: "LLM requests by agent.",
	}, []string{"agent"})
	t.gateFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herald_gate_failures_total",
		Help: "Newsletter drafts rejected by the output gate.",
	})

	t.registry.MustRegister(t.runsTotal, t.runDuration, t.loopIterations, t.toolInvocations, t.llmRequests, t.gateFailures)

	return t
}

// Handler serves the prometheus metrics endpoint.
func (t *Telemetry) Handler() http.Handler {
	if t == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// RecordRun records one completed orchestrator run.
func (t *Telemetry) RecordRun(duration time.Duration, err error) {
	if t == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	t.runsTotal.WithLabelValues(outcome).Inc()
	t.runDuration.Observe(duration.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics.TotalRuns++
	if err != nil {
		t.metrics.FailedRuns++
	} else {
		t.metrics.SuccessfulRuns++
	}
	t.metrics.totalRunTime += duration
	t.metrics.AverageRunTime = t.metrics.totalRunTime / time.Duration(t.metrics.TotalRuns)
}

// RecordLoopIteration records one think/act round trip for an agent.
func (t *Telemetry) RecordLoopIteration(agent string) {
	if t == nil {
		return
	}
	t.loopIterations.WithLabelValues(agent).Inc()
	t.mu.Lock()
	t.metrics.LoopIterations[agent]++
	t.mu.Unlock()
}

// RecordLLMRequest records one model call made by an agent.
func (t *Telemetry) RecordLLMRequest(agent string) {
	if t == nil {
		return
	}
	t.llmRequests.WithLabelValues(agent).Inc()
	t.mu.Lock()
	t.metrics.LLMRequests[agent]++
	t.mu.Unlock()
}

// RecordToolInvocation records one tool execution.
func (t *Telemetry) RecordToolInvocation(tool string, duration time.Duration, success bool) {
	if t == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	t.toolInvocations.WithLabelValues(tool, outcome).Inc()
	t.mu.Lock()
	t.metrics.ToolInvocations[tool]++
	t.mu.Unlock()
	if t.config.PeriodicLogs {
		t.logger.Printf("tool %s finished in %v (%s)", tool, duration, outcome)
	}
}

// RecordGateFailure records a draft rejected by the output gate.
func (t *Telemetry) RecordGateFailure() {
	if t == nil {
		return
	}
	t.gateFailures.Inc()
	t.mu.Lock()
	t.metrics.GateFailures++
	t.mu.Unlock()
}

// GetMetrics returns a copy of the current metrics snapshot.
func (t *Telemetry) GetMetrics() Metrics {
	if t == nil {
		return Metrics{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.metrics
	out.LoopIterations = copyCounts(t.metrics.LoopIterations)
	out.ToolInvocations = copyCounts(t.metrics.ToolInvocations)
	out.LLMRequests = copyCounts(t.metrics.LLMRequests)
	return out
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
