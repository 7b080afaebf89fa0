package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/guard"
	"github.com/aminajavaid30/ai-nexus-herald/internal/prompt"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

// State is the orchestrator's pipeline state.
type State int

const (
	StateFindTopics State = iota
	StateResearch
	StateWrite
	StateDone
)

func (s State) String() string {
	switch s {
	case StateFindTopics:
		return "find_topics"
	case StateResearch:
		return "research"
	case StateWrite:
		return "write"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var orchestratorTracer trace.Tracer = otel.Tracer("herald/internal/agent/orchestrator")

// Orchestrator sequences the three agent loops: discover topics, research
// each topic in FIFO order, then write the newsletter over everything
// gathered. Execution is fully sequential; each Run builds fresh agent
// instances so nothing leaks across runs.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	provider provider.Provider
	prompts  *prompt.Library
	tools    *tools.Tools
	gate     *guard.Gate

	// sleep is swappable so tests run without real delays
	sleep func(time.Duration)
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(cfg *config.Config, prov provider.Provider, prompts *prompt.Library, tl *tools.Tools, gate *guard.Gate, tele *telemetry.Telemetry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCHESTRATOR] ", log.LstdFlags)
	}
	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		telemetry: tele,
		provider:  prov,
		prompts:   prompts,
		tools:     tl,
		gate:      gate,
		sleep:     time.Sleep,
	}
}

// Run executes one full pipeline: FIND_TOPICS → RESEARCH (one sub-invocation
// per pending topic) → WRITE → done.
func (o *Orchestrator) Run(ctx context.Context) (OrchestratorState, error) {
	runID := uuid.NewString()
	startTime := time.Now()

	ctx, span := orchestratorTracer.Start(ctx, "herald.pipeline_run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	o.logger.Printf("starting pipeline run %s", runID)

	st := OrchestratorState{}
	state := StateFindTopics

	fail := func(err error) (OrchestratorState, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.telemetry.RecordRun(time.Since(startTime), err)
		return st, err
	}

	for state != StateDone {
		switch state {
		case StateFindTopics:
			finder := NewTopicFinder(o.config, o.provider, o.prompts, o.tools, o.telemetry, o.logger)
			run, err := finder.Run(ctx)
			if err != nil {
				return fail(fmt.Errorf("topic discovery failed: %w", err))
			}
			st.Topics = mergeTopics(st.Topics, run.Topics)
			span.AddEvent("topics.discovered", trace.WithAttributes(attribute.Int("count", len(st.Topics))))
			o.logger.Printf("run %s: %d topics pending", runID, len(st.Topics))
			if len(st.Topics) == 0 {
				state = StateWrite
			} else {
				state = StateResearch
			}

		case StateResearch:
			// pending queue is FIFO: always consume index 0, never re-add
			topic := st.Topics[0]
			run, err := o.researchTopic(ctx, topic)
			if err != nil {
				return fail(fmt.Errorf("research failed for topic %q: %w", topic, err))
			}
			st.Topics = st.Topics[1:]
			st.NewsArticles = mergeArticles(st.NewsArticles, run.Articles)
			st.News = mergeNews(st.News, []models.News{{Topic: topic, NewsArticles: run.Articles}})
			o.logger.Printf("run %s: researched %q, %d topics remaining", runID, topic, len(st.Topics))
			if len(st.Topics) == 0 {
				state = StateWrite
			}

		case StateWrite:
			writer := NewNewsletterWriter(o.config, o.provider, o.prompts, o.gate, o.tools, o.telemetry, o.logger)
			run, err := writer.Run(ctx, st.News)
			if err != nil {
				return fail(fmt.Errorf("newsletter writing failed: %w", err))
			}
			st.Newsletter = run.Document
			state = StateDone
		}
	}

	span.SetAttributes(
		attribute.Int("run.news_count", len(st.News)),
		attribute.Int("run.article_count", len(st.NewsArticles)),
	)
	span.SetStatus(codes.Ok, "completed")
	o.telemetry.RecordRun(time.Since(startTime), nil)
	o.logger.Printf("completed pipeline run %s in %v", runID, time.Since(startTime))

	return st, nil
}

// researchTopic runs one research sub-invocation with the pipeline's pacing
// policy: on any failure wait a fixed delay and retry exactly once with a
// fresh researcher; a second failure propagates. A fixed delay is also slept
// after every sub-invocation regardless of outcome.
func (o *Orchestrator) researchTopic(ctx context.Context, topic string) (ResearchRunState, error) {
	ctx, span := orchestratorTracer.Start(ctx, "herald.research_topic",
		trace.WithAttributes(attribute.String("topic", topic)))
	defer span.End()

	researcher := NewDeepResearcher(o.config, o.provider, o.prompts, o.tools, o.telemetry, o.logger)
	run, err := researcher.Run(ctx, topic)
	if err != nil {
		o.logger.Printf("research attempt for %q failed, retrying once: %v", topic, err)
		span.AddEvent("research.retry")
		o.sleep(o.config.Orchestrator.RetryDelay)

		researcher = NewDeepResearcher(o.config, o.provider, o.prompts, o.tools, o.telemetry, o.logger)
		run, err = researcher.Run(ctx, topic)
	}

	o.sleep(o.config.Orchestrator.CallDelay)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return run, err
	}
	span.SetStatus(codes.Ok, "completed")
	return run, nil
}
