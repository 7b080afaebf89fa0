package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/guard"
	"github.com/aminajavaid30/ai-nexus-herald/internal/store"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

func newOrchestratorFixture(t *testing.T, prov *scriptedProvider) (*Orchestrator, *[]time.Duration, *telemetry.Telemetry) {
	t.Helper()
	cfg := testConfig("http://feeds.invalid/rss")
	tl := tools.New(cfg.Research, prov, store.New(t.TempDir(), testLogger), nil, testLogger)
	gate := guard.NewGate(cfg.Guard, &stubJudge{score: 0}, testLogger)
	tele := telemetry.NewTelemetry(config.TelemetryConfig{})

	orch := NewOrchestrator(cfg, prov, testPrompts(), tl, gate, tele, testLogger)
	var slept []time.Duration
	orch.sleep = func(d time.Duration) { slept = append(slept, d) }
	return orch, &slept, tele
}

func TestOrchestratorRunsFullPipeline(t *testing.T) {
	prov := &scriptedProvider{steps: []scriptStep{
		{msg: assistantFinal(`{"topics": ["A", "B"]}`)},
		{msg: assistantFinal(`{"articles": [{"title": "About A", "link": "https://example.com/a", "summary": "sa", "content": ""}]}`)},
		{msg: assistantFinal(`{"articles": [{"title": "About B", "link": "https://example.com/b", "summary": "sb", "content": ""}]}`)},
		{msg: assistantFinal("## Newsletter\n\nAbout A and B.")},
	}}
	orch, slept, tele := newOrchestratorFixture(t, prov)

	st, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(st.Topics) != 0 {
		t.Fatalf("pending topics = %v, want empty queue", st.Topics)
	}
	if len(st.News) != 2 || st.News[0].Topic != "A" || st.News[1].Topic != "B" {
		t.Fatalf("news out of order: %+v", st.News)
	}
	if len(st.NewsArticles) != 2 || st.NewsArticles[0].Title != "About A" || st.NewsArticles[1].Title != "About B" {
		t.Fatalf("articles out of order: %+v", st.NewsArticles)
	}
	if st.Newsletter != "## Newsletter\n\nAbout A and B." {
		t.Fatalf("Newsletter = %q", st.Newsletter)
	}

	// topics are researched strictly in discovery order
	if !strings.Contains(prov.conversations[1][0].Content, "Topic:\nA") {
		t.Fatalf("first research prompt not for topic A: %q", prov.conversations[1][0].Content)
	}
	if !strings.Contains(prov.conversations[2][0].Content, "Topic:\nB") {
		t.Fatalf("second research prompt not for topic B: %q", prov.conversations[2][0].Content)
	}

	// one pacing delay per research call, no retry delays
	want := []time.Duration{2 * time.Second, 2 * time.Second}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("slept = %v, want %v", *slept, want)
	}

	m := tele.GetMetrics()
	if m.SuccessfulRuns != 1 || m.FailedRuns != 0 {
		t.Fatalf("runs = %+v, want one success", m)
	}
}

func TestOrchestratorRetriesResearchOnce(t *testing.T) {
	prov := &scriptedProvider{steps: []scriptStep{
		{msg: assistantFinal(`{"topics": ["A"]}`)},
		{err: errors.New("rate limited")},
		{msg: assistantFinal(`{"articles": [{"title": "About A", "link": "https://example.com/a", "summary": "sa", "content": ""}]}`)},
		{msg: assistantFinal("## Newsletter")},
	}}
	orch, slept, _ := newOrchestratorFixture(t, prov)

	st, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(st.News) != 1 || st.News[0].Topic != "A" {
		t.Fatalf("news = %+v, want topic A", st.News)
	}

	// retry delay before the second attempt, then the usual pacing delay
	want := []time.Duration{3 * time.Second, 2 * time.Second}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("slept = %v, want %v", *slept, want)
	}
}

func TestOrchestratorPropagatesSecondResearchFailure(t *testing.T) {
	prov := &scriptedProvider{steps: []scriptStep{
		{msg: assistantFinal(`{"topics": ["A"]}`)},
		{err: errors.New("rate limited")},
		{err: errors.New("still rate limited")},
	}}
	orch, slept, tele := newOrchestratorFixture(t, prov)

	_, err := orch.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), `research failed for topic "A"`) {
		t.Fatalf("expected research failure, got %v", err)
	}
	if prov.calls != 3 {
		t.Fatalf("model calls = %d, want 3 (no writer call after failure)", prov.calls)
	}

	want := []time.Duration{3 * time.Second, 2 * time.Second}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("slept = %v, want %v", *slept, want)
	}

	if m := tele.GetMetrics(); m.FailedRuns != 1 {
		t.Fatalf("FailedRuns = %d, want 1", m.FailedRuns)
	}
}

func TestOrchestratorWritesWithoutTopics(t *testing.T) {
	prov := &scriptedProvider{steps: []scriptStep{
		{msg: assistantFinal(`{"topics": []}`)},
		{msg: assistantFinal("## Quiet week")},
	}}
	orch, slept, _ := newOrchestratorFixture(t, prov)

	st, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(st.News) != 0 {
		t.Fatalf("news = %+v, want none", st.News)
	}
	if st.Newsletter != "## Quiet week" {
		t.Fatalf("Newsletter = %q", st.Newsletter)
	}
	if len(*slept) != 0 {
		t.Fatalf("slept = %v, want no delays without research", *slept)
	}
}
