package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/prompt"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

// DeepResearcher finds the news article most relevant to one topic. The
// relevance threshold and top-1 truncation are fixed policy constants, not
// per-call overrides; the expected output schema is {"articles": [...]}.
type DeepResearcher struct {
	cfg       *config.Config
	provider  provider.Provider
	prompts   *prompt.Library
	tools     *tools.Tools
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

type researchToolset struct {
	tools     *tools.Tools
	feeds     []string
	topic     string
	threshold float64
}

func (ts *researchToolset) Specs() []models.ToolSpec {
	return []models.ToolSpec{{
		Name:        tools.ToolExtractNews,
		Description: "Extracts the news article from RSS feeds most relevant to a single topic, ranked by embedding similarity.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"feed_urls": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "RSS feed URLs to search",
				},
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Topic to match articles against",
				},
			},
			"required": []string{"feed_urls", "topic"},
		},
	}}
}

func (ts *researchToolset) Dispatch(ctx context.Context, call models.ToolCall) (string, error) {
	switch call.Name {
	case tools.ToolExtractNews:
		var args struct {
			FeedURLs []string `json:"feed_urls"`
			Topic    string   `json:"topic"`
		}
		if len(call.Args) > 0 {
			_ = json.Unmarshal(call.Args, &args)
		}
		if len(args.FeedURLs) == 0 {
			args.FeedURLs = ts.feeds
		}
		if strings.TrimSpace(args.Topic) == "" {
			args.Topic = ts.topic
		}
		articles, err := ts.tools.ExtractNews(ctx, args.FeedURLs, args.Topic, ts.threshold)
		if err != nil {
			return "", fmt.Errorf("extract_news_from_rss failed: %w", err)
		}
		out, err := json.Marshal(articles)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", &UnknownToolError{Agent: "deep_researcher", Tool: call.Name}
	}
}

// NewDeepResearcher creates a researcher agent.
func NewDeepResearcher(cfg *config.Config, prov provider.Provider, prompts *prompt.Library, tl *tools.Tools, tele *telemetry.Telemetry, logger *log.Logger) *DeepResearcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCHER] ", log.LstdFlags)
	}
	return &DeepResearcher{
		cfg:       cfg,
		provider:  prov,
		prompts:   prompts,
		tools:     tl,
		telemetry: tele,
		logger:    logger,
	}
}

// Run executes one research loop for the given topic. The run state is fresh
// per invocation: nothing is shared across topics.
func (r *DeepResearcher) Run(ctx context.Context, topic string) (ResearchRunState, error) {
	def, err := r.prompts.Get(prompt.DeepResearcherPrompt)
	if err != nil {
		return ResearchRunState{Topic: topic}, err
	}

	feeds := r.cfg.FeedURLs()
	system := prompt.Build(def, feedBlock(feeds)+"\n\nTopic:\n"+topic)

	state := ResearchRunState{
		Topic:        topic,
		Conversation: []models.Message{{Role: models.RoleSystem, Content: system}},
	}

	toolset := &researchToolset{
		tools:     r.tools,
		feeds:     feeds,
		topic:     topic,
		threshold: r.cfg.Research.SimilarityThreshold,
	}
	loop := NewLoop("deep_researcher", r.provider, toolset, r.cfg.Agents.MaxIterations, r.telemetry, r.logger)

	final, conversation, err := loop.Run(ctx, state.Conversation)
	state.Conversation = conversation
	if err != nil {
		return state, err
	}

	if strings.TrimSpace(final) == "" {
		r.logger.Printf("model returned an empty answer for topic %q; articles left unchanged", topic)
		return state, nil
	}

	var out struct {
		Articles []models.Article `json:"articles"`
	}
	if err := json.Unmarshal([]byte(final), &out); err != nil {
		return state, &OutputParseError{Agent: "deep_researcher", Raw: final, Err: err}
	}

	state.Articles = mergeArticles(state.Articles, out.Articles)
	r.logger.Printf("collected %d article(s) for topic %q", len(state.Articles), topic)
	return state, nil
}
