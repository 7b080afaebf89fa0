package core

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/prompt"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

// TopicFinder discovers trending AI topics from RSS feed titles. Its toolset
// is a single feed-title-extraction tool; the expected output schema is
// {"topics": [...]}.
type TopicFinder struct {
	loop    *Loop
	prompts *prompt.Library
	feeds   []string
	logger  *log.Logger
}

type topicToolset struct {
	tools *tools.Tools
	feeds []string
}

func (ts *topicToolset) Specs() []models.ToolSpec {
	return []models.ToolSpec{{
		Name:        tools.ToolExtractTitles,
		Description: "Extracts article titles from RSS feeds.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"urls": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "RSS feed URLs to read",
				},
			},
			"required": []string{"urls"},
		},
	}}
}

func (ts *topicToolset) Dispatch(ctx context.Context, call models.ToolCall) (string, error) {
	switch call.Name {
	case tools.ToolExtractTitles:
		var args struct {
			URLs []string `json:"urls"`
		}
		if len(call.Args) > 0 {
			_ = json.Unmarshal(call.Args, &args)
		}
		if len(args.URLs) == 0 {
			args.URLs = ts.feeds
		}
		titles := ts.tools.ExtractTitles(ctx, args.URLs)
		out, err := json.Marshal(titles)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", &UnknownToolError{Agent: "topic_finder", Tool: call.Name}
	}
}

// NewTopicFinder creates a topic finder agent.
func NewTopicFinder(cfg *config.Config, prov provider.Provider, prompts *prompt.Library, tl *tools.Tools, tele *telemetry.Telemetry, logger *log.Logger) *TopicFinder {
	if logger == nil {
		logger = log.New(log.Writer(), "[TOPIC-FINDER] ", log.LstdFlags)
	}
	feeds := cfg.FeedURLs()
	toolset := &topicToolset{tools: tl, feeds: feeds}
	return &TopicFinder{
		loop:    NewLoop("topic_finder", prov, toolset, cfg.Agents.MaxIterations, tele, logger),
		prompts: prompts,
		feeds:   feeds,
		logger:  logger,
	}
}

// Run executes one discovery loop. An empty model answer terminates the run
// without updating Topics.
func (f *TopicFinder) Run(ctx context.Context) (TopicRunState, error) {
	def, err := f.prompts.Get(prompt.TopicFinderPrompt)
	if err != nil {
		return TopicRunState{}, err
	}
	system := prompt.Build(def, feedBlock(f.feeds))

	state := TopicRunState{
		Conversation: []models.Message{{Role: models.RoleSystem, Content: system}},
	}

	final, conversation, err := f.loop.Run(ctx, state.Conversation)
	state.Conversation = conversation
	if err != nil {
		return state, err
	}

	if strings.TrimSpace(final) == "" {
		f.logger.Printf("model returned an empty answer; topics left unchanged")
		return state, nil
	}

	var out struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(final), &out); err != nil {
		return state, &OutputParseError{Agent: "topic_finder", Raw: final, Err: err}
	}

	state.Topics = mergeTopics(state.Topics, out.Topics)
	f.logger.Printf("discovered %d topics", len(state.Topics))
	return state, nil
}

// feedBlock renders the feed URLs for inclusion in a system prompt.
func feedBlock(urls []string) string {
	var b strings.Builder
	b.WriteString("\n\nRSS Feed URLs:\n")
	for _, u := range urls {
		b.WriteString("- ")
		b.WriteString(u)
		b.WriteString("\n")
	}
	return b.String()
}
