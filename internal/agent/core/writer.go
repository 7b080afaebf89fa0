package core

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/guard"
	"github.com/aminajavaid30/ai-nexus-herald/internal/prompt"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

// NewsletterWriter drafts the newsletter from all researched news, validates
// it through the output gate and persists it. The persistence tool runs after
// the model's final answer, not as part of the think/act cycle; a gate
// failure aborts the run with nothing saved.
type NewsletterWriter struct {
	loop      *Loop
	prompts   *prompt.Library
	gate      *guard.Gate
	tools     *tools.Tools
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewNewsletterWriter creates a writer agent.
func NewNewsletterWriter(cfg *config.Config, prov provider.Provider, prompts *prompt.Library, gate *guard.Gate, tl *tools.Tools, tele *telemetry.Telemetry, logger *log.Logger) *NewsletterWriter {
	if logger == nil {
		logger = log.New(log.Writer(), "[WRITER] ", log.LstdFlags)
	}
	return &NewsletterWriter{
		// no toolset: the writer's think step never branches into acting
		loop:      NewLoop("newsletter_writer", prov, nil, cfg.Agents.MaxIterations, tele, logger),
		prompts:   prompts,
		gate:      gate,
		tools:     tl,
		telemetry: tele,
		logger:    logger,
	}
}

// Run generates the newsletter for the given news, gates it and saves it. An
// empty model answer terminates without validating or persisting anything.
func (w *NewsletterWriter) Run(ctx context.Context, news []models.News) (NewsletterRunState, error) {
	def, err := w.prompts.Get(prompt.NewsletterWriterPrompt)
	if err != nil {
		return NewsletterRunState{News: news}, err
	}
	system := prompt.Build(def, newsBlock(news))

	state := NewsletterRunState{
		News:         news,
		Conversation: []models.Message{{Role: models.RoleSystem, Content: system}},
	}

	final, conversation, err := w.loop.Run(ctx, state.Conversation)
	state.Conversation = conversation
	if err != nil {
		return state, err
	}

	if strings.TrimSpace(final) == "" {
		w.logger.Printf("model returned an empty draft; nothing to validate or save")
		return state, nil
	}

	w.logger.Printf("validating draft (%d bytes)", len(final))
	if err := w.gate.Validate(ctx, final); err != nil {
		var vErr *guard.OutputValidationError
		if errors.As(err, &vErr) {
			w.telemetry.RecordGateFailure()
		}
		return state, err
	}

	state.Document = final

	if err := w.tools.SaveNewsletter(final); err != nil {
		return state, err
	}
	return state, nil
}

// newsBlock renders the aggregated news for the writer's system prompt.
func newsBlock(news []models.News) string {
	var b strings.Builder
	b.WriteString("\n\nNews:\n")
	for _, n := range news {
		b.WriteString("Topic: ")
		b.WriteString(n.Topic)
		b.WriteString("\nArticles:\n")
		for _, a := range n.NewsArticles {
			b.WriteString("Title: ")
			b.WriteString(a.Title)
			b.WriteString("\nLink: ")
			b.WriteString(a.Link)
			b.WriteString("\nSummary: ")
			b.WriteString(a.Summary)
			b.WriteString("\nContent: ")
			b.WriteString(a.Content)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
