package models

import "encoding/json"

// Article is a single news item extracted from an RSS feed. Articles are
// immutable once produced by the tool layer; the link identifies an article
// within one topic's result set.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// ScoredArticle is an Article annotated with its embedding similarity to the
// topic it was searched under.
type ScoredArticle struct {
	Article
	Similarity float64 `json:"similarity"`
}

// News groups the articles researched for one topic. A pipeline run produces
// one News per discovered topic, in discovery order.
type News struct {
	Topic        string    `json:"topic"`
	NewsArticles []Article `json:"news_articles"`
}

// Dataset is the per-run JSON artifact consumed by evaluation tooling.
type Dataset struct {
	GeneratedNews []News `json:"generated_news"`
}

// Message roles used in agent conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Message is one entry in an agent conversation. Assistant messages may carry
// tool calls; tool result messages carry the originating call's ID so results
// can be correlated with requests.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolSpec declares a tool the model may request, with a JSON-schema argument
// description.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
