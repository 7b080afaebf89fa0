package core

import "github.com/aminajavaid30/ai-nexus-herald/models"

// Run states threaded through the agent loops. Accumulation fields only grow
// within a run: merges append the delta, nothing is deleted or overwritten.

// TopicRunState is the topic finder's run state. It lives for one discovery
// invocation; the orchestrator copies Topics out when the loop terminates.
type TopicRunState struct {
	Topics       []string
	Conversation []models.Message
}

// ResearchRunState is the deep researcher's run state. One instance per
// topic, fully independent across topics.
type ResearchRunState struct {
	Topic        string
	Articles     []models.Article
	Conversation []models.Message
}

// NewsletterRunState is the writer's run state, created once per pipeline run
// after all research completes.
type NewsletterRunState struct {
	News         []models.News
	Document     string
	Conversation []models.Message
}

// OrchestratorState drives the whole pipeline: the pending topic queue, the
// flat article accumulation, the per-topic news aggregation and the final
// newsletter. Only these fields outlive the sub-run states.
type OrchestratorState struct {
	Topics       []string
	NewsArticles []models.Article
	News         []models.News
	Newsletter   string
}

// merge helpers: new value = previous ∪ delta, append-only

func mergeTopics(prev, delta []string) []string {
	return append(prev, delta...)
}

func mergeArticles(prev, delta []models.Article) []models.Article {
	return append(prev, delta...)
}

func mergeNews(prev, delta []models.News) []models.News {
	return append(prev, delta...)
}
