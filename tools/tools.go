package tools

import (
	"context"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/store"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
)

// Tool names as advertised to the model.
const (
	ToolExtractTitles  = "extract_titles_from_rss"
	ToolExtractNews    = "extract_news_from_rss"
	ToolSaveNewsletter = "save_newsletter"
)

// Tools is the stateless tool layer invoked by the agents. Feed parsing is
// best-effort: a feed that fails to fetch or parse contributes zero entries,
// never an error.
type Tools struct {
	feeds            *FeedClient
	embedder         provider.Provider
	store            *store.Store
	telemetry        *telemetry.Telemetry
	logger           *log.Logger
	httpClient       *http.Client
	fetchFullContent bool
}

// New wires the tool layer.
func New(cfg config.ResearchConfig, prov provider.Provider, st *store.Store, tele *telemetry.Telemetry, logger *log.Logger) *Tools {
	if logger == nil {
		logger = log.New(log.Writer(), "[TOOLS] ", log.LstdFlags)
	}
	httpClient := &http.Client{Timeout: 20 * time.Second}
	return &Tools{
		feeds:            NewFeedClient(httpClient),
		embedder:         prov,
		store:            st,
		telemetry:        tele,
		logger:           logger,
		httpClient:       httpClient,
		fetchFullContent: cfg.FetchFullContent,
	}
}

// ExtractTitles collects entry titles from the given feed URLs.
func (t *Tools) ExtractTitles(ctx context.Context, urls []string) []string {
	start := time.Now()
	var titles []string
	for _, u := range urls {
		entries, err := t.feeds.Fetch(ctx, u)
		if err != nil {
			t.logger.Printf("skipping feed %s: %v", u, err)
			continue
		}
		for _, e := range entries {
			if e.Title != "" {
				titles = append(titles, e.Title)
			}
		}
	}
	t.telemetry.RecordToolInvocation(ToolExtractTitles, time.Since(start), true)
	return titles
}

// ExtractNews searches the given feeds for entries relevant to topic. Topic
// and entry texts (title plus summary) are embedded, scored by cosine
// similarity, filtered at the threshold, sorted descending and truncated to
// the single best match.
func (t *Tools) ExtractNews(ctx context.Context, urls []string, topic string, threshold float64) ([]models.ScoredArticle, error) {
	start := time.Now()

	var entries []Entry
	for _, u := range urls {
		fetched, err := t.feeds.Fetch(ctx, u)
		if err != nil {
			t.logger.Printf("skipping feed %s: %v", u, err)
			continue
		}
		entries = append(entries, fetched...)
	}
	if len(entries) == 0 {
		t.telemetry.RecordToolInvocation(ToolExtractNews, time.Since(start), true)
		return nil, nil
	}

	texts := make([]string, 0, len(entries)+1)
	texts = append(texts, topic)
	for _, e := range entries {
		texts = append(texts, e.Title+" "+e.Summary)
	}

	vecs, err := t.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		t.telemetry.RecordToolInvocation(ToolExtractNews, time.Since(start), false)
		return nil, err
	}
	topicVec := vecs[0]

	var matches []models.ScoredArticle
	for i, e := range entries {
		score := cosineSimilarity(topicVec, vecs[i+1])
		if score < threshold {
			continue
		}
		content := e.Content
		if content == "" && t.fetchFullContent {
			content = t.readableContent(ctx, e.Link)
		}
		matches = append(matches, models.ScoredArticle{
			Article: models.Article{
				Title:   sanitizeQuotes(e.Title),
				Link:    e.Link,
				Summary: sanitizeQuotes(e.Summary),
				Content: sanitizeQuotes(content),
			},
			Similarity: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > 1 {
		matches = matches[:1]
	}

	t.telemetry.RecordToolInvocation(ToolExtractNews, time.Since(start), true)
	return matches, nil
}

// SaveNewsletter persists the newsletter markdown through the artifact store.
func (t *Tools) SaveNewsletter(text string) error {
	start := time.Now()
	_, err := t.store.SaveNewsletter(text)
	t.telemetry.RecordToolInvocation(ToolSaveNewsletter, time.Since(start), err == nil)
	return err
}

// readableContent fetches the article page and extracts its readable text.
// Best-effort; an empty string is returned on any failure.
func (t *Tools) readableContent(ctx context.Context, link string) string {
	u, err := url.Parse(link)
	if err != nil || link == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(string(body)), u)
	if err != nil {
		t.logger.Printf("readability extraction failed for %s: %v", link, err)
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// sanitizeQuotes replaces double quotes so article text embeds safely inside
// JSON tool results handed back to the model.
func sanitizeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
