package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/store"
	"github.com/aminajavaid30/ai-nexus-herald/models"
)

var testLogger = log.New(io.Discard, "", 0)

// fakeEmbedder maps exact texts to vectors; unknown texts get an orthogonal
// default vector.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) ChatCompletion(ctx context.Context, messages []models.Message, tools []models.ToolSpec) (models.Message, error) {
	return models.Message{}, errors.New("fakeEmbedder: chat not supported")
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func newTestTools(t *testing.T, embedder *fakeEmbedder) *Tools {
	t.Helper()
	return New(config.ResearchConfig{SimilarityThreshold: 0.7}, embedder, store.New(t.TempDir(), testLogger), nil, testLogger)
}

func serveRSS(t *testing.T, items string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel>%s</channel></rss>`, items)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractTitlesSkipsBrokenFeeds(t *testing.T) {
	good := serveRSS(t, `<item><title>First</title></item><item><title>Second</title></item>`)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	tools := newTestTools(t, &fakeEmbedder{})
	titles := tools.ExtractTitles(context.Background(), []string{bad.URL, good.URL})
	if !reflect.DeepEqual(titles, []string{"First", "Second"}) {
		t.Fatalf("titles = %v", titles)
	}
}

func TestExtractNewsKeepsSingleBestMatch(t *testing.T) {
	srv := serveRSS(t,
		`<item><title>Best</title><link>https://example.com/1</link><description>right on topic</description></item>`+
			`<item><title>Good</title><link>https://example.com/2</link><description>close enough</description></item>`+
			`<item><title>Noise</title><link>https://example.com/3</link><description>irrelevant</description></item>`)

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"quantum chips":        {1, 0, 0},
		"Best right on topic":  {1, 0, 0},
		"Good close enough":    {0.8, 0.6, 0},
	}}
	tools := newTestTools(t, embedder)

	matches, err := tools.ExtractNews(context.Background(), []string{srv.URL}, "quantum chips", 0.7)
	if err != nil {
		t.Fatalf("ExtractNews: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want exactly 1", len(matches))
	}
	if matches[0].Title != "Best" {
		t.Fatalf("best match = %q, want Best", matches[0].Title)
	}
	if matches[0].Similarity < 0.99 {
		t.Fatalf("similarity = %f, want ~1", matches[0].Similarity)
	}
}

func TestExtractNewsThresholdExcludesAll(t *testing.T) {
	srv := serveRSS(t, `<item><title>Noise</title><link>https://example.com/3</link><description>irrelevant</description></item>`)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"quantum chips": {1, 0, 0}}}
	tools := newTestTools(t, embedder)

	matches, err := tools.ExtractNews(context.Background(), []string{srv.URL}, "quantum chips", 0.7)
	if err != nil {
		t.Fatalf("ExtractNews: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want none below threshold", matches)
	}
}

func TestExtractNewsSanitizesQuotes(t *testing.T) {
	srv := serveRSS(t, `<item><title>The &quot;big&quot; launch</title><link>https://example.com/1</link><description>it was &quot;huge&quot;</description></item>`)

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"launch":                                {1, 0, 0},
		`The "big" launch it was "huge"`:        {1, 0, 0},
	}}
	tools := newTestTools(t, embedder)

	matches, err := tools.ExtractNews(context.Background(), []string{srv.URL}, "launch", 0.7)
	if err != nil {
		t.Fatalf("ExtractNews: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Title != "The 'big' launch" {
		t.Fatalf("Title = %q, double quotes not replaced", matches[0].Title)
	}
	if matches[0].Summary != "it was 'huge'" {
		t.Fatalf("Summary = %q, double quotes not replaced", matches[0].Summary)
	}
}

func TestExtractNewsEmptyFeedsShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedder must not run")}
	tools := newTestTools(t, embedder)

	matches, err := tools.ExtractNews(context.Background(), []string{"http://feeds.invalid/rss"}, "topic", 0.7)
	if err != nil {
		t.Fatalf("ExtractNews: %v", err)
	}
	if matches != nil {
		t.Fatalf("matches = %+v, want nil", matches)
	}
}

func TestExtractNewsEmbeddingFailure(t *testing.T) {
	srv := serveRSS(t, `<item><title>One</title><link>https://example.com/1</link><description>d</description></item>`)

	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	tools := newTestTools(t, embedder)

	_, err := tools.ExtractNews(context.Background(), []string{srv.URL}, "topic", 0.7)
	if err == nil {
		t.Fatal("expected embedding error")
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		if got := cosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: cosineSimilarity = %f, want %f", tc.name, got, tc.want)
		}
	}
}
