package store

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aminajavaid30/ai-nexus-herald/models"
)

var testLogger = log.New(io.Discard, "", 0)

func fixedStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(dir, testLogger)
	s.now = func() time.Time {
		return time.Date(2025, 8, 29, 10, 30, 0, 0, time.UTC)
	}
	return s, dir
}

func TestSaveNewsletter(t *testing.T) {
	s, dir := fixedStore(t)

	path, err := s.SaveNewsletter("## AI Weekly\n\nHello.")
	if err != nil {
		t.Fatalf("SaveNewsletter: %v", err)
	}

	want := filepath.Join(dir, "newsletters", "newsletter_2025-08-29_10-30-00.md")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "## AI Weekly\n\nHello." {
		t.Fatalf("content = %q", data)
	}
}

func TestSaveDataset(t *testing.T) {
	s, dir := fixedStore(t)

	news := []models.News{{
		Topic: "AI chips",
		NewsArticles: []models.Article{{
			Title: "Chips", Link: "https://example.com/1", Summary: "s", Content: "c",
		}},
	}}

	path, err := s.SaveDataset(news)
	if err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	want := filepath.Join(dir, "dataset", "generated_dataset_2025-08-29_10-30-00.json")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var decoded map[string][]models.News
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, ok := decoded["generated_news"]
	if !ok {
		t.Fatalf("dataset missing generated_news key: %s", data)
	}
	if len(got) != 1 || got[0].Topic != "AI chips" || len(got[0].NewsArticles) != 1 {
		t.Fatalf("dataset = %+v", got)
	}
}

func TestSaveDatasetEmptyRun(t *testing.T) {
	s, _ := fixedStore(t)

	path, err := s.SaveDataset(nil)
	if err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded struct {
		GeneratedNews []models.News `json:"generated_news"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.GeneratedNews) != 0 {
		t.Fatalf("generated_news = %+v, want empty", decoded.GeneratedNews)
	}
}
