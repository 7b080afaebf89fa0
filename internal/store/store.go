package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aminajavaid30/ai-nexus-herald/models"
)

const timestampLayout = "2006-01-02_15-04-05"

// Store persists pipeline artifacts under the outputs directory:
// newsletters as markdown and per-run datasets as JSON, both timestamped.
type Store struct {
	outputsDir string
	logger     *log.Logger
	now        func() time.Time
}

// New creates a file store rooted at dir.
func New(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[STORE] ", log.LstdFlags)
	}
	return &Store{outputsDir: dir, logger: logger, now: time.Now}
}

// SaveNewsletter writes a newsletter markdown file and returns its path.
func (s *Store) SaveNewsletter(text string) (string, error) {
	dir := filepath.Join(s.outputsDir, "newsletters")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create newsletters dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("newsletter_%s.md", s.now().Format(timestampLayout)))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write newsletter: %w", err)
	}

	s.logger.Printf("saved newsletter to %s", path)
	return path, nil
}

// SaveDataset writes the per-run dataset JSON and returns its path. The shape
// matches what the evaluation tooling consumes:
// {"generated_news": [{"topic": ..., "news_articles": [...]}]}.
func (s *Store) SaveDataset(news []models.News) (string, error) {
	dir := filepath.Join(s.outputsDir, "dataset")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}

	payload, err := json.MarshalIndent(models.Dataset{GeneratedNews: news}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("generated_dataset_%s.json", s.now().Format(timestampLayout)))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write dataset: %w", err)
	}

	s.logger.Printf("saved dataset to %s", path)
	return path, nil
}
