package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePrompts = `
topic_finder_agent_prompt:
  description: Find trending topics
  role: You are a topic scout.
  instruction: Read the feed titles and pick topics.
  output_constraints:
    - Return ONLY JSON
    - Exactly five topics
  goal: Surface what matters this week.

newsletter_writer_agent_prompt:
  role: You are a newsletter writer.
  instruction: Write markdown.
`

func loadSample(t *testing.T) *Library {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(samplePrompts), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	lib, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return lib
}

func TestLoadGroupsDefinitionsByName(t *testing.T) {
	lib := loadSample(t)

	def, err := lib.Get(TopicFinderPrompt)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if def.Role != "You are a topic scout." {
		t.Fatalf("Role = %q", def.Role)
	}
	if len(def.OutputConstraints) != 2 || def.OutputConstraints[1] != "Exactly five topics" {
		t.Fatalf("OutputConstraints = %v", def.OutputConstraints)
	}
	if def.Goal != "Surface what matters this week." {
		t.Fatalf("Goal = %q", def.Goal)
	}

	if _, err := lib.Get(NewsletterWriterPrompt); err != nil {
		t.Fatalf("Get writer: %v", err)
	}
}

func TestGetUnknownPrompt(t *testing.T) {
	lib := loadSample(t)
	if _, err := lib.Get("no_such_prompt"); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildComposesSections(t *testing.T) {
	def := Definition{
		Role:              "You are a writer.",
		Instruction:       "Write the thing.",
		OutputConstraints: []string{"Markdown only"},
		Goal:              "Ship a newsletter.",
	}

	out := Build(def, "\n\nNews:\n- item one\n")

	for _, want := range []string{
		"You are a writer.",
		"Write the thing.",
		"Output constraints:\n- Markdown only",
		"Goal:\nShip a newsletter.",
		"News:\n- item one",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}

	// sections keep a fixed order
	if strings.Index(out, "You are a writer.") > strings.Index(out, "Write the thing.") {
		t.Fatal("role must precede instruction")
	}
	if strings.Index(out, "Goal:") > strings.Index(out, "News:") {
		t.Fatal("goal must precede input data")
	}
}

func TestBuildSkipsEmptySections(t *testing.T) {
	out := Build(Definition{Instruction: "Just do it."}, "")
	if strings.Contains(out, "Output constraints:") || strings.Contains(out, "Goal:") {
		t.Fatalf("empty sections rendered:\n%s", out)
	}
}
