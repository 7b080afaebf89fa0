package prompt

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Definition is one named prompt configuration loaded from the prompts file.
type Definition struct {
	Description       string   `mapstructure:"description"`
	Role              string   `mapstructure:"role"`
	Instruction       string   `mapstructure:"instruction"`
	OutputConstraints []string `mapstructure:"output_constraints"`
	Goal              string   `mapstructure:"goal"`
}

// Library holds all prompt definitions keyed by name.
type Library struct {
	defs map[string]Definition
}

// Prompt names used by the pipeline agents.
const (
	TopicFinderPrompt      = "topic_finder_agent_prompt"
	DeepResearcherPrompt   = "deep_researcher_agent_prompt"
	NewsletterWriterPrompt = "newsletter_writer_agent_prompt"
)

// Load reads prompt definitions from a YAML file.
func Load(path string) (*Library, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	defs := make(map[string]Definition)
	for _, key := range v.AllKeys() {
		// keys look like "topic_finder_agent_prompt.role"; group by prefix
		name := strings.SplitN(key, ".", 2)[0]
		if _, ok := defs[name]; ok {
			continue
		}
		var def Definition
		if err := v.UnmarshalKey(name, &def); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prompt %q: %w", name, err)
		}
		defs[name] = def
	}

	return &Library{defs: defs}, nil
}

// NewLibrary builds a library from in-memory definitions, used by tests.
func NewLibrary(defs map[string]Definition) *Library {
	return &Library{defs: defs}
}

// Get returns the named prompt definition.
func (l *Library) Get(name string) (Definition, error) {
	def, ok := l.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("prompt not found: %s", name)
	}
	return def, nil
}

// Build composes a prompt definition and free-form input data into a single
// system prompt string.
func Build(def Definition, inputData string) string {
	var b strings.Builder
	if def.Role != "" {
		b.WriteString(strings.TrimSpace(def.Role))
		b.WriteString("\n\n")
	}
	if def.Instruction != "" {
		b.WriteString(strings.TrimSpace(def.Instruction))
		b.WriteString("\n")
	}
	if len(def.OutputConstraints) > 0 {
		b.WriteString("\nOutput constraints:\n")
		for _, c := range def.OutputConstraints {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(c))
			b.WriteString("\n")
		}
	}
	if def.Goal != "" {
		b.WriteString("\nGoal:\n")
		b.WriteString(strings.TrimSpace(def.Goal))
		b.WriteString("\n")
	}
	if inputData != "" {
		b.WriteString(inputData)
	}
	return b.String()
}
