package core

import (
	"fmt"
	"log"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/internal/guard"
	"github.com/aminajavaid30/ai-nexus-herald/internal/prompt"
	"github.com/aminajavaid30/ai-nexus-herald/internal/store"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
	"github.com/aminajavaid30/ai-nexus-herald/tools"
)

// Pipeline bundles the orchestrator with the collaborators callers need
// alongside it.
type Pipeline struct {
	Orchestrator *Orchestrator
	Store        *store.Store
	Telemetry    *telemetry.Telemetry
}

// NewPipeline wires the full pipeline from configuration: LLM provider,
// prompt library, telemetry, artifact store, tool layer, output gate and the
// orchestrator on top.
func NewPipeline(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prov, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	prompts, err := prompt.Load(cfg.Prompts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	tele := telemetry.NewTelemetry(cfg.Telemetry)
	st := store.New(cfg.Storage.OutputsDir, logger)
	tl := tools.New(cfg.Research, prov, st, tele, logger)
	gate := guard.NewGate(cfg.Guard, guard.NewLLMJudge(prov), logger)

	return &Pipeline{
		Orchestrator: NewOrchestrator(cfg, prov, prompts, tl, gate, tele, logger),
		Store:        st,
		Telemetry:    tele,
	}, nil
}
