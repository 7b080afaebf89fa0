package core

import (
	"context"
	"fmt"
	"log"

	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/telemetry"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
)

// Phase is the agent loop's state.
type Phase int

const (
	// PhaseThinking means the model is being asked to respond given the
	// current conversation.
	PhaseThinking Phase = iota
	// PhaseActing means the conversation's last entry requests tool
	// invocations that must be executed.
	PhaseActing
	// PhaseDone means the model responded without a tool request.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseThinking:
		return "thinking"
	case PhaseActing:
		return "acting"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Toolset is the closed set of tools one agent may call. Dispatch resolves a
// requested call by name and returns the tool's string-serialized result; an
// unregistered name yields *UnknownToolError.
type Toolset interface {
	Specs() []models.ToolSpec
	Dispatch(ctx context.Context, call models.ToolCall) (string, error)
}

// Loop is a bounded conversation between a model and a fixed toolset: it
// alternates THINKING and ACTING until the model emits a final non-tool
// response or the iteration cap is hit.
type Loop struct {
	agent         string
	provider      provider.Provider
	toolset       Toolset
	maxIterations int
	telemetry     *telemetry.Telemetry
	logger        *log.Logger
}

// NewLoop builds a loop for one agent. maxIterations caps think/act round
// trips; values <= 0 fall back to 100.
func NewLoop(agent string, prov provider.Provider, toolset Toolset, maxIterations int, tele *telemetry.Telemetry, logger *log.Logger) *Loop {
	if maxIterations <= 0 {
		maxIterations = 100
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}
	return &Loop{
		agent:         agent,
		provider:      prov,
		toolset:       toolset,
		maxIterations: maxIterations,
		telemetry:     tele,
		logger:        logger,
	}
}

// Run drives the loop to completion. It returns the model's final response
// body (which may be empty when the model had nothing to say) and the
// conversation as it stood at termination.
func (l *Loop) Run(ctx context.Context, conversation []models.Message) (string, []models.Message, error) {
	phase := PhaseThinking
	turns := 0

	for {
		if turns >= l.maxIterations {
			return "", conversation, &LoopLimitError{Agent: l.agent, Limit: l.maxIterations}
		}

		next, conv, final, err := l.step(ctx, phase, conversation)
		conversation = conv
		if err != nil {
			return "", conversation, err
		}
		if next == PhaseDone {
			return final, conversation, nil
		}

		// one round trip = one THINKING step plus whatever acting it triggered
		if phase == PhaseThinking {
			turns++
			l.telemetry.RecordLoopIteration(l.agent)
		}
		phase = next
	}
}

// step applies one transition of the loop's state machine:
// state × conversation → state × conversation × effects.
func (l *Loop) step(ctx context.Context, phase Phase, conversation []models.Message) (Phase, []models.Message, string, error) {
	switch phase {
	case PhaseThinking:
		var specs []models.ToolSpec
		if l.toolset != nil {
			specs = l.toolset.Specs()
		}
		l.telemetry.RecordLLMRequest(l.agent)
		msg, err := l.provider.ChatCompletion(ctx, conversation, specs)
		if err != nil {
			return phase, conversation, "", fmt.Errorf("%s: model call failed: %w", l.agent, err)
		}
		conversation = append(conversation, msg)
		if len(msg.ToolCalls) > 0 {
			return PhaseActing, conversation, "", nil
		}
		return PhaseDone, conversation, msg.Content, nil

	case PhaseActing:
		last := conversation[len(conversation)-1]
		for _, call := range last.ToolCalls {
			if l.toolset == nil {
				return phase, conversation, "", &UnknownToolError{Agent: l.agent, Tool: call.Name}
			}
			l.logger.Printf("[%s] executing tool: %s", l.agent, call.Name)
			result, err := l.toolset.Dispatch(ctx, call)
			if err != nil {
				return phase, conversation, "", err
			}
			conversation = append(conversation, models.Message{
				Role:       models.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
		return PhaseThinking, conversation, "", nil

	default:
		return phase, conversation, "", fmt.Errorf("%s: invalid loop phase %v", l.agent, phase)
	}
}
