package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	"github.com/aminajavaid30/ai-nexus-herald/provider"
)

// OutputValidationError is returned when a draft fails the content gate.
// Gate failures are fatal: the draft is discarded, never regenerated.
type OutputValidationError struct {
	Reasons []string
}

func (e *OutputValidationError) Error() string {
	return "output validation failed: " + strings.Join(e.Reasons, "; ")
}

// ToxicityJudge scores how confidently a text is classified as toxic
// language, in [0, 1].
type ToxicityJudge interface {
	Score(ctx context.Context, text string) (float64, error)
}

// LLMJudge classifies toxicity with a strict LLM evaluator.
type LLMJudge struct {
	provider provider.Provider
}

// NewLLMJudge creates a toxicity judge backed by the given provider.
func NewLLMJudge(prov provider.Provider) *LLMJudge {
	return &LLMJudge{provider: prov}
}

// Score asks the model for a toxicity verdict and returns its confidence.
// Non-toxic verdicts score 0 regardless of reported confidence.
func (j *LLMJudge) Score(ctx context.Context, text string) (float64, error) {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: `You are a strict content safety evaluator. Classify whether the text contains toxic language (insults, harassment, hate, threats). Return ONLY JSON: {"toxic": bool, "confidence": number between 0 and 1}.`},
		{Role: models.RoleUser, Content: text},
	}

	resp, err := j.provider.ChatCompletion(ctx, messages, nil)
	if err != nil {
		return 0, fmt.Errorf("toxicity judge call failed: %w", err)
	}

	var verdict struct {
		Toxic      bool    `json:"toxic"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &verdict); err != nil {
		return 0, fmt.Errorf("toxicity judge returned unparseable verdict: %w", err)
	}
	if !verdict.Toxic {
		return 0, nil
	}
	return verdict.Confidence, nil
}

// Gate validates newsletter drafts before persistence: a case-sensitive
// denylist check and a toxicity classification against a fixed confidence
// threshold. Both checks run on every draft.
type Gate struct {
	banned    []string
	threshold float64
	judge     ToxicityJudge
	logger    *log.Logger
}

// NewGate builds the output gate from configuration.
func NewGate(cfg config.GuardConfig, judge ToxicityJudge, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(log.Writer(), "[GUARD] ", log.LstdFlags)
	}
	return &Gate{
		banned:    cfg.BannedWords,
		threshold: cfg.ToxicityThreshold,
		judge:     judge,
		logger:    logger,
	}
}

// Validate returns an *OutputValidationError when the text trips the denylist
// or the toxicity threshold. Judge transport failures propagate as-is unless
// the denylist already rejected the draft.
func (g *Gate) Validate(ctx context.Context, text string) error {
	var reasons []string

	for _, word := range g.banned {
		if strings.Contains(text, word) {
			reasons = append(reasons, fmt.Sprintf("contains banned word %q", word))
		}
	}

	if g.judge != nil {
		score, err := g.judge.Score(ctx, text)
		if err != nil {
			if len(reasons) > 0 {
				g.logger.Printf("toxicity check skipped after denylist rejection: %v", err)
				return &OutputValidationError{Reasons: reasons}
			}
			return err
		}
		if score >= g.threshold {
			reasons = append(reasons, fmt.Sprintf("classified as toxic language (confidence %.2f)", score))
		}
	}

	if len(reasons) > 0 {
		g.logger.Printf("draft rejected: %s", strings.Join(reasons, "; "))
		return &OutputValidationError{Reasons: reasons}
	}
	return nil
}
