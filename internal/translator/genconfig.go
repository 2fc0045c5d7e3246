package translator

import (
	"github.com/Catfish872/catfishAntigravity2API/internal/config"
	"github.com/Catfish872/catfishAntigravity2API/internal/registry"
)

// thinkingBudgetTokens is the fixed reasoning budget applied whenever the
// reasoning channel is enabled.
const thinkingBudgetTokens = 24576

// turnStopSequences are the turn-boundary markers installed on every request.
var turnStopSequences = []string{"<|user|>", "<|assistant|>"}

// BuildGenerationConfig maps client sampling parameters onto the upstream
// generation config. Client values win over configured defaults. Exactly one
// candidate is requested.
func BuildGenerationConfig(req *ChatRequest, resolvedModel string, thinking bool, defaults config.GenerationDefaults) GenerationConfig {
	gen := GenerationConfig{
		Temperature:     pickFloat(req.Temperature, defaults.Temperature),
		TopP:            pickFloat(req.TopP, defaults.TopP),
		TopK:            pickInt(req.TopK, defaults.TopK),
		MaxOutputTokens: pickInt(req.MaxTokens, defaults.MaxOutputTokens),
		CandidateCount:  1,
		StopSequences:   append([]string(nil), turnStopSequences...),
	}

	if thinking {
		gen.ThinkingConfig = &ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  thinkingBudgetTokens,
		}
		// The Claude family rejects topP when thinking is enabled.
		if registry.IsClaudeModel(resolvedModel) {
			gen.TopP = nil
		}
	}

	return gen
}

func pickFloat(client, fallback *float64) *float64 {
	if client != nil {
		v := *client
		return &v
	}
	if fallback != nil {
		v := *fallback
		return &v
	}
	return nil
}

func pickInt(client, fallback *int) *int {
	if client != nil {
		v := *client
		return &v
	}
	if fallback != nil {
		v := *fallback
		return &v
	}
	return nil
}
