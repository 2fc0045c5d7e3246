package translator

import (
	"testing"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildGenerationConfigClientWinsOverDefaults(t *testing.T) {
	defaults := config.GenerationDefaults{
		Temperature:     floatPtr(0.2),
		TopP:            floatPtr(0.5),
		MaxOutputTokens: intPtr(1024),
	}
	req := &ChatRequest{
		Temperature: floatPtr(0.9),
		MaxTokens:   intPtr(4096),
	}
	gen := BuildGenerationConfig(req, "gemini-2.5-flash", false, defaults)

	if *gen.Temperature != 0.9 {
		t.Errorf("Temperature = %v, client value must win", *gen.Temperature)
	}
	if *gen.TopP != 0.5 {
		t.Errorf("TopP = %v, default must fill the gap", *gen.TopP)
	}
	if *gen.MaxOutputTokens != 4096 {
		t.Errorf("MaxOutputTokens = %v", *gen.MaxOutputTokens)
	}
	if gen.TopK != nil {
		t.Errorf("TopK = %v, want nil when neither side sets it", *gen.TopK)
	}
	if gen.CandidateCount != 1 {
		t.Errorf("CandidateCount = %d, want 1", gen.CandidateCount)
	}
	if gen.ThinkingConfig != nil {
		t.Error("ThinkingConfig must be nil when thinking is off")
	}
}

func TestBuildGenerationConfigStopSequences(t *testing.T) {
	gen := BuildGenerationConfig(&ChatRequest{}, "gemini-2.5-flash", false, config.GenerationDefaults{})
	want := []string{"<|user|>", "<|assistant|>"}
	if len(gen.StopSequences) != len(want) {
		t.Fatalf("StopSequences = %v", gen.StopSequences)
	}
	for i := range want {
		if gen.StopSequences[i] != want[i] {
			t.Errorf("StopSequences[%d] = %q, want %q", i, gen.StopSequences[i], want[i])
		}
	}
}

func TestBuildGenerationConfigThinking(t *testing.T) {
	gen := BuildGenerationConfig(&ChatRequest{TopP: floatPtr(0.8)}, "gemini-3-pro-preview", true, config.GenerationDefaults{})
	if gen.ThinkingConfig == nil {
		t.Fatal("ThinkingConfig missing")
	}
	if !gen.ThinkingConfig.IncludeThoughts {
		t.Error("IncludeThoughts = false")
	}
	if gen.ThinkingConfig.ThinkingBudget != thinkingBudgetTokens {
		t.Errorf("ThinkingBudget = %d", gen.ThinkingConfig.ThinkingBudget)
	}
	if gen.TopP == nil || *gen.TopP != 0.8 {
		t.Error("TopP must survive thinking on non-Claude models")
	}
}

func TestBuildGenerationConfigClaudeThinkingDropsTopP(t *testing.T) {
	gen := BuildGenerationConfig(&ChatRequest{TopP: floatPtr(0.8)}, "claude-sonnet-4-5", true, config.GenerationDefaults{})
	if gen.TopP != nil {
		t.Errorf("TopP = %v, want nil for Claude with thinking enabled", *gen.TopP)
	}
}
