// Package registry maps client-facing model names onto upstream model names
// and derives per-model behavior flags from the name.
package registry

import "strings"

// modelAliases remaps client-facing names to the ids the upstream accepts.
// The mapping is intentionally asymmetric: thinking variants drop their
// "-thinking" suffix while preview models gain "-preview", matching the
// names the upstream actually serves.
var modelAliases = map[string]string{
	"claude-sonnet-4-5-thinking": "claude-sonnet-4-5",
	"claude-opus-4-5-thinking":   "claude-opus-4-5",
	"gemini-3-pro":               "gemini-3-pro-preview",
	"gemini-3-pro-thinking":      "gemini-3-pro-preview",
}

// clientModels is the static catalog exposed when the upstream list is not
// consulted. Order is stable for deterministic /v1/models output.
var clientModels = []string{
	"gemini-3-pro",
	"gemini-3-pro-thinking",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-image",
	"claude-sonnet-4-5",
	"claude-sonnet-4-5-thinking",
	"claude-opus-4-5",
	"claude-opus-4-5-thinking",
	"gpt-oss-120b",
}

// ResolveModel returns the upstream model id for a client-facing name.
// Unknown names resolve to themselves.
func ResolveModel(name string) string {
	if upstream, ok := modelAliases[strings.TrimSpace(name)]; ok {
		return upstream
	}
	return strings.TrimSpace(name)
}

// ThinkingEnabled reports whether the client-facing name selects the
// reasoning channel: explicit "-thinking" suffix, or a model that always
// reasons.
func ThinkingEnabled(name string) bool {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "-thinking") {
		return true
	}
	if name == "gemini-2.5-pro" {
		return true
	}
	return strings.HasPrefix(name, "gemini-3-pro")
}

// IsImageModel reports whether the model name selects image generation.
func IsImageModel(name string) bool {
	return strings.Contains(name, "-image")
}

// IsClaudeModel reports whether the resolved upstream id belongs to the
// Claude family, which rejects topP when thinking is enabled.
func IsClaudeModel(resolved string) bool {
	return strings.Contains(resolved, "claude")
}

// ClientModels returns the static catalog of client-facing model names.
func ClientModels() []string {
	out := make([]string, len(clientModels))
	copy(out, clientModels)
	return out
}
