package upstream

import (
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Catfish872/catfishAntigravity2API/internal/translator"
)

// EventKind classifies one provider-native stream event.
type EventKind string

const (
	EventText     EventKind = "text"
	EventThinking EventKind = "thinking"
	EventToolCall EventKind = "tool_call"
	EventFinish   EventKind = "finish"
)

// Event is one unit of the upstream stream. Err is set instead of Kind when
// the stream fails mid-flight.
type Event struct {
	Kind     EventKind
	Text     string
	ToolCall *translator.ToolCall
	Usage    *Usage
	Err      error
}

// parseChunk decodes one upstream SSE payload into events, preserving part
// order. Antigravity wraps the Gemini response in a "response" envelope;
// bare responses are handled too.
func parseChunk(payload []byte) []Event {
	if !gjson.ValidBytes(payload) {
		return nil
	}
	root := gjson.ParseBytes(payload)
	if wrapped := root.Get("response"); wrapped.Exists() {
		root = wrapped
	}

	var events []Event
	usage := parseUsage(root)

	candidate := root.Get("candidates.0")
	for _, part := range candidate.Get("content.parts").Array() {
		if text := part.Get("text"); text.Exists() && text.String() != "" {
			kind := EventText
			if part.Get("thought").Bool() {
				kind = EventThinking
			}
			events = append(events, Event{Kind: kind, Text: text.String()})
			continue
		}
		if fc := part.Get("functionCall"); fc.Exists() {
			name := fc.Get("name").String()
			if name == "" {
				continue
			}
			args := fc.Get("args").Raw
			if args == "" {
				args = "{}"
			}
			id := fc.Get("id").String()
			if id == "" {
				id = genToolCallID(name)
			}
			events = append(events, Event{Kind: EventToolCall, ToolCall: &translator.ToolCall{
				ID:       id,
				Type:     "function",
				Function: translator.FunctionCall{Name: name, Arguments: args},
			}})
		}
	}

	if fr := candidate.Get("finishReason"); fr.Exists() && fr.String() != "" {
		events = append(events, Event{Kind: EventFinish, Usage: usage})
	}
	return events
}

// parseReply assembles a non-streaming response body into one Reply.
func parseReply(data []byte) *Reply {
	root := gjson.ParseBytes(data)
	if wrapped := root.Get("response"); wrapped.Exists() {
		root = wrapped
	}

	reply := &Reply{Usage: parseUsage(root)}
	for _, part := range root.Get("candidates.0.content.parts").Array() {
		if text := part.Get("text"); text.Exists() && text.String() != "" {
			if part.Get("thought").Bool() {
				reply.Reasoning += text.String()
			} else {
				reply.Content += text.String()
			}
			continue
		}
		if fc := part.Get("functionCall"); fc.Exists() {
			name := fc.Get("name").String()
			if name == "" {
				continue
			}
			args := fc.Get("args").Raw
			if args == "" {
				args = "{}"
			}
			id := fc.Get("id").String()
			if id == "" {
				id = genToolCallID(name)
			}
			reply.ToolCalls = append(reply.ToolCalls, translator.ToolCall{
				ID:       id,
				Type:     "function",
				Function: translator.FunctionCall{Name: name, Arguments: args},
			})
		}
	}
	return reply
}

func parseUsage(root gjson.Result) *Usage {
	u := root.Get("usageMetadata")
	if !u.Exists() {
		return nil
	}
	return &Usage{
		PromptTokens:     int(u.Get("promptTokenCount").Int()),
		CompletionTokens: int(u.Get("candidatesTokenCount").Int()),
		TotalTokens:      int(u.Get("totalTokenCount").Int()),
		ThoughtsTokens:   int(u.Get("thoughtsTokenCount").Int()),
	}
}

func parseModelList(data []byte) []string {
	var ids []string
	for _, m := range gjson.GetBytes(data, "models").Array() {
		id := m.Get("name").String()
		if id == "" {
			id = m.String()
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func genToolCallID(name string) string {
	return name + "-" + uuid.NewString()[:8]
}
