package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Catfish872/catfishAntigravity2API/internal/translator"
	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

// ResponseMeta holds the identity shared by every chunk of one response.
// It is minted once per request so that id, created and model stay stable
// across the whole stream.
type ResponseMeta struct {
	ID      string
	Created int64
	Model   string
}

// NewResponseMeta mints the response identity for a request. Model is the
// name the client asked for, not the resolved upstream name.
func NewResponseMeta(model string) ResponseMeta {
	return ResponseMeta{
		ID:      "chatcmpl-" + uuid.NewString(),
		Created: time.Now().Unix(),
		Model:   model,
	}
}

func (m ResponseMeta) chunk(delta map[string]any, finishReason any, usage *upstream.Usage) map[string]any {
	out := map[string]any{
		"id":      m.ID,
		"object":  "chat.completion.chunk",
		"created": m.Created,
		"model":   m.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"delta":         delta,
				"finish_reason": finishReason,
			},
		},
	}
	if usage != nil {
		out["usage"] = usageBody(usage)
	}
	return out
}

func usageBody(u *upstream.Usage) map[string]any {
	body := map[string]any{
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
	}
	if u.ThoughtsTokens > 0 {
		body["completion_tokens_details"] = map[string]any{
			"reasoning_tokens": u.ThoughtsTokens,
		}
	}
	return body
}

// Stream drains the upstream event channel and writes SSE chunks in the
// OpenAI chat-completion format, finishing with a terminal chunk and the
// [DONE] marker. A failure after streaming has begun cannot change the
// status line, so it is surfaced in-band as a content delta followed by a
// normal "stop" termination.
func Stream(w io.Writer, flusher http.Flusher, meta ResponseMeta, events <-chan upstream.Event) {
	sawToolCalls := false
	toolIndex := 0
	var usage *upstream.Usage

	for ev := range events {
		if ev.Err != nil {
			log.Errorf("stream relay: upstream failure mid-stream: %v", ev.Err)
			writeChunk(w, flusher, meta.chunk(map[string]any{
				"content": fmt.Sprintf("\n\n[Error: %v]", ev.Err),
			}, nil, nil))
			writeChunk(w, flusher, meta.chunk(map[string]any{}, "stop", usage))
			writeDone(w, flusher)
			return
		}
		if ev.Usage != nil {
			usage = ev.Usage
		}
		switch ev.Kind {
		case upstream.EventText:
			writeChunk(w, flusher, meta.chunk(map[string]any{"content": ev.Text}, nil, nil))
		case upstream.EventThinking:
			writeChunk(w, flusher, meta.chunk(map[string]any{"reasoning_content": ev.Text}, nil, nil))
		case upstream.EventToolCall:
			writeChunk(w, flusher, meta.chunk(map[string]any{
				"tool_calls": []map[string]any{toolCallDelta(toolIndex, ev.ToolCall)},
			}, nil, nil))
			toolIndex++
			sawToolCalls = true
		case upstream.EventFinish:
			// finish reason is derived from what was relayed, terminal
			// chunk goes out after the channel drains
		}
	}

	finish := "stop"
	if sawToolCalls {
		finish = "tool_calls"
	}
	writeChunk(w, flusher, meta.chunk(map[string]any{}, finish, usage))
	writeDone(w, flusher)
}

func toolCallDelta(index int, call *translator.ToolCall) map[string]any {
	return map[string]any{
		"index": index,
		"id":    call.ID,
		"type":  "function",
		"function": map[string]any{
			"name":      call.Function.Name,
			"arguments": call.Function.Arguments,
		},
	}
}

func writeChunk(w io.Writer, flusher http.Flusher, chunk map[string]any) {
	data, err := json.Marshal(chunk)
	if err != nil {
		log.Errorf("stream relay: marshal chunk: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	if flusher != nil {
		flusher.Flush()
	}
}

func writeDone(w io.Writer, flusher http.Flusher) {
	io.WriteString(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

// BuildCompletion assembles the non-streaming chat.completion body from a
// batched upstream reply.
func BuildCompletion(meta ResponseMeta, reply *upstream.Reply) map[string]any {
	message := map[string]any{
		"role":    "assistant",
		"content": reply.Content,
	}
	if reply.Reasoning != "" {
		message["reasoning_content"] = reply.Reasoning
	}
	finish := "stop"
	if len(reply.ToolCalls) > 0 {
		finish = "tool_calls"
		calls := make([]map[string]any, 0, len(reply.ToolCalls))
		for i := range reply.ToolCalls {
			call := map[string]any{
				"id":   reply.ToolCalls[i].ID,
				"type": "function",
				"function": map[string]any{
					"name":      reply.ToolCalls[i].Function.Name,
					"arguments": reply.ToolCalls[i].Function.Arguments,
				},
			}
			calls = append(calls, call)
		}
		message["tool_calls"] = calls
	}
	out := map[string]any{
		"id":      meta.ID,
		"object":  "chat.completion",
		"created": meta.Created,
		"model":   meta.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       message,
				"finish_reason": finish,
			},
		},
	}
	if reply.Usage != nil {
		out["usage"] = usageBody(reply.Usage)
	}
	return out
}
