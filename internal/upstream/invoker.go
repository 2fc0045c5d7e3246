package upstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
	"github.com/Catfish872/catfishAntigravity2API/internal/translator"
)

const (
	generatePath    = "/v1internal:generateContent"
	streamPath      = "/v1internal:streamGenerateContent"
	listModelsPath  = "/v1internal:fetchAvailableModels"
	scannerBufBytes = 10 * 1024 * 1024
)

// StatusError carries the HTTP status an upstream call failed with.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Message)
}

// Reply is a complete non-streaming upstream answer.
type Reply struct {
	Content   string
	Reasoning string
	ToolCalls []translator.ToolCall
	Usage     *Usage
}

// Usage mirrors the upstream usageMetadata block.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ThoughtsTokens   int
}

// Invoker performs the upstream exchange for an assembled envelope.
type Invoker interface {
	Generate(ctx context.Context, cred *Credential, env *translator.Envelope) (*Reply, error)
	GenerateStream(ctx context.Context, cred *Credential, env *translator.Envelope) (<-chan Event, error)
	ListModels(ctx context.Context, cred *Credential) ([]string, error)
}

// HTTPInvoker is the production Invoker over the v1internal HTTP API.
type HTTPInvoker struct {
	baseURL   string
	userAgent string
	client    *http.Client
	// streamClient has no overall timeout; streams are bounded by the
	// client connection via the request context.
	streamClient *http.Client
}

// NewHTTPInvoker builds an invoker from the upstream configuration.
func NewHTTPInvoker(cfg config.Upstream) *HTTPInvoker {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &HTTPInvoker{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:    cfg.UserAgent,
		client:       &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

func (inv *HTTPInvoker) newRequest(ctx context.Context, cred *Credential, path string, body []byte, stream bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inv.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("User-Agent", inv.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

// Generate performs a non-streaming call and assembles the single reply.
func (inv *HTTPInvoker) Generate(ctx context.Context, cred *Credential, env *translator.Envelope) (*Reply, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	req, err := inv.newRequest(ctx, cred, generatePath, body, false)
	if err != nil {
		return nil, err
	}
	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("upstream: close response body: %v", errClose)
		}
	}()

	reader, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Message: string(data)}
	}
	return parseReply(data), nil
}

// GenerateStream performs a streaming call and yields provider-native events
// in upstream order. The channel closes when the upstream stream ends or the
// context is canceled.
func (inv *HTTPInvoker) GenerateStream(ctx context.Context, cred *Credential, env *translator.Envelope) (<-chan Event, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	req, err := inv.newRequest(ctx, cred, streamPath+"?alt=sse", body, true)
	if err != nil {
		return nil, err
	}
	resp, err := inv.streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()
		reader, errDecode := decodedBody(resp)
		if errDecode != nil {
			return nil, &StatusError{Code: resp.StatusCode, Message: errDecode.Error()}
		}
		data, _ := io.ReadAll(reader)
		return nil, &StatusError{Code: resp.StatusCode, Message: string(data)}
	}

	reader, err := decodedBody(resp)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() {
			if errClose := resp.Body.Close(); errClose != nil {
				log.Errorf("upstream: close stream body: %v", errClose)
			}
		}()

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(nil, scannerBufBytes)
		for scanner.Scan() {
			payload := ssePayload(scanner.Bytes())
			if payload == nil {
				continue
			}
			if string(payload) == "[DONE]" {
				return
			}
			for _, ev := range parseChunk(payload) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
		if errScan := scanner.Err(); errScan != nil && ctx.Err() == nil {
			out <- Event{Err: errScan}
		}
	}()
	return out, nil
}

// ListModels returns the provider-reported model ids.
func (inv *HTTPInvoker) ListModels(ctx context.Context, cred *Credential) ([]string, error) {
	req, err := inv.newRequest(ctx, cred, listModelsPath, []byte("{}"), false)
	if err != nil {
		return nil, err
	}
	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Message: string(data)}
	}
	return parseModelList(data), nil
}

// decodedBody unwraps Content-Encoding set by the upstream. The transport's
// automatic decompression is off because Accept-Encoding is set explicitly.
func decodedBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// ssePayload strips the "data:" prefix from an SSE line. Non-data lines
// (comments, blanks, event names) return nil.
func ssePayload(line []byte) []byte {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte("data:")) {
		return nil
	}
	return bytes.TrimSpace(line[len("data:"):])
}
