package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Catfish872/catfishAntigravity2API/internal/registry"
	"github.com/Catfish872/catfishAntigravity2API/internal/relay"
	"github.com/Catfish872/catfishAntigravity2API/internal/translator"
	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

func (s *Server) handleModels(c *gin.Context) {
	cred, err := s.creds.Credential(c.Request.Context())
	if err != nil {
		log.Errorf("models: credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	names, err := s.invoker.ListModels(c.Request.Context(), cred)
	if err != nil {
		log.Errorf("models: upstream fetch: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The provider report is authoritative; the local catalog contributes
	// the alias names (thinking variants and such) the upstream never lists.
	seen := make(map[string]bool, len(names))
	merged := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	for _, name := range registry.ClientModels() {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}

	created := time.Now().Unix()
	data := make([]gin.H, 0, len(merged))
	for _, name := range merged {
		data = append(data, gin.H{
			"id":       name,
			"object":   "model",
			"created":  created,
			"owned_by": "antigravity",
		})
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "data": data})
}

func (s *Server) handleChatCompletions(c *gin.Context) {
	var req translator.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages is required"})
		return
	}

	ctx := c.Request.Context()
	cred, err := s.creds.Credential(ctx)
	if err != nil {
		writeClassified(c, err)
		return
	}

	cfg := s.store.Current()
	sec := translator.SecurityContext{
		ProjectID: cred.ProjectID,
		SessionID: cred.SessionID,
	}
	if cfg.Upstream.ProjectID != "" {
		sec.ProjectID = cfg.Upstream.ProjectID
	}
	env := translator.AssembleRequest(&req, sec, translator.AssembleOptions{
		Defaults:                 cfg.Generation,
		DefaultSystemInstruction: cfg.DefaultSystemInstruction,
		UserAgent:                cfg.Upstream.UserAgent,
	})
	meta := relay.NewResponseMeta(req.Model)

	if req.Stream {
		s.streamCompletion(c, cred, env, meta)
		return
	}

	reply, err := s.invoker.Generate(ctx, cred, env)
	if err != nil {
		writeClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, relay.BuildCompletion(meta, reply))
}

func (s *Server) streamCompletion(c *gin.Context, cred *upstream.Credential, env *translator.Envelope, meta relay.ResponseMeta) {
	events, err := s.invoker.GenerateStream(c.Request.Context(), cred, env)
	if err != nil {
		// headers not sent yet, a plain JSON error is still possible
		writeClassified(c, err)
		return
	}

	activeStreams.Inc()
	defer activeStreams.Dec()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	relay.Stream(c.Writer, c.Writer, meta, events)
}

func writeClassified(c *gin.Context, err error) {
	log.Errorf("chat completion: %v", err)
	classified := relay.Classify(err)
	c.JSON(classified.Status, classified.Body)
}
