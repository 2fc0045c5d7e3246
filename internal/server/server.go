// Package server wires the OpenAI-compatible HTTP surface onto the
// translation and relay layers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

type Server struct {
	store   *config.Store
	creds   upstream.CredentialProvider
	invoker upstream.Invoker
	engine  *gin.Engine
}

func New(store *config.Store, creds upstream.CredentialProvider, invoker upstream.Invoker) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		store:   store,
		creds:   creds,
		invoker: invoker,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), accessLog(), metricsMiddleware())
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1", apiKeyAuth(store))
	v1.GET("/models", s.handleModels)
	v1.POST("/chat/completions", s.handleChatCompletions)

	return s
}

// Handler exposes the router for an http.Server or a test client.
func (s *Server) Handler() http.Handler {
	return s.engine
}
