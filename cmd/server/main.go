package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
	"github.com/Catfish872/catfishAntigravity2API/internal/logging"
	"github.com/Catfish872/catfishAntigravity2API/internal/server"
	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// a local .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Logging)

	store := config.NewStore(*configPath, cfg)
	go func() {
		if err := store.Watch(); err != nil {
			log.Warnf("config watch disabled: %v", err)
		}
	}()

	creds := upstream.NewFileCredentialProvider(cfg.Upstream)
	invoker := upstream.NewHTTPInvoker(cfg.Upstream)
	srv := server.New(store, creds, invoker)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	go func() {
		log.Infof("listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
