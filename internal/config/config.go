// Package config loads and watches the proxy configuration file.
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full proxy configuration. Fields map 1:1 to the YAML file.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// APIKeys guards all /v1 routes. Empty means no inbound auth.
	APIKeys []string `yaml:"api-keys"`

	Upstream   Upstream           `yaml:"upstream"`
	Generation GenerationDefaults `yaml:"generation-defaults"`

	// DefaultSystemInstruction is used when the client sends no system message.
	DefaultSystemInstruction string `yaml:"default-system-instruction"`

	Logging Logging `yaml:"logging"`
}

// Upstream describes how to reach the Antigravity v1internal endpoints.
type Upstream struct {
	BaseURL         string `yaml:"base-url"`
	CredentialsFile string `yaml:"credentials-file"`
	// ProjectID overrides the project recorded in the credentials file.
	ProjectID string `yaml:"project-id"`
	UserAgent string `yaml:"user-agent"`
	// RequestTimeoutSeconds bounds non-streaming upstream calls. Streaming
	// calls are bounded only by the client connection.
	RequestTimeoutSeconds int `yaml:"request-timeout-seconds"`
}

// GenerationDefaults supplies sampling values for fields the client omits.
type GenerationDefaults struct {
	Temperature     *float64 `yaml:"temperature"`
	TopP            *float64 `yaml:"top-p"`
	TopK            *int     `yaml:"top-k"`
	MaxOutputTokens *int     `yaml:"max-output-tokens"`
}

// Logging controls the logrus setup.
type Logging struct {
	Level string `yaml:"level"`
	// File enables rotating file output when set; empty logs to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
}

const (
	defaultPort             = 8317
	defaultUpstreamBaseURL  = "https://cloudcode-pa.googleapis.com"
	defaultUpstreamUA       = "antigravity/1.104.0 darwin/arm64"
	defaultSystemInstructon = "You are a helpful assistant."
)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = defaultUpstreamBaseURL
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = defaultUpstreamUA
	}
	if c.DefaultSystemInstruction == "" {
		c.DefaultSystemInstruction = defaultSystemInstructon
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Store holds the live configuration and republishes it on file changes.
// Handlers read through Current so key and default changes apply without
// a restart; structural fields (port, upstream base URL) need one.
type Store struct {
	path    string
	current atomic.Pointer[Config]
}

// NewStore wraps an already loaded configuration.
func NewStore(path string, cfg *Config) *Store {
	s := &Store{path: path}
	s.current.Store(cfg)
	return s
}

// Current returns the most recently loaded configuration.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Watch reloads the file whenever it is rewritten. It blocks until the
// watcher fails and is meant to run in its own goroutine.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err = watcher.Add(s.path); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, errLoad := Load(s.path)
			if errLoad != nil {
				log.Warnf("config reload failed, keeping previous config: %v", errLoad)
				continue
			}
			s.current.Store(cfg)
			log.Infof("config reloaded from %s", s.path)
		case errWatch, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("config watcher error: %v", errWatch)
		}
	}
}
