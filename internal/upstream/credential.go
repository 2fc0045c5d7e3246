// Package upstream talks to the Antigravity v1internal endpoints: credential
// acquisition, request transport and provider-native event decoding.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
)

// ErrNoCredential is returned when no usable upstream token can be obtained.
// The message doubles as the remediation hint surfaced to clients.
var ErrNoCredential = errors.New("no upstream credential available: run the Antigravity login flow and point credentials_file at the result")

// Credential is the security context for one upstream call. The core only
// reads it; refresh discipline lives here.
type Credential struct {
	AccessToken string
	ProjectID   string
	SessionID   string
}

// CredentialProvider supplies a fresh credential per request.
type CredentialProvider interface {
	Credential(ctx context.Context) (*Credential, error)
}

const googleTokenURL = "https://oauth2.googleapis.com/token"

// credentialsFile is the on-disk shape produced by the Antigravity login flow.
type credentialsFile struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	ProjectID    string `json:"project_id"`
}

// FileCredentialProvider refreshes an OAuth2 token from a credentials file.
// The file is loaded lazily so a missing file surfaces per-request as
// ErrNoCredential instead of failing startup. SessionID is minted once and
// stays stable for the process lifetime.
type FileCredentialProvider struct {
	cfg       config.Upstream
	sessionID string

	mu     sync.Mutex
	source oauth2.TokenSource

	group singleflight.Group
}

// NewFileCredentialProvider builds a provider for the configured
// credentials file.
func NewFileCredentialProvider(cfg config.Upstream) *FileCredentialProvider {
	return &FileCredentialProvider{cfg: cfg, sessionID: uuid.NewString()}
}

// Credential returns a valid token plus project and session identifiers.
// Concurrent refreshes collapse into a single upstream token exchange.
func (p *FileCredentialProvider) Credential(ctx context.Context) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err, _ := p.group.Do("token", func() (any, error) {
		return p.fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

func (p *FileCredentialProvider) fetch() (*Credential, error) {
	source, projectID, err := p.ensureSource()
	if err != nil {
		return nil, err
	}
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh failed: %v", ErrNoCredential, err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, ErrNoCredential
	}
	return &Credential{
		AccessToken: token.AccessToken,
		ProjectID:   projectID,
		SessionID:   p.sessionID,
	}, nil
}

func (p *FileCredentialProvider) ensureSource() (oauth2.TokenSource, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	projectID := strings.TrimSpace(p.cfg.ProjectID)
	if p.source != nil && projectID != "" {
		return p.source, projectID, nil
	}

	creds, err := loadCredentialsFile(p.cfg.CredentialsFile)
	if err != nil {
		return nil, "", err
	}
	if projectID == "" {
		projectID = strings.TrimSpace(creds.ProjectID)
	}

	if p.source == nil {
		oc := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		}
		seed := &oauth2.Token{RefreshToken: creds.RefreshToken, AccessToken: creds.AccessToken}
		// The source lives across requests; bind it to the background
		// context rather than one request's.
		p.source = oc.TokenSource(context.Background(), seed)
	}
	return p.source, projectID, nil
}

func loadCredentialsFile(path string) (*credentialsFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoCredential
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNoCredential, path, err)
	}
	var creds credentialsFile
	if err = json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrNoCredential, path, err)
	}
	if creds.RefreshToken == "" && creds.AccessToken == "" {
		return nil, ErrNoCredential
	}
	return &creds, nil
}
