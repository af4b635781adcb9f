package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ytapi "google.golang.org/api/youtube/v3"

	"bestvids/internal/fsutil"
)

// consentState is sent as the OAuth state parameter. The code is pasted back
// by hand, so there is no redirect whose state could be checked.
const consentState = "bestvids"

// OAuthAuthorizer runs the installed-app OAuth2 flow for the read-only
// YouTube scope. Tokens are cached on disk and reused until they can no
// longer be refreshed.
type OAuthAuthorizer struct {
	// SecretsPath is the client_secrets.json downloaded from the Google
	// API console.
	SecretsPath string
	// TokenPath is where the token is cached.
	TokenPath string
	// Prompt receives the consent URL. Input supplies the pasted code.
	Prompt io.Writer
	Input  io.Reader
}

// NewOAuthAuthorizer returns an authorizer that prompts on stderr and reads
// the authorization code from stdin.
func NewOAuthAuthorizer(secretsPath, tokenPath string) *OAuthAuthorizer {
	return &OAuthAuthorizer{
		SecretsPath: secretsPath,
		TokenPath:   tokenPath,
		Prompt:      os.Stderr,
		Input:       os.Stdin,
	}
}

// Client returns a client carrying the cached token, running the interactive
// exchange first when no usable token is cached.
func (a *OAuthAuthorizer) Client(ctx context.Context) (*http.Client, error) {
	secrets, err := os.ReadFile(a.SecretsPath)
	if err != nil {
		return nil, &AuthorizationError{Op: "read client secrets", Err: err}
	}
	conf, err := google.ConfigFromJSON(secrets, ytapi.YoutubeReadonlyScope)
	if err != nil {
		return nil, &AuthorizationError{Op: "parse client secrets", Err: err}
	}

	tok, err := loadToken(a.TokenPath)
	if err != nil {
		log.Debug().Err(err).Str("path", a.TokenPath).Msg("auth: no usable cached token")

		tok, err = a.exchange(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(a.TokenPath, tok); err != nil {
			return nil, &AuthorizationError{Op: "save token", Err: err}
		}
	}

	src := &persistingSource{
		base: conf.TokenSource(ctx, tok),
		path: a.TokenPath,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

func (a *OAuthAuthorizer) exchange(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	url := conf.AuthCodeURL(consentState, oauth2.AccessTypeOffline)
	fmt.Fprintf(a.Prompt, "Go to the following link in your browser, then paste the authorization code:\n\n%s\n\nCode: ", url)

	code, err := bufio.NewReader(a.Input).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err == nil || errors.Is(err, io.EOF) {
			err = errors.New("no authorization code entered")
		}
		return nil, &AuthorizationError{Op: "read code", Err: err}
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthorizationError{Op: "exchange", Err: err}
	}
	log.Info().Str("path", a.TokenPath).Msg("auth: authorization granted")
	return tok, nil
}

// loadToken reads a cached token. A token that has expired and cannot be
// refreshed is reported as an error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("token %s expired and has no refresh token", path)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(path, data, 0600)
}

// persistingSource writes refreshed tokens back to the cache.
type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, &AuthorizationError{Op: "refresh token", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("auth: failed to cache refreshed token")
		}
	}
	return tok, nil
}
