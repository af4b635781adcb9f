package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestAPIKeyAuthorizer(t *testing.T) {
	var gotKey, gotPart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotPart = r.URL.Query().Get("part")
	}))
	defer srv.Close()

	client, err := (&APIKeyAuthorizer{Key: "secret"}).Client(context.Background())
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	resp, err := client.Get(srv.URL + "/youtube/v3/videos?part=statistics")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotKey != "secret" {
		t.Errorf("key = %q, want secret", gotKey)
	}
	if gotPart != "statistics" {
		t.Errorf("part = %q, existing query was lost", gotPart)
	}
}

func TestAPIKeyAuthorizer_EmptyKey(t *testing.T) {
	_, err := (&APIKeyAuthorizer{}).Client(context.Background())
	if !errors.Is(err, ErrAuthorization) {
		t.Errorf("Client() error = %v, want ErrAuthorization", err)
	}
}

// oauthFixture serves a token endpoint and an API endpoint that echoes the
// bearer token it received.
type oauthFixture struct {
	srv         *httptest.Server
	secretsPath string
	tokenPath   string
	exchanges   int
	lastBearer  string
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()
	f := &oauthFixture{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			f.exchanges++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh-access","token_type":"Bearer","refresh_token":"fresh-refresh","expires_in":3600}`)
		default:
			f.lastBearer = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
	}))
	t.Cleanup(f.srv.Close)

	dir := t.TempDir()
	f.secretsPath = filepath.Join(dir, "client_secrets.json")
	f.tokenPath = filepath.Join(dir, "tokens", "oauth2-token.json")

	secrets := fmt.Sprintf(`{"installed":{"client_id":"cid","client_secret":"csecret",`+
		`"auth_uri":"%[1]s/auth","token_uri":"%[1]s/token","redirect_uris":["http://localhost"]}}`, f.srv.URL)
	if err := os.WriteFile(f.secretsPath, []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *oauthFixture) get(t *testing.T, client *http.Client) {
	t.Helper()
	resp, err := client.Get(f.srv.URL + "/api")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
}

func TestOAuthAuthorizer_InteractiveExchange(t *testing.T) {
	f := newOAuthFixture(t)
	var prompt bytes.Buffer
	a := &OAuthAuthorizer{
		SecretsPath: f.secretsPath,
		TokenPath:   f.tokenPath,
		Prompt:      &prompt,
		Input:       strings.NewReader("  the-code \n"),
	}

	client, err := a.Client(context.Background())
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	if !strings.Contains(prompt.String(), f.srv.URL+"/auth") {
		t.Errorf("prompt does not contain consent URL:\n%s", prompt.String())
	}
	if !strings.Contains(prompt.String(), "state="+consentState) {
		t.Errorf("prompt does not carry state %q:\n%s", consentState, prompt.String())
	}
	if !strings.Contains(prompt.String(), "youtube.readonly") {
		t.Errorf("prompt does not request read-only scope:\n%s", prompt.String())
	}
	if f.exchanges != 1 {
		t.Errorf("token exchanges = %d, want 1", f.exchanges)
	}

	info, err := os.Stat(f.tokenPath)
	if err != nil {
		t.Fatalf("token not cached: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token perm = %o, want 600", perm)
	}

	f.get(t, client)
	if f.lastBearer != "fresh-access" {
		t.Errorf("bearer = %q, want fresh-access", f.lastBearer)
	}
}

func TestOAuthAuthorizer_ReusesCachedToken(t *testing.T) {
	f := newOAuthFixture(t)
	cached := &oauth2.Token{
		AccessToken:  "cached-access",
		TokenType:    "Bearer",
		RefreshToken: "cached-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := saveToken(f.tokenPath, cached); err != nil {
		t.Fatal(err)
	}

	a := &OAuthAuthorizer{
		SecretsPath: f.secretsPath,
		TokenPath:   f.tokenPath,
		Prompt:      &bytes.Buffer{},
		Input:       strings.NewReader(""),
	}
	client, err := a.Client(context.Background())
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}

	f.get(t, client)
	if f.lastBearer != "cached-access" {
		t.Errorf("bearer = %q, want cached-access", f.lastBearer)
	}
	if f.exchanges != 0 {
		t.Errorf("token endpoint called %d times, want 0", f.exchanges)
	}
}

func TestOAuthAuthorizer_RefreshIsPersisted(t *testing.T) {
	f := newOAuthFixture(t)
	expired := &oauth2.Token{
		AccessToken:  "stale-access",
		TokenType:    "Bearer",
		RefreshToken: "cached-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}
	if err := saveToken(f.tokenPath, expired); err != nil {
		t.Fatal(err)
	}

	a := &OAuthAuthorizer{SecretsPath: f.secretsPath, TokenPath: f.tokenPath, Prompt: &bytes.Buffer{}, Input: strings.NewReader("")}
	client, err := a.Client(context.Background())
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	f.get(t, client)

	if f.lastBearer != "fresh-access" {
		t.Errorf("bearer = %q, want refreshed token", f.lastBearer)
	}
	data, err := os.ReadFile(f.tokenPath)
	if err != nil {
		t.Fatal(err)
	}
	var stored oauth2.Token
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.AccessToken != "fresh-access" {
		t.Errorf("cached access token = %q, want fresh-access", stored.AccessToken)
	}
}

func TestOAuthAuthorizer_Failures(t *testing.T) {
	f := newOAuthFixture(t)

	tests := []struct {
		name    string
		secrets string
		input   string
		wantOp  string
	}{
		{"missing secrets", filepath.Join(t.TempDir(), "nope.json"), "code\n", "read client secrets"},
		{"declined", f.secretsPath, "\n", "read code"},
		{"no input", f.secretsPath, "", "read code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &OAuthAuthorizer{
				SecretsPath: tt.secrets,
				TokenPath:   filepath.Join(t.TempDir(), "token.json"),
				Prompt:      &bytes.Buffer{},
				Input:       strings.NewReader(tt.input),
			}
			_, err := a.Client(context.Background())
			if !errors.Is(err, ErrAuthorization) {
				t.Fatalf("Client() error = %v, want ErrAuthorization", err)
			}
			var authErr *AuthorizationError
			if !errors.As(err, &authErr) || authErr.Op != tt.wantOp {
				t.Errorf("Client() error = %v, want op %q", err, tt.wantOp)
			}
		})
	}
}

func TestLoadToken_ExpiredWithoutRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := saveToken(path, &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadToken(path); err == nil {
		t.Error("loadToken() accepted an expired token without refresh token")
	}
}
