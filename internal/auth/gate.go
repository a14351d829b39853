package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	callbackAddr       = ":8085"
	consentTimeout     = 5 * time.Minute
)

// Gate decides whether the generation service can be called with the
// credentials at hand, and can run the interactive consent flow when it
// cannot. Check never triggers interaction on its own.
type Gate struct {
	clientID     string
	clientSecret string
	tokenPath    string
}

func NewGate(clientID, clientSecret, tokenPath string) *Gate {
	return &Gate{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenPath:    tokenPath,
	}
}

// Check reports whether access to the generation service looks granted:
// either application-default credentials can mint a token, or a stored
// OAuth token exists. A false return with nil error is a clean denial; an
// error means the check itself could not run.
func (g *Gate) Check(ctx context.Context) (bool, error) {
	if creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope); err == nil {
		if _, err := creds.TokenSource.Token(); err == nil {
			return true, nil
		}
	}

	token, err := g.loadToken()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read stored token: %w", err)
	}

	return token.Valid() || token.RefreshToken != "", nil
}

// PromptInteractive kicks off the browser consent flow. Best effort: the
// caller does not wait for the outcome and re-requests generation after
// the flow completes.
func (g *Gate) PromptInteractive(ctx context.Context) {
	if g.clientID == "" || g.clientSecret == "" {
		slog.Warn("OAuth client not configured; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or provide application-default credentials")
		return
	}

	if err := g.runConsentFlow(ctx); err != nil {
		slog.Warn("authorization flow did not complete", "error", err)
		return
	}
	slog.Info("authorization complete, re-run the generation request")
}

// Authorize runs the consent flow and blocks until it finishes, unlike
// PromptInteractive which is fire and forget.
func (g *Gate) Authorize(ctx context.Context) error {
	if g.clientID == "" || g.clientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set in .env")
	}
	return g.runConsentFlow(ctx)
}

func (g *Gate) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.clientID,
		ClientSecret: g.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{cloudPlatformScope},
		RedirectURL:  "http://localhost:8085/callback",
	}
}

func (g *Gate) runConsentFlow(ctx context.Context) error {
	oauthConfig := g.oauthConfig()

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	slog.Info("opening browser for authorization", "url", authURL)
	_ = browser.OpenURL(authURL)

	select {
	case code := <-codeChan:
		token, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("exchange code: %w", err)
		}
		return g.saveToken(token)

	case err := <-errChan:
		return err

	case <-time.After(consentTimeout):
		return fmt.Errorf("authorization timed out")

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(g.tokenPath)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

func (g *Gate) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(g.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// HasStoredToken reports whether a token file exists, for status output.
func (g *Gate) HasStoredToken() bool {
	_, err := os.Stat(g.tokenPath)
	return err == nil
}
