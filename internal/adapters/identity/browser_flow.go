// Package identity runs the third-party sign-in flow: it opens an
// authorization URL in the user's browser, waits for the redirect on a local
// callback listener and returns the provider's identity token for exchange at
// the backend.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
)

const (
	challengeMethodS256   = "S256"
	maxTokenResponseBytes = 1 << 20
	callbackPath          = "/auth/callback"
)

var (
	ErrStateMismatch   = errors.New("sign-in callback state mismatch")
	ErrCallbackTimeout = errors.New("timed out waiting for sign-in callback")
)

// Config describes the provider's OAuth endpoints.
type Config struct {
	Issuer     string
	ClientID   string
	ListenAddr string
	Timeout    time.Duration
	// Prompt receives the URL the user must open. Defaults to stderr-less
	// no-op when nil.
	Prompt func(authURL string)
}

// Provider implements ports.IdentityProvider over a browser-based
// authorization-code flow with PKCE.
type Provider struct {
	cfg    Config
	client *http.Client
}

var _ ports.IdentityProvider = (*Provider)(nil)

func NewProvider(cfg Config, client *http.Client) (*Provider, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client id is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Provider{cfg: cfg, client: client}, nil
}

// Authenticate runs the full popup-equivalent flow and returns the identity
// token plus the profile claims embedded in it.
func (p *Provider) Authenticate(ctx context.Context) (domain.IdentityToken, error) {
	verifier, challenge, err := newPKCEPair()
	if err != nil {
		return domain.IdentityToken{}, fmt.Errorf("generate pkce: %w", err)
	}
	state, err := randomToken()
	if err != nil {
		return domain.IdentityToken{}, fmt.Errorf("generate state: %w", err)
	}

	server, err := startCallbackServer(p.cfg.ListenAddr, state)
	if err != nil {
		return domain.IdentityToken{}, fmt.Errorf("start callback server: %w", err)
	}
	defer func() { _ = server.Close() }()

	authURL, err := p.authorizationURL(server.redirectURI(), state, challenge)
	if err != nil {
		return domain.IdentityToken{}, err
	}
	if p.cfg.Prompt != nil {
		p.cfg.Prompt(authURL)
	}

	code, err := server.waitForCode(ctx, p.cfg.Timeout)
	if err != nil {
		return domain.IdentityToken{}, fmt.Errorf("wait for sign-in callback: %w", err)
	}

	idToken, err := p.exchangeCode(ctx, server.redirectURI(), code, verifier)
	if err != nil {
		return domain.IdentityToken{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	claims := parseIDTokenClaims(idToken)

	return domain.IdentityToken{
		Token:    idToken,
		Email:    claims.Email,
		FullName: claims.Name,
		Avatar:   claims.Picture,
	}, nil
}

// SignOut is best effort; the flow keeps no provider-side state on this
// machine beyond the token already discarded by the caller.
func (p *Provider) SignOut(context.Context) error { return nil }

func (p *Provider) authorizationURL(redirectURI, state, challenge string) (string, error) {
	parsed, err := url.Parse(strings.TrimRight(p.cfg.Issuer, "/") + "/oauth/authorize")
	if err != nil {
		return "", fmt.Errorf("parse issuer url: %w", err)
	}

	q := parsed.Query()
	q.Set("response_type", "code")
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "openid profile email")
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", challengeMethodS256)
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

func (p *Provider) exchangeCode(ctx context.Context, redirectURI, code, verifier string) (string, error) {
	endpoint := strings.TrimRight(p.cfg.Issuer, "/") + "/oauth/token"

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", redirectURI)
	values.Set("client_id", p.cfg.ClientID)
	values.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokens struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokens.IDToken == "" {
		return "", errors.New("token response missing id_token")
	}

	return tokens.IDToken, nil
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// parseIDTokenClaims decodes the claims segment without verifying the
// signature; verification is the backend's responsibility during exchange.
func parseIDTokenClaims(token string) idTokenClaims {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return idTokenClaims{}
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return idTokenClaims{}
	}

	var claims idTokenClaims
	_ = json.Unmarshal(decoded, &claims)
	return claims
}

func newPKCEPair() (verifier, challenge string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}

	verifier = base64.RawURLEncoding.EncodeToString(raw)
	hash := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(hash[:]), nil
}

func randomToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

type callbackServer struct {
	expectedState string
	listener      net.Listener
	server        *http.Server
	resultCh      chan callbackResult
	resultOnce    sync.Once
	closeOnce     sync.Once
}

type callbackResult struct {
	code string
	err  error
}

func startCallbackServer(listenAddr, expectedState string) (*callbackServer, error) {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	cb := &callbackServer{
		expectedState: expectedState,
		listener:      listener,
		resultCh:      make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handleCallback)
	cb.server = &http.Server{Handler: mux}

	go func() {
		if serveErr := cb.server.Serve(cb.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			cb.trySendResult(callbackResult{err: serveErr})
		}
	}()

	return cb, nil
}

func (c *callbackServer) redirectURI() string {
	if tcpAddr, ok := c.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d%s", tcpAddr.Port, callbackPath)
	}
	return "http://localhost" + callbackPath
}

func (c *callbackServer) waitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case result := <-c.resultCh:
		return result.code, result.err
	case <-time.After(timeout):
		return "", ErrCallbackTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *callbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("state") != c.expectedState {
		c.trySendResult(callbackResult{err: ErrStateMismatch})
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	if flowErr := query.Get("error"); flowErr != "" {
		if description := query.Get("error_description"); description != "" {
			flowErr = flowErr + ": " + description
		}
		c.trySendResult(callbackResult{err: errors.New(flowErr)})
		http.Error(w, "sign-in error", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		c.trySendResult(callbackResult{err: errors.New("missing authorization code")})
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	c.trySendResult(callbackResult{code: code})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Sign-in complete. You can close this window."))
}

func (c *callbackServer) trySendResult(result callbackResult) {
	c.resultOnce.Do(func() {
		c.resultCh <- result
	})
}
