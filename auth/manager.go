package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Schwab OAuth endpoints and settings.
const (
	AuthURL     = "https://api.schwabapi.com/v1/oauth/authorize"
	TokenURL    = "https://api.schwabapi.com/v1/oauth/token"
	RedirectURI = "https://127.0.0.1:8443/callback"
	Scope       = "readonly"
)

// ErrReauthorize indicates the refresh token itself was rejected or is
// missing; the interactive authorization flow has to run again.
var ErrReauthorize = errors.New("refresh token rejected, run authorize again")

// Error is an authentication failure: bad credentials, a rejected exchange,
// denied consent, or a missing/expired token.
type Error struct {
	Op  string // "load", "refresh", "exchange", "callback"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("auth %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Manager owns the OAuth token lifecycle for all profiles: the interactive
// authorization-code exchange, persistence, and transparent refresh.
type Manager struct {
	store     *Store
	appKey    string
	appSecret string

	authURL     string
	tokenURL    string
	redirectURI string

	http *resty.Client
	now  func() time.Time
	log  *slog.Logger
}

// NewManager returns a Manager using the given app credentials and token
// store.
func NewManager(appKey, appSecret string, store *Store) *Manager {
	return &Manager{
		store:       store,
		appKey:      appKey,
		appSecret:   appSecret,
		authURL:     AuthURL,
		tokenURL:    TokenURL,
		redirectURI: RedirectURI,
		http:        resty.New().SetTimeout(20 * time.Second),
		now:         time.Now,
		log:         slog.Default(),
	}
}

// GetValidToken returns a usable access token for the profile, refreshing
// and persisting a new TokenSet first when the stored one is expired or
// near expiry. A still-valid token is returned without any network call.
func (m *Manager) GetValidToken(ctx context.Context, profile string) (string, error) {
	ts, err := m.store.Load(profile)
	if err != nil {
		return "", &Error{Op: "load", Err: err}
	}

	now := m.now()
	if ts.Valid(now) {
		m.log.Debug("access token still valid",
			"profile", profile, "remaining", ts.Remaining(now).String())
		return ts.AccessToken, nil
	}

	m.log.Info("access token expired, refreshing", "profile", profile)
	fresh, err := m.refresh(ctx, profile, ts)
	if err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// refresh performs one refresh-token grant and persists the result. The old
// refresh token is carried over when the endpoint does not rotate it.
func (m *Manager) refresh(ctx context.Context, profile string, old *TokenSet) (*TokenSet, error) {
	if old.RefreshToken == "" {
		return nil, &Error{Op: "refresh", Err: ErrReauthorize}
	}

	fresh := &TokenSet{}
	resp, err := m.http.R().
		SetContext(ctx).
		SetBasicAuth(m.appKey, m.appSecret).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": old.RefreshToken,
		}).
		SetResult(fresh).
		Post(m.tokenURL)
	if err != nil {
		return nil, &Error{Op: "refresh", Err: err}
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
			return nil, &Error{Op: "refresh", Err: fmt.Errorf("%w (status %d)", ErrReauthorize, resp.StatusCode())}
		}
		return nil, &Error{Op: "refresh", Err: fmt.Errorf("token endpoint status %d: %s", resp.StatusCode(), resp.String())}
	}

	fresh.SavedAt = m.now().Unix()
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = old.RefreshToken
	}
	if err := m.store.Save(profile, fresh); err != nil {
		return nil, err
	}

	m.log.Info("access token refreshed", "profile", profile)
	return fresh, nil
}

// exchange trades an authorization code for tokens and persists them.
func (m *Manager) exchange(ctx context.Context, profile, code, verifier string) error {
	ts := &TokenSet{}
	resp, err := m.http.R().
		SetContext(ctx).
		SetBasicAuth(m.appKey, m.appSecret).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  m.redirectURI,
			"code_verifier": verifier,
		}).
		SetResult(ts).
		Post(m.tokenURL)
	if err != nil {
		return &Error{Op: "exchange", Err: err}
	}
	if resp.IsError() {
		return &Error{Op: "exchange", Err: fmt.Errorf("token endpoint status %d: %s", resp.StatusCode(), resp.String())}
	}

	ts.SavedAt = m.now().Unix()
	if err := m.store.Save(profile, ts); err != nil {
		return err
	}

	m.log.Info("tokens saved", "profile", profile, "path", m.store.Path(profile))
	return nil
}
