package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/browser"
)

// AuthorizeOptions controls the interactive authorization flow.
type AuthorizeOptions struct {
	// Manual skips the local callback server: the authorize URL is printed
	// and the user pastes the redirect URL back in. Useful on headless
	// machines or when the TLS certificates are not set up.
	Manual bool

	// CertFile and KeyFile are the TLS certificate pair the callback server
	// presents for the https redirect URI. Required unless Manual is set.
	CertFile string
	KeyFile  string

	// ListenAddr defaults to 127.0.0.1:8443, matching the redirect URI.
	ListenAddr string

	// Timeout bounds the wait for the browser callback. Defaults to 5m.
	Timeout time.Duration

	// OpenBrowser and Prompt exist for tests; they default to opening the
	// system browser and a terminal prompt.
	OpenBrowser func(url string) error
	Prompt      func(message string) (string, error)
}

// Authorize runs the authorization-code flow with PKCE for a profile and
// persists the resulting TokenSet. The consent step happens in the browser;
// the code comes back either through a local TLS callback server or, in
// manual mode, pasted by the user.
func (m *Manager) Authorize(ctx context.Context, profile string, opts AuthorizeOptions) error {
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:8443"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = browser.OpenURL
	}
	if opts.Prompt == nil {
		opts.Prompt = terminalPrompt
	}

	verifier, err := GenerateVerifier()
	if err != nil {
		return &Error{Op: "exchange", Err: err}
	}
	state, err := GenerateState()
	if err != nil {
		return &Error{Op: "exchange", Err: err}
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", m.appKey)
	params.Set("redirect_uri", m.redirectURI)
	params.Set("scope", Scope)
	params.Set("state", state)
	params.Set("code_challenge", CodeChallenge(verifier))
	params.Set("code_challenge_method", "S256")
	authorizeURL := m.authURL + "?" + params.Encode()

	fmt.Printf("Authorize URL:\n  %s\n\n", authorizeURL)

	var code string
	if opts.Manual {
		code, err = m.codeFromPrompt(authorizeURL, state, opts)
	} else {
		code, err = m.codeFromCallback(ctx, authorizeURL, state, opts)
	}
	if err != nil {
		return err
	}

	return m.exchange(ctx, profile, code, verifier)
}

// codeFromPrompt prints the authorize URL and reads the redirect URL back
// from the terminal.
func (m *Manager) codeFromPrompt(authorizeURL, state string, opts AuthorizeOptions) (string, error) {
	_ = opts.OpenBrowser(authorizeURL) // best effort, the URL is printed anyway

	answer, err := opts.Prompt("Paste the full redirect URL after approving access:")
	if err != nil {
		return "", &Error{Op: "callback", Err: err}
	}
	redirect, err := url.Parse(answer)
	if err != nil {
		return "", &Error{Op: "callback", Err: fmt.Errorf("parse redirect URL: %w", err)}
	}
	return codeFromQuery(redirect.Query(), state)
}

// codeFromCallback serves the https redirect URI locally and waits for the
// browser to deliver the authorization code.
func (m *Manager) codeFromCallback(ctx context.Context, authorizeURL, state string, opts AuthorizeOptions) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code, err := codeFromQuery(r.URL.Query(), state)
		if err != nil {
			http.Error(w, "Authorization failed. Check the console.", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Tokens received - you can close this tab.")
		}
		select {
		case results <- result{code: code, err: err}:
		default:
		}
	})

	srv := &http.Server{Addr: opts.ListenAddr, Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServeTLS(opts.CertFile, opts.KeyFile)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	_ = opts.OpenBrowser(authorizeURL)
	fmt.Println("Waiting for callback...")

	select {
	case res := <-results:
		if res.err != nil {
			return "", res.err
		}
		return res.code, nil
	case err := <-serveErr:
		return "", &Error{Op: "callback", Err: fmt.Errorf("callback server: %w", err)}
	case <-time.After(opts.Timeout):
		return "", &Error{Op: "callback", Err: fmt.Errorf("timed out after %s waiting for authorization", opts.Timeout)}
	case <-ctx.Done():
		return "", &Error{Op: "callback", Err: ctx.Err()}
	}
}

// codeFromQuery validates the redirect query parameters and extracts the
// authorization code.
func codeFromQuery(q url.Values, wantState string) (string, error) {
	if errCode := q.Get("error"); errCode != "" {
		return "", &Error{Op: "callback", Err: fmt.Errorf("authorization denied: %s", errCode)}
	}
	code := q.Get("code")
	if code == "" {
		return "", &Error{Op: "callback", Err: errors.New("redirect is missing the authorization code")}
	}
	if q.Get("state") != wantState {
		return "", &Error{Op: "callback", Err: errors.New("state mismatch, possible CSRF")}
	}
	return code, nil
}

func terminalPrompt(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}
