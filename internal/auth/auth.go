package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/pushpam22priya/contract-management-sub000/internal/config"
	"github.com/pushpam22priya/contract-management-sub000/internal/repository"
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// UserEmailContextKey is the request context key the authenticated user's
// email is stored under.
const UserEmailContextKey = "user_email"

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth authenticates requests. In production mode it performs OpenID
// Connect against the configured issuer; in dev mode it can also issue and
// verify local HS256 tokens for a trivial auto-register-or-login flow.
// Either way the user record is auto-provisioned on first sight.
type Auth struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	apiVerifier  *oidc.IDTokenVerifier
	users        repository.UserStore
	logger       Logger
	devMode      bool
	authBypass   bool
	localSecret  []byte
}

// New creates a new Auth object using values from the application
// configuration. When an OIDC issuer is configured it establishes a
// connection to the provider and prepares ID token verifiers.
func New(ctx context.Context, cfg *config.Config, users repository.UserStore, logger Logger) (*Auth, error) {
	isDev := strings.ToUpper(cfg.Environment) == "DEV"
	shouldBypass := isDev && cfg.DevModeBypass
	localSecret := []byte(cfg.Auth.LocalTokenSecret)

	var oauth2Config *oauth2.Config
	var verifier *oidc.IDTokenVerifier
	var apiVerifier *oidc.IDTokenVerifier

	if cfg.Auth.OktaDomain != "" {
		if cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" || cfg.Auth.RedirectURL == "" {
			return nil, errors.New("auth configuration is incomplete")
		}

		provider, err := oidc.NewProvider(ctx, cfg.Auth.OktaDomain)
		if err != nil {
			return nil, err
		}

		oauth2Config = &oauth2.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.Auth.RedirectURL,
			Scopes:       []string{ScopeOpenID, ScopeEmail},
		}

		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.Auth.ClientID})

		// Separate verifier for Bearer access tokens, which often carry a
		// different audience than the web client id.
		apiVerifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	} else if !shouldBypass && len(localSecret) == 0 {
		return nil, errors.New("no auth method configured: set auth.okta_domain or auth.local_token_secret")
	}

	return &Auth{
		oauth2Config: oauth2Config,
		verifier:     verifier,
		apiVerifier:  apiVerifier,
		users:        users,
		logger:       logger,
		devMode:      isDev,
		authBypass:   shouldBypass,
		localSecret:  localSecret,
	}, nil
}

// LoginHandler initiates the OAuth2 authorization code flow by redirecting
// the user to the provider's authorization endpoint. A random state value
// is stored in a cookie to mitigate CSRF attacks.
func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass || a.oauth2Config == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		HttpOnly: true,
		Path:     "/",
	})

	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler handles the redirect back from the provider. It verifies
// the state parameter, exchanges the code for tokens, validates the ID
// token, and sets a session cookie containing the raw ID token.
func (a *Auth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if a.authBypass || a.oauth2Config == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie, err := r.Cookie("oauthstate")
	if err != nil || r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	token, err := a.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "token exchange failed", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token in token response", http.StatusInternalServerError)
		return
	}

	if _, err := a.verifier.Verify(r.Context(), rawIDToken); err != nil {
		http.Error(w, "failed to verify id token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "id_token",
		Value:    rawIDToken,
		HttpOnly: true,
		Path:     "/",
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LocalLoginHandler implements the dev-mode auto-register-or-login flow:
// POST {"email": ...} provisions the account if needed and returns a signed
// HS256 token. Disabled outside dev mode or without a configured secret.
func (a *Auth) LocalLoginHandler(w http.ResponseWriter, r *http.Request) {
	if !a.devMode || len(a.localSecret) == 0 {
		http.Error(w, "local login is disabled", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !strings.Contains(body.Email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}

	user, err := a.ensureUser(r.Context(), body.Email, body.Name)
	if err != nil {
		http.Error(w, "failed to provision user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(a.localSecret)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": signed, "user": user})
}

// RequireAuth is middleware that resolves the caller's identity, provisions
// the user record on first sight, and injects the email into the request
// context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var email string

		if a.authBypass {
			email = "dev@localhost"
		} else if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			rawToken := strings.TrimPrefix(authHeader, "Bearer ")
			var err error
			email, err = a.emailFromBearer(r.Context(), rawToken)
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}
		} else if a.verifier != nil {
			cookie, err := r.Cookie("id_token")
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			token, err := a.verifier.Verify(r.Context(), cookie.Value)
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}
			var claims struct {
				Email string `json:"email"`
			}
			if err := token.Claims(&claims); err != nil {
				http.Error(w, "failed to parse token claims", http.StatusUnauthorized)
				return
			}
			email = claims.Email
		} else {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		if email == "" {
			http.Error(w, "token carries no email claim", http.StatusUnauthorized)
			return
		}

		if _, err := a.ensureUser(r.Context(), email, ""); err != nil {
			if a.logger != nil {
				a.logger.Error("failed to provision user", "email", email, "error", err)
			}
			http.Error(w, "failed to provision user: "+err.Error(), http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserEmailContextKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// emailFromBearer extracts the email claim from a bearer token, trying the
// local HS256 secret first and falling back to the OIDC verifier.
func (a *Auth) emailFromBearer(ctx context.Context, rawToken string) (string, error) {
	if len(a.localSecret) > 0 {
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.localSecret, nil
		})
		if err == nil {
			email, _ := claims["email"].(string)
			return email, nil
		}
		if a.apiVerifier == nil {
			return "", err
		}
	}

	if a.apiVerifier == nil {
		return "", errors.New("no token verifier configured")
	}
	token, err := a.apiVerifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", err
	}
	return claims.Email, nil
}

// ensureUser looks up the user by email and auto-provisions the account if
// it does not exist yet.
func (a *Auth) ensureUser(ctx context.Context, email, name string) (*models.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = &models.User{Email: email, Name: name}
	if createErr := a.users.CreateUser(ctx, user); createErr != nil {
		return nil, createErr
	}
	if a.logger != nil {
		a.logger.Info("auto-provisioned user", "email", email)
	}
	return user, nil
}

// LogoutHandler clears the session cookie and redirects to the home page.
func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   "id_token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
